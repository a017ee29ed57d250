// internal/auth/password.go
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength = 16
	keyLength  = 32
	iterations = 100_000
)

// storedCredential is the self-describing blob persisted in the directory.
// Verification always re-derives with the stored parameters, so rows hashed
// under an older iteration count keep verifying after the default changes.
type storedCredential struct {
	Hash       string `json:"hash"`
	Salt       string `json:"salt"`
	Iterations int    `json:"iterations"`
}

// HashPassword derives a PBKDF2-SHA256 key from the password with a fresh
// random salt and returns the encoded credential blob.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha256.New)

	blob, err := json.Marshal(storedCredential{
		Hash:       base64.StdEncoding.EncodeToString(key),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Iterations: iterations,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode credential: %w", err)
	}

	return string(blob), nil
}

// VerifyPassword re-derives the key with the stored salt and iteration
// count and compares in constant time. Malformed stored credentials fail
// closed: the answer is false, never an error.
func VerifyPassword(password, stored string) bool {
	var cred storedCredential
	if err := json.Unmarshal([]byte(stored), &cred); err != nil {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(cred.Salt)
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(cred.Hash)
	if err != nil {
		return false
	}
	if cred.Iterations <= 0 || len(expected) == 0 {
		return false
	}

	key := pbkdf2.Key([]byte(password), salt, cred.Iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(key, expected) == 1
}
