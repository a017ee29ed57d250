// internal/auth/password_test.go
package auth

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	stored, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.True(t, VerifyPassword("secret1", stored))
	assert.False(t, VerifyPassword("secret2", stored))
	assert.False(t, VerifyPassword("", stored))
}

func TestHashPasswordIsSelfDescribing(t *testing.T) {
	stored, err := HashPassword("hunter2")
	require.NoError(t, err)

	var blob struct {
		Hash       string `json:"hash"`
		Salt       string `json:"salt"`
		Iterations int    `json:"iterations"`
	}
	require.NoError(t, json.Unmarshal([]byte(stored), &blob))
	assert.NotEmpty(t, blob.Hash)
	assert.NotEmpty(t, blob.Salt)
	assert.Equal(t, 100_000, blob.Iterations)
}

func TestHashPasswordFreshSalt(t *testing.T) {
	first, err := HashPassword("same password")
	require.NoError(t, err)
	second, err := HashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword("same password", first))
	assert.True(t, VerifyPassword("same password", second))
}

func TestVerifyPasswordFailsClosed(t *testing.T) {
	cases := map[string]string{
		"not json":        "plainly not a credential",
		"empty":           "",
		"empty object":    `{}`,
		"bad salt":        `{"hash":"aGFzaA==","salt":"!!!","iterations":1000}`,
		"bad hash":        `{"hash":"!!!","salt":"c2FsdA==","iterations":1000}`,
		"zero iterations": `{"hash":"aGFzaA==","salt":"c2FsdA==","iterations":0}`,
		"negative":        `{"hash":"aGFzaA==","salt":"c2FsdA==","iterations":-5}`,
	}
	for name, stored := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, VerifyPassword("anything", stored))
		})
	}
}

// Verification honors the iteration count stored in the blob, not the
// package default.
func TestVerifyPasswordUsesStoredIterations(t *testing.T) {
	stored, err := HashPassword("pw")
	require.NoError(t, err)

	var blob map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stored), &blob))
	blob["iterations"] = 50_000
	altered, err := json.Marshal(blob)
	require.NoError(t, err)

	// Same hash re-checked under a different iteration count must fail.
	assert.False(t, VerifyPassword("pw", string(altered)))
}

func TestPasswordProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		password := rapid.StringN(1, 64, -1).Draw(t, "password")
		other := rapid.StringN(1, 64, -1).Draw(t, "other")

		stored, err := HashPassword(password)
		if err != nil {
			t.Fatalf("hash failed: %v", err)
		}
		if !VerifyPassword(password, stored) {
			t.Fatalf("round trip failed for %q", password)
		}
		if other != password && VerifyPassword(other, stored) {
			t.Fatalf("%q verified against credential for %q", other, password)
		}
	})
}
