// internal/auth/token.go
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"fitclub/internal/apperr"
	"fitclub/internal/authz"
)

// ErrInvalidToken is returned for any malformed, forged, or unsigned token.
var ErrInvalidToken = apperr.Unauthorized("INVALID_TOKEN", "invalid token")

// Claims is the payload embedded in every session token. Tokens carry no
// expiry; role-gated operations re-check the directory where it matters.
type Claims struct {
	MemberID uuid.UUID  `json:"member_id"`
	Role     authz.Role `json:"role"`
	Phone    string     `json:"phone"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token for the member with HMAC-SHA256.
func IssueToken(memberID uuid.UUID, role authz.Role, phone, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		MemberID: memberID,
		Role:     role,
		Phone:    phone,
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates the signature and returns the embedded claims.
func VerifyToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
