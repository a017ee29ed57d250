// internal/auth/token_test.go
package auth

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitclub/internal/authz"
)

const testSecret = "test-signing-secret"

func TestTokenRoundTrip(t *testing.T) {
	memberID := uuid.New()
	token, err := IssueToken(memberID, authz.RoleLeader, "9000000001", testSecret)
	require.NoError(t, err)

	claims, err := VerifyToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, memberID, claims.MemberID)
	assert.Equal(t, authz.RoleLeader, claims.Role)
	assert.Equal(t, "9000000001", claims.Phone)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := IssueToken(uuid.New(), authz.RoleMember, "9000000001", testSecret)
	require.NoError(t, err)

	claims, err := VerifyToken(token, "some-other-secret")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenTampered(t *testing.T) {
	token, err := IssueToken(uuid.New(), authz.RoleMember, "9000000001", testSecret)
	require.NoError(t, err)

	// Flip a character in the payload segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	parts[1] = string(payload)

	claims, err := VerifyToken(strings.Join(parts, "."), testSecret)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenGarbage(t *testing.T) {
	for _, input := range []string{"", "garbage", "a.b.c", "header.payload"} {
		claims, err := VerifyToken(input, testSecret)
		assert.Nil(t, claims, "input %q", input)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", input)
	}
}
