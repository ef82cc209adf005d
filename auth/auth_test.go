package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentdesk/placement-engine/auth"
)

const secret = "test-secret"

func sign(t *testing.T, key, subject string, roles []string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   subject,
		"roles": roles,
		"exp":   exp.Unix(),
	})
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestParseToken_ValidToken(t *testing.T) {
	token := sign(t, secret, "user-1", []string{"recruiter"}, time.Now().Add(time.Hour))

	actor, err := auth.ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", actor.ID)
	assert.Equal(t, []string{"recruiter"}, actor.Roles)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token := sign(t, "other-secret", "user-1", []string{"admin"}, time.Now().Add(time.Hour))

	_, err := auth.ParseToken(secret, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	token := sign(t, secret, "user-1", []string{"admin"}, time.Now().Add(-time.Hour))

	_, err := auth.ParseToken(secret, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := auth.ParseToken(secret, "not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestActor_HasRole(t *testing.T) {
	actor := auth.Actor{ID: "u1", Roles: []string{"recruiter"}}

	assert.True(t, actor.HasRole("recruiter"))
	assert.True(t, actor.HasRole("admin", "recruiter"))
	assert.False(t, actor.HasRole("admin"))
	assert.False(t, auth.Actor{}.HasRole("admin"))
}
