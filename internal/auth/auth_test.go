package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("rescue123")
	require.NoError(t, err)
	assert.NotEqual(t, "rescue123", hash)

	assert.True(t, CheckPassword(hash, "rescue123"))
	assert.False(t, CheckPassword(hash, "rescue124"))
	assert.False(t, CheckPassword("not-a-hash", "rescue123"))
}

func TestTokenRoundTrip(t *testing.T) {
	id := Identity{Subject: "mike-r1", Name: "Mike Davis", Role: "rescuer"}

	token, err := IssueToken("secret", id, time.Hour)
	require.NoError(t, err)

	got, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, id, *got)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := IssueToken("secret", Identity{Subject: "admin", Role: "admin"}, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := IssueToken("secret", Identity{Subject: "admin", Role: "admin"}, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("secret", "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
