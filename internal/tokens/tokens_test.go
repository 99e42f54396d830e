package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestIssueParseRoundTrip(t *testing.T) {
	s := NewSigner(testSecret, time.Hour)

	token, err := s.Issue("user@example.com", ScopeSession, 0)
	require.NoError(t, err)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user@example.com", claims.Subject)
	require.Equal(t, ScopeSession, claims.Scope)
}

func TestParseExpired(t *testing.T) {
	s := NewSigner(testSecret, time.Hour)

	token, err := s.Issue("user@example.com", ScopeSession, -time.Minute)
	require.NoError(t, err)

	_, err = s.Parse(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseWrongSecret(t *testing.T) {
	s := NewSigner(testSecret, time.Hour)
	other := NewSigner([]byte("other-secret"), time.Hour)

	token, err := s.Issue("user@example.com", ScopeSession, 0)
	require.NoError(t, err)

	_, err = other.Parse(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseGarbage(t *testing.T) {
	s := NewSigner(testSecret, time.Hour)

	_, err := s.Parse("not.a.token")
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = s.Parse("")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssueCustomTTL(t *testing.T) {
	s := NewSigner(testSecret, time.Hour)

	token, err := s.Issue("user@example.com", ScopeResetPassword, 15*time.Minute)
	require.NoError(t, err)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	require.Equal(t, ScopeResetPassword, claims.Scope)

	ttl := time.Until(claims.ExpiresAt.Time)
	require.Greater(t, ttl, 14*time.Minute)
	require.LessOrEqual(t, ttl, 15*time.Minute)
}
