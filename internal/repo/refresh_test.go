package repo

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tbuchert/accounting-api/internal/models"
)

func initTestRepo(t *testing.T) *Repo {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))
	return New(db, 30*24*time.Hour)
}

func TestIssueAndGetRefreshToken(t *testing.T) {
	r := initTestRepo(t)
	userID := uuid.New()

	token, err := r.IssueRefreshToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)
	require.Equal(t, userID, token.UserID)
	require.False(t, token.Revoked)
	require.False(t, token.IsExpired())

	stored, err := r.GetRefreshToken(context.Background(), token.Token)
	require.NoError(t, err)
	require.Equal(t, token.ID, stored.ID)

	missing, err := r.GetRefreshToken(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestRevokeRefreshTokenIdempotent(t *testing.T) {
	r := initTestRepo(t)
	token, err := r.IssueRefreshToken(context.Background(), uuid.New())
	require.NoError(t, err)

	require.NoError(t, r.RevokeRefreshToken(context.Background(), token.Token))
	require.NoError(t, r.RevokeRefreshToken(context.Background(), token.Token))

	stored, err := r.GetRefreshToken(context.Background(), token.Token)
	require.NoError(t, err)
	require.True(t, stored.Revoked)
}

func TestRotateRefreshToken(t *testing.T) {
	r := initTestRepo(t)
	userID := uuid.New()
	old, err := r.IssueRefreshToken(context.Background(), userID)
	require.NoError(t, err)

	rotated, err := r.RotateRefreshToken(context.Background(), old.Token, userID)
	require.NoError(t, err)
	require.NotEqual(t, old.Token, rotated.Token)

	// old token row stays for audit but is spent
	stored, err := r.GetRefreshToken(context.Background(), old.Token)
	require.NoError(t, err)
	require.True(t, stored.Revoked)

	// the same value cannot be rotated twice
	_, err = r.RotateRefreshToken(context.Background(), old.Token, userID)
	require.ErrorIs(t, err, ErrTokenSpent)
}

func TestRotateExpiredToken(t *testing.T) {
	r := initTestRepo(t)
	userID := uuid.New()

	expired := &models.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC().Add(-48 * time.Hour),
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, r.DB.Create(expired).Error)

	_, err := r.RotateRefreshToken(context.Background(), expired.Token, userID)
	require.ErrorIs(t, err, ErrTokenSpent)
}

func TestRotateUnknownToken(t *testing.T) {
	r := initTestRepo(t)
	_, err := r.RotateRefreshToken(context.Background(), "does-not-exist", uuid.New())
	require.ErrorIs(t, err, ErrTokenSpent)
}
