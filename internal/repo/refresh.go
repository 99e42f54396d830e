package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbuchert/accounting-api/internal/models"
)

// ErrTokenSpent is returned by RotateRefreshToken when the presented token
// was already revoked, expired, or rotated by a concurrent refresh.
var ErrTokenSpent = errors.New("refresh token spent")

// IssueRefreshToken persists a fresh opaque token for userID and returns it.
func (r *Repo) IssueRefreshToken(ctx context.Context, userID uuid.UUID) (*models.RefreshToken, error) {
	token := newRefreshToken(userID, r.RefreshTTL)
	if err := r.DB.WithContext(ctx).Create(token).Error; err != nil {
		return nil, err
	}
	return token, nil
}

func (r *Repo) GetRefreshToken(ctx context.Context, value string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.DB.WithContext(ctx).Where("token = ?", value).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// RevokeRefreshToken marks the token revoked. Idempotent; revoking an
// already-revoked token is a no-op.
func (r *Repo) RevokeRefreshToken(ctx context.Context, value string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", value).
		Update("revoked", true).Error
}

// RotateRefreshToken revokes the old token and creates its replacement in one
// transaction. The revoke is guarded by the stored revoked flag, so out of
// any number of concurrent rotations of the same value exactly one wins; the
// rest get ErrTokenSpent. Either both writes commit or neither does.
func (r *Repo) RotateRefreshToken(ctx context.Context, oldValue string, userID uuid.UUID) (*models.RefreshToken, error) {
	newToken := newRefreshToken(userID, r.RefreshTTL)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("token = ? AND revoked = ? AND expires_at > ?", oldValue, false, time.Now().UTC()).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenSpent
		}
		return tx.Create(newToken).Error
	})
	if err != nil {
		return nil, err
	}
	return newToken, nil
}

func newRefreshToken(userID uuid.UUID, ttl time.Duration) *models.RefreshToken {
	now := time.Now().UTC()
	return &models.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
