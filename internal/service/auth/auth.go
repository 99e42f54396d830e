package auth

import (
	"context"
	"errors"
	"time"

	"github.com/tbuchert/accounting-api/internal/hash"
	"github.com/tbuchert/accounting-api/internal/logging"
	"github.com/tbuchert/accounting-api/internal/models"
	"github.com/tbuchert/accounting-api/internal/repo"
	"github.com/tbuchert/accounting-api/internal/tokens"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrMalformedToken = errors.New("malformed token")
)

// Mailer delivers the password-reset token out-of-band.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

type Service struct {
	Repo     *repo.Repo
	Signer   *tokens.Signer
	Mailer   Mailer
	ResetTTL time.Duration
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// Authenticate returns the user for a valid (email, password) pair of an
// active account, or nil for anything else. Unknown email, wrong password and
// inactive user are indistinguishable to the caller; the unknown-email path
// still pays for a bcrypt compare.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		hash.CheckPassword(hash.DummyHash, password)
		return nil, nil
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, nil
	}
	if !user.IsActive {
		return nil, nil
	}
	return user, nil
}

// Login authenticates and, on success, stamps last_login and emits a fresh
// access + refresh token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		l.Warn("login rejected")
		return nil, nil, ErrUnauthorized
	}

	if err := s.Repo.StampLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		return nil, nil, err
	}

	access, err := s.Signer.Issue(user.Email, tokens.ScopeSession, 0)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.Repo.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	l.Info("login ok", "user_id", user.ID)
	return user, &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		ExpiresIn:    int(s.Signer.DefaultTTL().Seconds()),
	}, nil
}

// Resolve maps a bearer access token back to an active user.
func (s *Service) Resolve(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.Signer.Parse(accessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if claims.Scope != tokens.ScopeSession {
		return nil, ErrUnauthorized
	}
	user, err := s.Repo.UserByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// Refresh exchanges a stored refresh token for a new pair, revoking the old
// token. A missing, revoked, expired or already-rotated token, or an inactive
// owner, all come back as ErrUnauthorized.
func (s *Service) Refresh(ctx context.Context, refreshValue string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	stored, err := s.Repo.GetRefreshToken(ctx, refreshValue)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.Revoked || stored.IsExpired() {
		l.Warn("refresh rejected", "reason", "invalid token")
		return nil, ErrUnauthorized
	}

	user, err := s.Repo.UserByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		l.Warn("refresh rejected", "reason", "user inactive or missing")
		return nil, ErrUnauthorized
	}

	rotated, err := s.Repo.RotateRefreshToken(ctx, refreshValue, user.ID)
	if errors.Is(err, repo.ErrTokenSpent) {
		l.Warn("refresh rejected", "reason", "token spent")
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	access, err := s.Signer.Issue(user.Email, tokens.ScopeSession, 0)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: rotated.Token,
		ExpiresIn:    int(s.Signer.DefaultTTL().Seconds()),
	}, nil
}

// Logout revokes the presented refresh token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, refreshValue string) error {
	return s.Repo.RevokeRefreshToken(ctx, refreshValue)
}

// ChangePassword swaps the stored hash after verifying the current password.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) error {
	if !hash.CheckPassword(user.PasswordHash, oldPassword) {
		return ErrForbidden
	}
	newHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePasswordHash(ctx, user.ID, newHash)
}

// ForgotPassword issues a short-lived reset token and mails it. It succeeds
// whether or not the email exists, so callers cannot probe for accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.forgot_password")

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	token, err := s.Signer.Issue(user.Email, tokens.ScopeResetPassword, s.ResetTTL)
	if err != nil {
		return err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
			l.Error("reset mail failed", "error", err)
		}
	}()
	return nil
}

// ResetPassword consumes a reset token and stores the new password hash.
// The token is bounded by its TTL only; there is no single-use tracking.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.Signer.Parse(token)
	if err != nil {
		return ErrUnauthorized
	}
	if claims.Scope != tokens.ScopeResetPassword {
		return ErrForbidden
	}
	if claims.Subject == "" {
		return ErrMalformedToken
	}

	user, err := s.Repo.UserByEmail(ctx, claims.Subject)
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive {
		return ErrNotFound
	}

	newHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePasswordHash(ctx, user.ID, newHash)
}
