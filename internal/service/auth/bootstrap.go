package auth

import (
	"context"

	"github.com/tbuchert/accounting-api/internal/hash"
	"github.com/tbuchert/accounting-api/internal/logging"
	"github.com/tbuchert/accounting-api/internal/models"
)

type AdminSeed struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// EnsureDefaultAdmin creates the seed admin account at startup when no user
// with that email exists yet.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, seed AdminSeed) error {
	l := logging.FromContext(ctx).With("svc", "auth.bootstrap")

	existing, err := s.Repo.UserByEmail(ctx, seed.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		l.Info("default admin already exists", "email", existing.Email)
		return nil
	}

	pwHash, err := hash.HashPassword(seed.Password)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:             seed.Email,
		PasswordHash:      pwHash,
		FirstName:         seed.FirstName,
		LastName:          seed.LastName,
		PreferredLanguage: models.LanguageEN,
		PreferredCurrency: models.CurrencyEUR,
		Role:              models.RoleAdmin,
		IsActive:          true,
	}
	if err := s.Repo.CreateUser(ctx, &admin); err != nil {
		return err
	}
	l.Info("default admin created", "email", admin.Email)
	return nil
}
