package seeders

import (
	"context"
	"errors"
	"fmt"

	"github.com/tradebridge/tradebridge/app/models"
	"github.com/tradebridge/tradebridge/app/services"
	"github.com/tradebridge/tradebridge/pkg/apperr"
	"github.com/tradebridge/tradebridge/pkg/auth"
	"github.com/tradebridge/tradebridge/pkg/logger"
)

func init() {
	Register("admin", SeedAdmin)
}

// SeedAdmin creates the admin account named by SEED_ADMIN_EMAIL. It does
// nothing when the email is unset or the account already exists.
func SeedAdmin(ctx context.Context, env Env) error {
	email := services.NormalizeEmail(env.Seed.AdminEmail)
	if email == "" {
		logger.Warn("seed: SEED_ADMIN_EMAIL not set, skipping admin")
		return nil
	}
	if len(env.Seed.AdminPassword) < 6 {
		return fmt.Errorf("SEED_ADMIN_PASSWORD must be at least 6 characters")
	}

	_, err := env.Users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		logger.Info("seed: admin already exists", "email", email)
		return nil
	case !errors.Is(err, apperr.ErrNotFound):
		return err
	}

	hash, err := auth.HashPassword(env.Seed.AdminPassword)
	if err != nil {
		return err
	}
	u := &models.User{Name: "Administrator", Email: email, Password: hash, Role: auth.RoleAdmin}
	if err := env.Users.Create(ctx, u); err != nil {
		return err
	}
	logger.Info("seed: admin created", "email", email, "id", u.ID.Hex())
	return nil
}
