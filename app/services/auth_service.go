package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tradebridge/tradebridge/app/models"
	"github.com/tradebridge/tradebridge/app/repositories"
	"github.com/tradebridge/tradebridge/pkg/apperr"
	"github.com/tradebridge/tradebridge/pkg/auth"
	"github.com/tradebridge/tradebridge/pkg/cache"
	"github.com/tradebridge/tradebridge/pkg/event"
	"github.com/tradebridge/tradebridge/pkg/rbac"
	"github.com/tradebridge/tradebridge/pkg/validate"
)

// SignupInput is the signup request body.
type SignupInput struct {
	Name         string `json:"name"         validate:"required,notblank,max=100"`
	Email        string `json:"email"        validate:"required,email,max=254"`
	Password     string `json:"password"     validate:"required,min=6,max=72"`
	Role         string `json:"role"`
	BusinessName string `json:"businessName" validate:"max=200"`
	Phone        string `json:"phone"        validate:"max=20"`
	Address      string `json:"address"      validate:"max=500"`
}

// LoginInput is the login request body.
type LoginInput struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordInput is the change-password request body.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6,max=72,nefield=CurrentPassword"`
}

// AuthService owns accounts and credentials.
type AuthService struct {
	users  repositories.UserRepository
	issuer *auth.Issuer
	cache  *cache.Store
	bus    *event.Bus
}

// NewAuthService wires an AuthService. cache and bus may be nil.
func NewAuthService(users repositories.UserRepository, issuer *auth.Issuer, c *cache.Store, bus *event.Bus) *AuthService {
	return &AuthService{users: users, issuer: issuer, cache: c, bus: bus}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an account. The role defaults to retailer.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Email = NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, apperr.Validation(errs)
	}

	role := auth.RoleRetailer
	if strings.TrimSpace(in.Role) != "" {
		r, err := auth.ParseRole(in.Role)
		if err != nil {
			return nil, apperr.Validation(map[string]string{"role": "The selected role is invalid."})
		}
		role = r
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperr.ErrDuplicateEmail
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, apperr.Internal(err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		if auth.IsHashTooLong(err) {
			return nil, apperr.Validation(map[string]string{"password": "The password must not exceed 72 bytes."})
		}
		return nil, apperr.Internal(err)
	}

	u := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		Password:     hash,
		Role:         role,
		BusinessName: strings.TrimSpace(in.BusinessName),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, apperr.ErrDuplicateEmail) {
			return nil, apperr.ErrDuplicateEmail
		}
		return nil, apperr.Internal(err)
	}

	s.bus.Fire(ctx, EventUserRegistered, *u)
	return u, nil
}

// VerifyCredentials returns the account matching email and password. An
// unknown email and a wrong password fail identically.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Internal(err)
		}
		auth.BurnPasswordCheck(password)
		s.bus.Fire(ctx, EventLoginFailed, email)
		return nil, apperr.ErrInvalidCredentials
	}

	if !auth.CheckPassword(u.Password, password) {
		s.bus.Fire(ctx, EventLoginFailed, email)
		return nil, apperr.ErrInvalidCredentials
	}
	return u, nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, *models.User, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return "", nil, apperr.Validation(errs)
	}

	u, err := s.VerifyCredentials(ctx, in.Email, in.Password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.issuer.Issue(u.Identity())
	if err != nil {
		return "", nil, apperr.Internal(err)
	}
	return token, u, nil
}

// Profile returns the caller's own account.
func (s *AuthService) Profile(ctx context.Context, id *auth.Identity) (*models.User, error) {
	if err := rbac.Authorize(id, rbac.ViewProfile); err != nil {
		return nil, err
	}
	return s.self(ctx, id)
}

// ChangePassword replaces the caller's password after re-checking the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, id *auth.Identity, in ChangePasswordInput) error {
	if err := rbac.Authorize(id, rbac.ChangePassword); err != nil {
		return err
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return apperr.Validation(errs)
	}

	u, err := s.self(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.Password, in.CurrentPassword) {
		return apperr.Validation(map[string]string{"currentPassword": "The current password is incorrect."})
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		if auth.IsHashTooLong(err) {
			return apperr.Validation(map[string]string{"newPassword": "The newPassword must not exceed 72 bytes."})
		}
		return apperr.Internal(err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// self loads the account behind a token. A token whose account is gone is
// treated as unauthenticated.
func (s *AuthService) self(ctx context.Context, id *auth.Identity) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id.UserID)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	u, err := s.users.FindByID(ctx, oid)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

// ListWholesalers returns the public wholesaler directory, newest first.
func (s *AuthService) ListWholesalers(ctx context.Context) ([]models.User, error) {
	if err := rbac.Authorize(nil, rbac.ListWholesalers); err != nil {
		return nil, err
	}
	users, err := cache.Remember(ctx, s.cache, WholesalersCacheKey, func(ctx context.Context) ([]models.User, error) {
		return s.users.ListByRole(ctx, auth.RoleWholesaler)
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}
