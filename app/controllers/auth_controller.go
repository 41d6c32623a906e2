package controllers

import (
	"github.com/tradebridge/tradebridge/app/services"
	"github.com/tradebridge/tradebridge/pkg/ctx"
	"github.com/tradebridge/tradebridge/pkg/response"
)

// AuthController serves accounts: signup, login, profile and the public
// wholesaler directory.
type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Signup handles POST /api/signup.
func (ac *AuthController) Signup(c *ctx.Context) {
	var in services.SignupInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := ac.auth.Signup(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(response.H{"user": u})
}

// Login handles POST /api/login.
func (ac *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	token, u, err := ac.auth.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(response.H{"token": token, "user": u})
}

// Me handles GET /api/users/me.
func (ac *AuthController) Me(c *ctx.Context) {
	u, err := ac.auth.Profile(c.Context(), c.Identity())
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(response.H{"user": u})
}

// ChangePassword handles PUT /api/users/me/password.
func (ac *AuthController) ChangePassword(c *ctx.Context) {
	var in services.ChangePasswordInput
	if !c.BindJSON(&in) {
		return
	}
	if err := ac.auth.ChangePassword(c.Context(), c.Identity(), in); err != nil {
		c.Fail(err)
		return
	}
	c.OK(response.H{"message": "Password updated"})
}

// Wholesalers handles GET /api/wholesalers.
func (ac *AuthController) Wholesalers(c *ctx.Context) {
	users, err := ac.auth.ListWholesalers(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(response.H{"wholesalers": users})
}
