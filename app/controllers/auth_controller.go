package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Signup handles POST /api/auth/signup.
func (ac *AuthController) Signup(c *ctx.Context) {
	var in services.SignupInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := ac.service.Signup(c.Context(), in)
	if err != nil {
		fail(c, err, "Failed to create account")
		return
	}
	c.Created(res)
}

// Login handles POST /api/auth/login.
func (ac *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := ac.service.Login(c.Context(), in)
	if err != nil {
		fail(c, err, "Login failed")
		return
	}
	c.Success(res)
}

// Me handles GET /api/auth/me.
func (ac *AuthController) Me(c *ctx.Context) {
	user, err := ac.service.Me(c.Context(), c.Session().UserID)
	if err != nil {
		fail(c, err, "Failed to load account")
		return
	}
	c.Success(user)
}
