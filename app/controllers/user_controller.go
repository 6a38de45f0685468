package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type UserController struct {
	service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{service: service}
}

// Update handles PUT /api/users for the signed-in user.
func (uc *UserController) Update(c *ctx.Context) {
	var in services.UpdateUserInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := uc.service.Update(c.Context(), c.Session().UserID, in)
	if err != nil {
		fail(c, err, "Failed to update profile")
		return
	}
	c.Success(user)
}
