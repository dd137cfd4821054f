package controllers

import (
	"github.com/bistroboss/bistro/app/services"
	"github.com/bistroboss/bistro/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Token handles POST /jwt.
func (ac *AuthController) Token(c *ctx.Context) {
	var in services.TokenInput
	if !c.BindJSON(&in) {
		return
	}

	token, err := ac.service.IssueToken(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]string{"token": token})
}
