package controllers

import (
	"github.com/bistroboss/bistro/app/services"
	"github.com/bistroboss/bistro/pkg/ctx"
)

type UserController struct {
	service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{service: service}
}

func (uc *UserController) Index(c *ctx.Context) {
	users, err := uc.service.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(users)
}

func (uc *UserController) Store(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}

	res, err := uc.service.Register(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	if res.InsertedID == "" {
		c.Success(res)
		return
	}
	c.Created(res)
}

func (uc *UserController) Destroy(c *ctx.Context) {
	res, err := uc.service.Delete(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(res)
}

func (uc *UserController) Promote(c *ctx.Context) {
	res, err := uc.service.Promote(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(res)
}

// IsAdmin handles GET /users/admin/{id}, where the segment is an email.
func (uc *UserController) IsAdmin(c *ctx.Context) {
	caller, ok := c.MustEmail()
	if !ok {
		return
	}

	admin, err := uc.service.IsAdmin(c.Context(), caller, c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]bool{"admin": admin})
}
