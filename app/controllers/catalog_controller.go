package controllers

import (
	"net/http"

	"github.com/bistroboss/bistro/app/services"
	"github.com/bistroboss/bistro/pkg/apperr"
	"github.com/bistroboss/bistro/pkg/ctx"
)

// maxImageBytes caps a single menu image upload.
const maxImageBytes = 5 << 20

type MenuController struct {
	service *services.MenuService
}

func NewMenuController(service *services.MenuService) *MenuController {
	return &MenuController{service: service}
}

// Index handles GET /menu with an optional ?category= filter.
func (mc *MenuController) Index(c *ctx.Context) {
	items, err := mc.service.List(c.Context(), c.Query("category"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(items)
}

func (mc *MenuController) Store(c *ctx.Context) {
	var in services.MenuInput
	if !c.BindJSON(&in) {
		return
	}

	res, err := mc.service.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(res)
}

func (mc *MenuController) Destroy(c *ctx.Context) {
	res, err := mc.service.Delete(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(res)
}

// Upload handles POST /menu/images as multipart form field "image".
func (mc *MenuController) Upload(c *ctx.Context) {
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, maxImageBytes)
	if err := c.R.ParseMultipartForm(maxImageBytes); err != nil {
		c.Fail(apperr.Invalid("image must be sent as multipart form field \"image\" under 5MB"))
		return
	}
	defer c.R.MultipartForm.RemoveAll()

	file, header, err := c.R.FormFile("image")
	if err != nil {
		c.Fail(apperr.Invalid("image must be sent as multipart form field \"image\" under 5MB"))
		return
	}
	defer file.Close()

	url, err := mc.service.UploadImage(c.Context(), file, header.Header.Get("Content-Type"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]string{"url": url})
}

type ReviewController struct {
	service *services.ReviewService
}

func NewReviewController(service *services.ReviewService) *ReviewController {
	return &ReviewController{service: service}
}

func (rc *ReviewController) Index(c *ctx.Context) {
	reviews, err := rc.service.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(reviews)
}
