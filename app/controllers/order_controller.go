package controllers

import (
	"github.com/bistroboss/bistro/app/services"
	"github.com/bistroboss/bistro/pkg/ctx"
)

type CartController struct {
	service *services.CartService
}

func NewCartController(service *services.CartService) *CartController {
	return &CartController{service: service}
}

// Index handles GET /carts?email=.
func (cc *CartController) Index(c *ctx.Context) {
	caller, ok := c.MustEmail()
	if !ok {
		return
	}

	entries, err := cc.service.List(c.Context(), caller, c.Query("email"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(entries)
}

func (cc *CartController) Store(c *ctx.Context) {
	caller, ok := c.MustEmail()
	if !ok {
		return
	}
	var in services.CartInput
	if !c.BindJSON(&in) {
		return
	}

	res, err := cc.service.Add(c.Context(), caller, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(res)
}

func (cc *CartController) Destroy(c *ctx.Context) {
	caller, ok := c.MustEmail()
	if !ok {
		return
	}

	res, err := cc.service.Delete(c.Context(), caller, c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(res)
}

type PaymentController struct {
	service *services.PaymentService
}

func NewPaymentController(service *services.PaymentService) *PaymentController {
	return &PaymentController{service: service}
}

// Intent handles POST /create-payment-intent.
func (pc *PaymentController) Intent(c *ctx.Context) {
	var in services.IntentInput
	if !c.BindJSON(&in) {
		return
	}

	// empty when the route is public
	caller, _ := c.Email()
	res, err := pc.service.CreateIntent(c.Context(), caller, in.Price)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(res)
}

func (pc *PaymentController) Store(c *ctx.Context) {
	caller, ok := c.MustEmail()
	if !ok {
		return
	}
	var in services.PaymentInput
	if !c.BindJSON(&in) {
		return
	}

	res, err := pc.service.Record(c.Context(), caller, in)
	if err != nil {
		c.Fail(err)
		return
	}
	if res.Duplicate {
		c.Success(res)
		return
	}
	c.Created(res)
}

func (pc *PaymentController) Index(c *ctx.Context) {
	caller, ok := c.MustEmail()
	if !ok {
		return
	}

	payments, err := pc.service.List(c.Context(), caller)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(payments)
}

type StatsController struct {
	service *services.StatsService
}

func NewStatsController(service *services.StatsService) *StatsController {
	return &StatsController{service: service}
}

func (sc *StatsController) Admin(c *ctx.Context) {
	st, err := sc.service.AdminStats(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(st)
}

func (sc *StatsController) Orders(c *ctx.Context) {
	rows, err := sc.service.OrderStats(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rows)
}
