package routes

import (
	"github.com/bistroboss/bistro/app/controllers"
	"github.com/bistroboss/bistro/app/repositories"
	"github.com/bistroboss/bistro/app/services"
	"github.com/bistroboss/bistro/config"
	"github.com/bistroboss/bistro/pkg/app"
	"github.com/bistroboss/bistro/pkg/ctx"
	"github.com/bistroboss/bistro/pkg/guard"
	"github.com/bistroboss/bistro/pkg/middleware"
	"github.com/bistroboss/bistro/pkg/rbac"
	"github.com/bistroboss/bistro/pkg/router"
)

// RegisterAPI wires repositories, services and controllers onto r.
func RegisterAPI(r *router.Router, c *app.Container) {
	users := repositories.NewUserRepository(c.Store)
	menu := repositories.NewMenuRepository(c.Store)
	reviews := repositories.NewReviewRepository(c.Store)
	carts := repositories.NewCartRepository(c.Store)
	payments := repositories.NewPaymentRepository(c.Store)

	authC := controllers.NewAuthController(services.NewAuthService(c.Issuer))
	userC := controllers.NewUserController(services.NewUserService(users))
	menuC := controllers.NewMenuController(services.NewMenuService(menu, c.Cache, c.Disk, config.CacheTTL()))
	reviewC := controllers.NewReviewController(services.NewReviewService(reviews, c.Cache, config.CacheTTL()))
	cartC := controllers.NewCartController(services.NewCartService(carts))
	paymentC := controllers.NewPaymentController(services.NewPaymentService(c.Processor, payments, carts, services.PaymentOptions{
		Currency: config.PaymentCurrency(),
		Verify:   config.VerifyPayments(),
	}))
	statsC := controllers.NewStatsController(services.NewStatsService(users, menu, payments))

	authenticate := middleware.Authenticate(c.Issuer)
	authed := r.Group("/", authenticate.Middleware())
	admin := r.Group("/", guard.All(authenticate, rbac.Admin(users)).Middleware())

	// public
	r.Post("/jwt", "auth.token", ctx.Wrap(authC.Token))
	r.Get("/menu", "menu.index", ctx.Wrap(menuC.Index))
	r.Get("/reviews", "reviews.index", ctx.Wrap(reviewC.Index))
	r.Post("/users", "users.store", ctx.Wrap(userC.Store))

	// any signed-in user
	authed.Get("/carts", "carts.index", ctx.Wrap(cartC.Index))
	authed.Post("/carts", "carts.store", ctx.Wrap(cartC.Store))
	authed.Delete("/carts/{id}", "carts.destroy", ctx.Wrap(cartC.Destroy))
	// shares the {id} segment with PATCH /users/admin/{id}; here it holds an email
	authed.Get("/users/admin/{id}", "users.is-admin", ctx.Wrap(userC.IsAdmin))
	authed.Post("/payments", "payments.store", ctx.Wrap(paymentC.Store))
	authed.Get("/payments", "payments.index", ctx.Wrap(paymentC.Index))

	if c.HTTP.RequireAuthOnPaymentIntent {
		authed.Post("/create-payment-intent", "payments.intent", ctx.Wrap(paymentC.Intent))
	} else {
		r.Post("/create-payment-intent", "payments.intent", ctx.Wrap(paymentC.Intent))
	}

	// admins only
	admin.Post("/menu", "menu.store", ctx.Wrap(menuC.Store))
	admin.Delete("/menu/{id}", "menu.destroy", ctx.Wrap(menuC.Destroy))
	admin.Post("/menu/images", "menu.upload", ctx.Wrap(menuC.Upload))
	admin.Get("/users", "users.index", ctx.Wrap(userC.Index))
	admin.Delete("/users/{id}", "users.destroy", ctx.Wrap(userC.Destroy))
	admin.Patch("/users/admin/{id}", "users.promote", ctx.Wrap(userC.Promote))
	admin.Get("/admin-stats", "stats.admin", ctx.Wrap(statsC.Admin))
	admin.Get("/orders-stats", "stats.orders", ctx.Wrap(statsC.Orders))
}
