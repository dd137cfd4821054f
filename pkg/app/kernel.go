package app

import (
	"net/http"

	"github.com/bistroboss/bistro/pkg/apperr"
	"github.com/bistroboss/bistro/pkg/metrics"
	"github.com/bistroboss/bistro/pkg/middleware"
	"github.com/bistroboss/bistro/pkg/reqid"
	"github.com/bistroboss/bistro/pkg/response"
	"github.com/bistroboss/bistro/pkg/router"
)

// Router builds the router with the global middleware stack and the
// infrastructure endpoints, then lets each register func add its routes.
func (c *Container) Router(register ...func(*router.Router)) *router.Router {
	r := router.New()

	// outermost first: metrics see the full latency, recovery sees every panic
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.NewCORSOptions(c.HTTP.AllowedOrigins)))
	if c.Limiter != nil {
		r.Use(c.Limiter.Middleware())
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.Fail(w, req, apperr.NotFound("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/", "health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Bistro is serving"))
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	for _, fn := range register {
		fn(r)
	}
	return r
}

// Handler is Router(...).Handler().
func (c *Container) Handler(register ...func(*router.Router)) http.Handler {
	return c.Router(register...).Handler()
}
