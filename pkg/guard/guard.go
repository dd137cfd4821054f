// Package guard models request admission checks as plain values.
//
// A Guard looks at a request and either lets it through, optionally with an
// enriched context, or halts it with an error. Middleware turns a Guard into
// chi-compatible middleware that writes exactly one error response on Halt
// and never calls the next handler:
//
//	r.Delete("/menu/{id}", "menu.destroy", ctrl.Destroy,
//	    guard.All(middleware.Authenticate(issuer), rbac.Admin(users)).Middleware())
package guard

import (
	"context"
	"net/http"

	"github.com/bistroboss/bistro/pkg/response"
)

// Outcome is the result of running a Guard. Exactly one of ctx or err is set.
type Outcome struct {
	ctx context.Context
	err error
}

// Continue admits the request with ctx as its new context.
func Continue(ctx context.Context) Outcome { return Outcome{ctx: ctx} }

// Halt stops the request; err decides the status code and body.
func Halt(err error) Outcome {
	if err == nil {
		panic("guard: Halt with nil error")
	}
	return Outcome{err: err}
}

func (o Outcome) Halted() bool { return o.err != nil }

func (o Outcome) Err() error { return o.err }

func (o Outcome) Context() context.Context { return o.ctx }

// Guard inspects a request and decides whether it may proceed.
type Guard func(r *http.Request) Outcome

// Middleware adapts g to func(http.Handler) http.Handler.
func (g Guard) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			out := g(r)
			if out.Halted() {
				response.Fail(w, r, out.err)
				return
			}
			if out.ctx != nil {
				r = r.WithContext(out.ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// All runs guards left to right, threading each Continue context into the
// next guard. The first Halt wins.
func All(guards ...Guard) Guard {
	return func(r *http.Request) Outcome {
		for _, g := range guards {
			out := g(r)
			if out.Halted() {
				return out
			}
			if out.ctx != nil {
				r = r.WithContext(out.ctx)
			}
		}
		return Continue(r.Context())
	}
}
