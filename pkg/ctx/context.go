// Package ctx provides the request context used by bistro handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context:
//
//	func (mc *MenuController) Destroy(c *ctx.Context) {
//	    if err := mc.menu.Delete(c.Context(), c.Param("id")); err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    c.Success(map[string]any{"deletedCount": 1})
//	}
//
//	router.Delete("/menu/{id}", "menu.destroy", ctx.Wrap(mc.Destroy))
package ctx

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/bistroboss/bistro/pkg/apperr"
	"github.com/bistroboss/bistro/pkg/bind"
	"github.com/bistroboss/bistro/pkg/middleware"
	"github.com/bistroboss/bistro/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int // written status code (0 = not written yet)
}

// pool recycles Context objects to reduce GC pressure.
var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter ("/menu/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a query-string value, "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Email returns the authenticated caller's email. Routes that call it must be
// behind middleware.Authenticate; the second result is false otherwise.
func (c *Context) Email() (string, bool) {
	return middleware.EmailFromCtx(c.R.Context())
}

// MustEmail is Email for handlers that cannot run unauthenticated. When the
// identity is missing it writes a 401 and returns false.
func (c *Context) MustEmail() (string, bool) {
	email, ok := c.Email()
	if !ok {
		c.Fail(apperr.Unauthenticated())
	}
	return email, ok
}

// ─── Binding ──────────────────────────────────────────────────────────────────

// BindJSON decodes and validates the JSON body into dest. On failure it
// writes the error response and returns false:
//
//	var in PaymentInput
//	if !c.BindJSON(&in) {
//	    return
//	}
func (c *Context) BindJSON(dest any) bool {
	if err := bind.JSON(c.W, c.R, dest); err != nil {
		c.Fail(err)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// JSON writes v as the raw response body.
func (c *Context) JSON(code int, v any) {
	c.status = code
	response.Write(c.W, code, v)
}

// Success sends a 200 envelope with data.
func (c *Context) Success(data any) {
	c.status = http.StatusOK
	response.Success(c.W, data)
}

// Created sends a 201 envelope with data.
func (c *Context) Created(data any) {
	c.status = http.StatusCreated
	response.Created(c.W, data)
}

// Fail writes the error envelope for err.
func (c *Context) Fail(err error) {
	c.status = apperr.From(err).Kind.Status()
	response.Fail(c.W, c.R, err)
}

// String writes a plain-text response.
func (c *Context) String(code int, format string, args ...any) {
	c.W.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.W.WriteHeader(code)
	c.status = code
	fmt.Fprintf(c.W, format, args...)
}

// WrittenStatus returns the status code written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
