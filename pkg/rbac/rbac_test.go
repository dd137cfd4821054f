package rbac

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bistroboss/bistro/pkg/auth"
	"github.com/bistroboss/bistro/pkg/middleware"
)

type roles map[string]string

func (r roles) RoleOf(_ context.Context, email string) (string, error) {
	return r[email], nil
}

type brokenLookup struct{}

func (brokenLookup) RoleOf(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}

func TestAdmin(t *testing.T) {
	lookup := roles{"boss@example.com": RoleAdmin, "guest@example.com": RoleMember}

	cases := []struct {
		name   string
		email  string
		lookup RoleLookup
		status int
	}{
		{"admin passes", "boss@example.com", lookup, http.StatusOK},
		{"member rejected", "guest@example.com", lookup, http.StatusForbidden},
		{"unknown user is member", "ghost@example.com", lookup, http.StatusForbidden},
		{"no identity", "", lookup, http.StatusUnauthorized},
		{"lookup failure", "boss@example.com", brokenLookup{}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			req := httptest.NewRequest(http.MethodDelete, "/menu/1", nil)
			if tc.email != "" {
				req = req.WithContext(middleware.WithClaims(req.Context(), &auth.Claims{Email: tc.email}))
			}
			rec := httptest.NewRecorder()
			Admin(tc.lookup).Middleware()(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.status == http.StatusOK, called)
		})
	}
}

func TestRequireRoleAcceptsAnyListedRole(t *testing.T) {
	lookup := roles{"m@example.com": RoleMember}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithClaims(req.Context(), &auth.Claims{Email: "m@example.com"}))

	out := RequireRole(lookup, RoleAdmin, RoleMember)(req)
	assert.False(t, out.Halted())
}
