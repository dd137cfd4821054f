// Package rbac provides role-based admission guards.
//
// Roles are never taken from the token. Every check reads the caller's stored
// role through a RoleLookup, so a demotion takes effect on the next request.
package rbac

import (
	"context"
	"net/http"

	"github.com/bistroboss/bistro/pkg/apperr"
	"github.com/bistroboss/bistro/pkg/guard"
	"github.com/bistroboss/bistro/pkg/logger"
	"github.com/bistroboss/bistro/pkg/metrics"
	"github.com/bistroboss/bistro/pkg/middleware"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// RoleLookup resolves the stored role for an email. A missing user or role
// is reported as RoleMember, not as an error.
type RoleLookup interface {
	RoleOf(ctx context.Context, email string) (string, error)
}

// RequireRole admits callers whose stored role is one of roles.
// It must run after middleware.Authenticate.
func RequireRole(lookup RoleLookup, roles ...string) guard.Guard {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(r *http.Request) guard.Outcome {
		email, ok := middleware.EmailFromCtx(r.Context())
		if !ok {
			metrics.AuthRejections.WithLabelValues("missing").Inc()
			return guard.Halt(apperr.Unauthenticated())
		}

		role, err := lookup.RoleOf(r.Context(), email)
		if err != nil {
			metrics.AuthRejections.WithLabelValues("lookup").Inc()
			return guard.Halt(apperr.Internal(err))
		}
		if role == "" {
			role = RoleMember
		}

		if !allowed[role] {
			metrics.AuthRejections.WithLabelValues("role").Inc()
			logger.WithCtx(r.Context()).Warn("role check failed",
				"email", email, "role", role, "path", r.URL.Path)
			return guard.Halt(apperr.Forbidden())
		}

		return guard.Continue(r.Context())
	}
}

// Admin admits only callers with the admin role.
func Admin(lookup RoleLookup) guard.Guard {
	return RequireRole(lookup, RoleAdmin)
}
