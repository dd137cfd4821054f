package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bistroboss/bistro/pkg/apperr"
	"github.com/bistroboss/bistro/pkg/auth"
	"github.com/bistroboss/bistro/pkg/guard"
	"github.com/bistroboss/bistro/pkg/metrics"
)

// TokenVerifier is satisfied by *auth.Issuer.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type claimsKey struct{}

// Authenticate admits requests carrying a valid bearer token and attaches its
// claims to the context. A missing header is 401; anything else wrong with the
// credential is 403 with the same generic message.
func Authenticate(verifier TokenVerifier) guard.Guard {
	return func(r *http.Request) guard.Outcome {
		header := r.Header.Get("Authorization")
		if header == "" {
			metrics.AuthRejections.WithLabelValues("missing").Inc()
			return guard.Halt(apperr.Unauthenticated())
		}

		scheme, token, _ := strings.Cut(strings.TrimSpace(header), " ")
		token = strings.TrimSpace(token)
		if !strings.EqualFold(scheme, "Bearer") || token == "" {
			metrics.AuthRejections.WithLabelValues("invalid").Inc()
			return guard.Halt(apperr.Forbidden())
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			metrics.AuthRejections.WithLabelValues("invalid").Inc()
			return guard.Halt(apperr.Forbidden())
		}

		return guard.Continue(WithClaims(r.Context(), claims))
	}
}

func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromCtx returns the verified claims placed by Authenticate.
func ClaimsFromCtx(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok && c != nil
}

// EmailFromCtx returns the authenticated caller's email.
func EmailFromCtx(ctx context.Context) (string, bool) {
	c, ok := ClaimsFromCtx(ctx)
	if !ok || c.Email == "" {
		return "", false
	}
	return c.Email, true
}
