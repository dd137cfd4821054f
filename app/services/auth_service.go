package services

import (
	"context"

	"github.com/bistroboss/bistro/pkg/apperr"
	"github.com/bistroboss/bistro/pkg/auth"
	"github.com/bistroboss/bistro/pkg/logger"
	"github.com/bistroboss/bistro/pkg/metrics"
)

// TokenInput is the body of POST /jwt.
type TokenInput struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"  validate:"max=120"`
}

type AuthService struct {
	issuer *auth.Issuer
}

func NewAuthService(issuer *auth.Issuer) *AuthService {
	return &AuthService{issuer: issuer}
}

// IssueToken signs a token for the given identity. The token carries no
// role: authorization is always read back from storage.
func (s *AuthService) IssueToken(ctx context.Context, in TokenInput) (string, error) {
	token, err := s.issuer.Issue(auth.IdentityClaims{Email: in.Email, Name: in.Name})
	if err != nil {
		return "", apperr.Internal(err)
	}
	metrics.TokensIssued.Inc()
	logger.WithCtx(ctx).Debug("token issued", "email", in.Email)
	return token, nil
}
