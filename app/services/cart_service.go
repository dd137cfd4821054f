package services

import (
	"context"

	"github.com/bistroboss/bistro/app/models"
	"github.com/bistroboss/bistro/app/repositories"
	"github.com/bistroboss/bistro/pkg/apperr"
	"github.com/bistroboss/bistro/pkg/logger"
)

// CartInput is the body of POST /carts. UserEmail may be omitted; when sent
// it must be the caller's own email.
type CartInput struct {
	MenuItemID string  `json:"menuItemId" validate:"required,objectid"`
	Name       string  `json:"name"       validate:"required,max=120"`
	Image      string  `json:"image"      validate:"nullable,url"`
	Price      float64 `json:"price"      validate:"gt=0"`
	UserEmail  string  `json:"userEmail"  validate:"nullable,email"`
}

type CartService struct {
	carts *repositories.CartRepository
}

func NewCartService(carts *repositories.CartRepository) *CartService {
	return &CartService{carts: carts}
}

// List returns the caller's cart. An empty email yields an empty list, and
// asking for anybody else's cart is forbidden.
func (s *CartService) List(ctx context.Context, caller, email string) ([]models.CartEntry, error) {
	if email == "" {
		return []models.CartEntry{}, nil
	}
	if email != caller {
		logger.WithCtx(ctx).Warn("cart read for another user rejected", "caller", caller, "email", email)
		return nil, apperr.Forbidden()
	}

	entries, err := s.carts.ByOwner(ctx, caller)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return entries, nil
}

func (s *CartService) Add(ctx context.Context, caller string, in CartInput) (repositories.InsertResult, error) {
	if in.UserEmail != "" && in.UserEmail != caller {
		return repositories.InsertResult{}, apperr.Forbidden()
	}

	id, err := s.carts.Create(ctx, models.CartEntry{
		MenuItemID: in.MenuItemID,
		Name:       in.Name,
		Image:      in.Image,
		Price:      in.Price,
		UserEmail:  caller,
	})
	if err != nil {
		return repositories.InsertResult{}, apperr.Internal(err)
	}
	return repositories.InsertResult{InsertedID: id}, nil
}

// Delete removes an entry the caller owns. Someone else's entry is left
// untouched and reported as a zero count, the same as a missing one.
func (s *CartService) Delete(ctx context.Context, caller, id string) (repositories.DeleteResult, error) {
	res, err := s.carts.DeleteOwned(ctx, id, caller)
	if err != nil {
		return res, apperr.Internal(err)
	}
	return res, nil
}
