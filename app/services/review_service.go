package services

import (
	"context"
	"time"

	"github.com/bistroboss/bistro/app/models"
	"github.com/bistroboss/bistro/app/repositories"
	"github.com/bistroboss/bistro/pkg/apperr"
	"github.com/bistroboss/bistro/pkg/cache"
	"github.com/bistroboss/bistro/pkg/logger"
)

const reviewsCacheKey = "reviews:all"

type ReviewService struct {
	reviews *repositories.ReviewRepository
	cache   cache.Cache
	ttl     time.Duration
}

func NewReviewService(reviews *repositories.ReviewRepository, c cache.Cache, ttl time.Duration) *ReviewService {
	return &ReviewService{reviews: reviews, cache: c, ttl: ttl}
}

func (s *ReviewService) List(ctx context.Context) ([]models.Review, error) {
	var out []models.Review
	if s.cache.Get(ctx, reviewsCacheKey, &out) {
		return out, nil
	}

	out, err := s.reviews.All(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.cache.Set(ctx, reviewsCacheKey, out, s.ttl); err != nil {
		logger.WithCtx(ctx).Warn("reviews cache write failed", "error", err)
	}
	return out, nil
}
