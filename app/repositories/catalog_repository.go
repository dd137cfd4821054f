package repositories

import (
	"context"

	"github.com/bistroboss/bistro/app/models"
	"github.com/bistroboss/bistro/pkg/docstore"
)

type MenuRepository struct {
	store docstore.Store
}

func NewMenuRepository(store docstore.Store) *MenuRepository {
	return &MenuRepository{store: store}
}

// All lists menu items, optionally restricted to one category.
func (r *MenuRepository) All(ctx context.Context, category string) ([]models.MenuItem, error) {
	var filter docstore.Filter
	if category != "" {
		filter = docstore.Filter{"category": category}
	}
	return docstore.Many[models.MenuItem](ctx, r.store, MenuCollection, filter)
}

func (r *MenuRepository) Find(ctx context.Context, id string) (models.MenuItem, error) {
	return docstore.One[models.MenuItem](ctx, r.store, MenuCollection, docstore.ByID(id))
}

func (r *MenuRepository) Create(ctx context.Context, item models.MenuItem) (string, error) {
	return r.store.Insert(ctx, MenuCollection, item)
}

func (r *MenuRepository) Delete(ctx context.Context, id string) (DeleteResult, error) {
	n, err := r.store.DeleteOne(ctx, MenuCollection, docstore.ByID(id))
	return DeleteResult{DeletedCount: n}, err
}

func (r *MenuRepository) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx, MenuCollection)
}

type ReviewRepository struct {
	store docstore.Store
}

func NewReviewRepository(store docstore.Store) *ReviewRepository {
	return &ReviewRepository{store: store}
}

func (r *ReviewRepository) All(ctx context.Context) ([]models.Review, error) {
	return docstore.Many[models.Review](ctx, r.store, ReviewsCollection, nil)
}

func (r *ReviewRepository) Create(ctx context.Context, rv models.Review) (string, error) {
	return r.store.Insert(ctx, ReviewsCollection, rv)
}
