package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/bistroboss/bistro/app/models"
	"github.com/bistroboss/bistro/app/repositories"
	"github.com/bistroboss/bistro/pkg/apperr"
	"github.com/bistroboss/bistro/pkg/cache"
	"github.com/bistroboss/bistro/pkg/docstore"
	"github.com/bistroboss/bistro/pkg/logger"
	"github.com/bistroboss/bistro/pkg/storage"
)

const menuCachePrefix = "menu:"

// MenuInput is the body of POST /menu.
type MenuInput struct {
	Name     string  `json:"name"     validate:"required,max=120"`
	Recipe   string  `json:"recipe"   validate:"max=4000"`
	Image    string  `json:"image"    validate:"nullable,url"`
	Category string  `json:"category" validate:"required,max=40"`
	Price    float64 `json:"price"    validate:"gt=0"`
}

// imageTypes maps accepted upload content types to file extensions.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type MenuService struct {
	menu  *repositories.MenuRepository
	cache cache.Cache
	disk  storage.Disk
	ttl   time.Duration

	text   *bluemonday.Policy
	recipe *bluemonday.Policy
}

func NewMenuService(menu *repositories.MenuRepository, c cache.Cache, disk storage.Disk, ttl time.Duration) *MenuService {
	recipe := bluemonday.NewPolicy()
	recipe.AllowElements("p", "br", "ul", "ol", "li", "strong", "em")

	return &MenuService{
		menu:   menu,
		cache:  c,
		disk:   disk,
		ttl:    ttl,
		text:   bluemonday.StrictPolicy(),
		recipe: recipe,
	}
}

// List returns the menu, optionally filtered by category. Results are served
// from the cache when present.
func (s *MenuService) List(ctx context.Context, category string) ([]models.MenuItem, error) {
	key := menuCacheKey(category)

	var items []models.MenuItem
	if s.cache.Get(ctx, key, &items) {
		return items, nil
	}

	items, err := s.menu.All(ctx, category)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.cache.Set(ctx, key, items, s.ttl); err != nil {
		logger.WithCtx(ctx).Warn("menu cache write failed", "key", key, "error", err)
	}
	return items, nil
}

// Create stores a new item with its text fields stripped of markup.
func (s *MenuService) Create(ctx context.Context, in MenuInput) (repositories.InsertResult, error) {
	item := models.MenuItem{
		Name:     strings.TrimSpace(s.text.Sanitize(in.Name)),
		Recipe:   s.recipe.Sanitize(in.Recipe),
		Image:    in.Image,
		Category: strings.TrimSpace(s.text.Sanitize(in.Category)),
		Price:    in.Price,
	}
	if item.Name == "" {
		return repositories.InsertResult{}, apperr.Validation(map[string]string{"name": "The name field is required."})
	}

	id, err := s.menu.Create(ctx, item)
	if err != nil {
		return repositories.InsertResult{}, apperr.Internal(err)
	}
	s.invalidate(ctx, item.Category)
	return repositories.InsertResult{InsertedID: id}, nil
}

// Delete removes one item. An unknown id is a zero count, not an error.
func (s *MenuService) Delete(ctx context.Context, id string) (repositories.DeleteResult, error) {
	item, err := s.menu.Find(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return repositories.DeleteResult{}, nil
	}
	if err != nil {
		return repositories.DeleteResult{}, apperr.Internal(err)
	}

	res, err := s.menu.Delete(ctx, id)
	if err != nil {
		return res, apperr.Internal(err)
	}
	s.invalidate(ctx, item.Category)
	return res, nil
}

// UploadImage stores an image under a random name and returns its public URL.
func (s *MenuService) UploadImage(ctx context.Context, r io.Reader, contentType string) (string, error) {
	ext, ok := imageTypes[contentType]
	if !ok {
		return "", apperr.Invalid(fmt.Sprintf("unsupported image type %q", contentType))
	}

	p := path.Join("menu", uuid.NewString()+ext)
	if err := s.disk.Put(ctx, p, r, contentType); err != nil {
		return "", apperr.Internal(err)
	}
	logger.WithCtx(ctx).Info("menu image stored", "path", p)
	return s.disk.URL(p), nil
}

func (s *MenuService) invalidate(ctx context.Context, category string) {
	keys := []string{menuCacheKey("")}
	if category != "" {
		keys = append(keys, menuCacheKey(category))
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		logger.WithCtx(ctx).Warn("menu cache invalidation failed", "error", err)
	}
}

func menuCacheKey(category string) string {
	if category == "" {
		return menuCachePrefix + "all"
	}
	return menuCachePrefix + category
}
