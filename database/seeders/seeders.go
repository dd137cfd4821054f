// Package seeders loads the starter menu and reviews. Files are read from
// SEED_DIR when set, otherwise the copies embedded in the binary are used.
//
// Run with `bistro seed`. Collections that already hold documents are left
// alone.
package seeders

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"github.com/bistroboss/bistro/app/models"
	"github.com/bistroboss/bistro/app/repositories"
	"github.com/bistroboss/bistro/config"
	"github.com/bistroboss/bistro/pkg/app"
	"github.com/bistroboss/bistro/pkg/docstore"
)

//go:embed data/*.json
var embedded embed.FS

func init() {
	app.RegisterSeeder("menu", SeedMenu)
	app.RegisterSeeder("reviews", SeedReviews)
}

func SeedMenu(ctx context.Context, store docstore.Store) (int, error) {
	return seed[models.MenuItem](ctx, store, repositories.MenuCollection, "menu.json")
}

func SeedReviews(ctx context.Context, store docstore.Store) (int, error) {
	return seed[models.Review](ctx, store, repositories.ReviewsCollection, "reviews.json")
}

func seed[T any](ctx context.Context, store docstore.Store, coll, file string) (int, error) {
	existing, err := store.FindMany(ctx, coll, nil)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	raw, err := fs.ReadFile(source(), file)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", file, err)
	}
	var docs []T
	if err := json.Unmarshal(raw, &docs); err != nil {
		return 0, fmt.Errorf("decode %s: %w", file, err)
	}

	for i, d := range docs {
		if _, err := store.Insert(ctx, coll, d); err != nil {
			return i, err
		}
	}
	return len(docs), nil
}

func source() fs.FS {
	if dir := config.Get("SEED_DIR", ""); dir != "" {
		return os.DirFS(dir)
	}
	sub, _ := fs.Sub(embedded, "data")
	return sub
}
