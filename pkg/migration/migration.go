// Package migration runs named, ordered schema steps against the document
// store and records which ones have been applied.
//
// Steps register themselves from database/migrations:
//
//	func init() {
//	    migration.Register("20240301000000_payments_indexes", migration.Indexes(
//	        docstore.Index{Collection: "payments", Keys: []string{"transactionId"}, Unique: true},
//	    ))
//	}
//
// Run from the CLI with `bistro migrate`.
package migration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/bistroboss/bistro/pkg/docstore"
	"github.com/bistroboss/bistro/pkg/logger"
)

// Collection stores one document per applied migration.
const Collection = "migrations"

// Migration is one schema step. Steps must be safe to re-run.
type Migration interface {
	Up(ctx context.Context, store docstore.Store) error
}

// MigrationFunc adapts a function to Migration.
type MigrationFunc func(ctx context.Context, store docstore.Store) error

func (f MigrationFunc) Up(ctx context.Context, store docstore.Store) error { return f(ctx, store) }

// Indexes is a Migration that ensures the given indexes exist.
func Indexes(idx ...docstore.Index) Migration {
	return MigrationFunc(func(ctx context.Context, store docstore.Store) error {
		return store.EnsureIndexes(ctx, idx)
	})
}

type record struct {
	Name  string    `bson:"name"`
	Batch int       `bson:"batch"`
	RunAt time.Time `bson:"runAt"`
}

type registered struct {
	name string
	m    Migration
}

var (
	mu       sync.Mutex
	registry []registered
)

// Register adds a migration. name should be timestamp-prefixed so names sort
// in the order they must run.
func Register(name string, m Migration) {
	mu.Lock()
	defer mu.Unlock()
	registry = append(registry, registered{name: name, m: m})
}

// Runner executes and tracks migrations.
type Runner struct {
	store docstore.Store
	out   io.Writer
	steps []registered
}

// New creates a Runner for every registered migration.
func New(store docstore.Store, out io.Writer) *Runner {
	mu.Lock()
	steps := append([]registered(nil), registry...)
	mu.Unlock()

	sort.Slice(steps, func(i, j int) bool { return steps[i].name < steps[j].name })
	return &Runner{store: store, out: out, steps: steps}
}

// Pending returns the names of migrations that have not run yet.
func (r *Runner) Pending(ctx context.Context) ([]string, error) {
	ran, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, s := range r.steps {
		if _, ok := ran[s.name]; !ok {
			names = append(names, s.name)
		}
	}
	return names, nil
}

// Run executes all pending migrations as one batch.
func (r *Runner) Run(ctx context.Context) error {
	ran, err := r.applied(ctx)
	if err != nil {
		return err
	}

	batch := 1
	for _, rec := range ran {
		if rec.Batch >= batch {
			batch = rec.Batch + 1
		}
	}

	count := 0
	for _, s := range r.steps {
		if _, ok := ran[s.name]; ok {
			continue
		}
		fmt.Fprintf(r.out, "  ▶ Migrating: %s\n", s.name)
		logger.Info("migration: running", "name", s.name)

		if err := s.m.Up(ctx, r.store); err != nil {
			return fmt.Errorf("migration: %s up: %w", s.name, err)
		}
		if _, err := r.store.Insert(ctx, Collection, record{Name: s.name, Batch: batch, RunAt: time.Now().UTC()}); err != nil {
			return fmt.Errorf("migration: record %s: %w", s.name, err)
		}
		fmt.Fprintf(r.out, "  ✅ Migrated:  %s\n", s.name)
		count++
	}

	if count == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return nil
	}
	logger.Info("migration: done", "ran", count, "batch", batch)
	return nil
}

// Status prints every migration with its batch, or "pending".
func (r *Runner) Status(ctx context.Context) error {
	ran, err := r.applied(ctx)
	if err != nil {
		return err
	}
	for _, s := range r.steps {
		if rec, ok := ran[s.name]; ok {
			fmt.Fprintf(r.out, "  [batch %d] %s\n", rec.Batch, s.name)
		} else {
			fmt.Fprintf(r.out, "  [pending] %s\n", s.name)
		}
	}
	return nil
}

func (r *Runner) applied(ctx context.Context) (map[string]record, error) {
	recs, err := docstore.Many[record](ctx, r.store, Collection, nil)
	if err != nil {
		return nil, fmt.Errorf("migration: load applied: %w", err)
	}
	out := make(map[string]record, len(recs))
	for _, rec := range recs {
		out[rec.Name] = rec
	}
	return out, nil
}
