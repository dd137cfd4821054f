package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/bistroboss/bistro/pkg/docstore"
	"github.com/bistroboss/bistro/pkg/router"
)

// Seeder fills a collection with initial data. It should skip work that is
// already done.
type Seeder func(ctx context.Context, store docstore.Store) (int, error)

type namedSeeder struct {
	name string
	fn   Seeder
}

var (
	seedMu  sync.Mutex
	seeders []namedSeeder
)

// RegisterSeeder adds a seeder run by `bistro seed`. Call it from init().
func RegisterSeeder(name string, fn Seeder) {
	seedMu.Lock()
	defer seedMu.Unlock()
	seeders = append(seeders, namedSeeder{name: name, fn: fn})
}

// Seed runs every registered seeder in registration order.
func Seed(ctx context.Context, store docstore.Store, out io.Writer) error {
	seedMu.Lock()
	list := append([]namedSeeder(nil), seeders...)
	seedMu.Unlock()

	if len(list) == 0 {
		fmt.Fprintln(out, "No seeders registered.")
		return nil
	}
	for _, s := range list {
		n, err := s.fn(ctx, store)
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.name, err)
		}
		fmt.Fprintf(out, "  ✅ %-10s %d documents\n", s.name, n)
	}
	return nil
}

// PrintRoutes writes a METHOD/PATH/NAME table.
func PrintRoutes(out io.Writer, r *router.Router) error {
	routes := r.Routes()
	if len(routes) == 0 {
		fmt.Fprintln(out, "No routes registered.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range routes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}
