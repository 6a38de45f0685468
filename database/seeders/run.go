// Package seeders fills a migrated database with the admin account and a
// starter catalogue. Each seeder is idempotent so `seed` can be re-run.
package seeders

import (
	"context"
	"fmt"
	"io"
	"sync"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// SeederFunc is the signature for a seed function.
type SeederFunc func(ctx context.Context, db *gorm.DB) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the global registry.
// Call this from init() in your seeder files.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// RunAll executes every registered seeder in registration order and stops on
// the first error.
func RunAll(ctx context.Context, db *gorm.DB, out io.Writer) error {
	mu.Lock()
	current := make([]seederEntry, len(entries))
	copy(current, entries)
	mu.Unlock()

	if len(current) == 0 {
		fmt.Fprintln(out, "no seeders registered")
		return nil
	}

	for _, e := range current {
		if err := e.fn(ctx, db.WithContext(ctx)); err != nil {
			fmt.Fprintf(out, "seeded     %s FAILED\n", e.name)
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		fmt.Fprintf(out, "seeded     %s\n", e.name)
		logger.Info("seeder ran", "name", e.name)
	}
	return nil
}
