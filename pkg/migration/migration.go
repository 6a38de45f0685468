// Package migration runs versioned schema changes and tracks them in the
// schema_migrations table.
//
// Migrations register themselves from init():
//
//	func init() {
//	    migration.Register("20260101000000_create_users", migration.Func(up, down))
//	}
//
// and are applied by `storefront migrate` in lexical name order. Every
// migration in one Run shares a batch number, which is what Rollback undoes.
package migration

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type funcMigration struct{ up, down func(*gorm.DB) error }

func (f funcMigration) Up(db *gorm.DB) error   { return f.up(db) }
func (f funcMigration) Down(db *gorm.DB) error { return f.down(db) }

// Func adapts a pair of functions to the Migration interface.
func Func(up, down func(*gorm.DB) error) Migration { return funcMigration{up: up, down: down} }

type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "schema_migrations" }

type entry struct {
	name string
	m    Migration
}

var (
	mu       sync.Mutex
	registry = map[string]Migration{}
)

// Register adds a migration. Registering the same name twice panics.
func Register(name string, m Migration) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("migration: %s registered twice", name))
	}
	registry[name] = m
}

func registered() []entry {
	mu.Lock()
	defer mu.Unlock()
	out := make([]entry, 0, len(registry))
	for name, m := range registry {
		out = append(out, entry{name: name, m: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Status is one row of `migrate:status`.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

type Runner struct {
	db  *gorm.DB
	out io.Writer
}

// New returns a runner that reports progress to out.
func New(db *gorm.DB, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{db: db, out: out}
}

func (r *Runner) ensureTable() error {
	return r.db.AutoMigrate(&record{})
}

func (r *Runner) ran() (map[string]record, error) {
	var rows []record
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]record, len(rows))
	for _, row := range rows {
		out[row.Name] = row
	}
	return out, nil
}

// Run applies every pending migration. Each one runs in its own transaction
// together with its tracking row. It returns how many were applied.
func (r *Runner) Run() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, fmt.Errorf("migration: ensure table: %w", err)
	}
	done, err := r.ran()
	if err != nil {
		return 0, fmt.Errorf("migration: load history: %w", err)
	}

	batch := r.lastBatch() + 1
	applied := 0
	for _, e := range registered() {
		if _, ok := done[e.name]; ok {
			continue
		}
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := e.m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&record{Name: e.name, Batch: batch}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("migration: %s up: %w", e.name, err)
		}
		applied++
		fmt.Fprintf(r.out, "migrated   %s\n", e.name)
		logger.Info("migration applied", "name", e.name, "batch", batch)
	}

	if applied == 0 {
		fmt.Fprintln(r.out, "nothing to migrate")
	}
	return applied, nil
}

// Rollback reverts the most recent batch in reverse order.
func (r *Runner) Rollback() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, fmt.Errorf("migration: ensure table: %w", err)
	}
	batch := r.lastBatch()
	if batch == 0 {
		fmt.Fprintln(r.out, "nothing to roll back")
		return 0, nil
	}

	var rows []record
	if err := r.db.Where("batch = ?", batch).Order("name desc").Find(&rows).Error; err != nil {
		return 0, err
	}

	mu.Lock()
	lookup := make(map[string]Migration, len(registry))
	for name, m := range registry {
		lookup[name] = m
	}
	mu.Unlock()

	reverted := 0
	for _, row := range rows {
		m, ok := lookup[row.Name]
		if !ok {
			return reverted, fmt.Errorf("migration: %s is recorded but not registered", row.Name)
		}
		row := row
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&row).Error
		})
		if err != nil {
			return reverted, fmt.Errorf("migration: %s down: %w", row.Name, err)
		}
		reverted++
		fmt.Fprintf(r.out, "rolled back %s\n", row.Name)
		logger.Info("migration rolled back", "name", row.Name, "batch", batch)
	}
	return reverted, nil
}

// Statuses lists every registered migration and whether it has run.
func (r *Runner) Statuses() ([]Status, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	done, err := r.ran()
	if err != nil {
		return nil, err
	}
	var out []Status
	for _, e := range registered() {
		rec, ok := done[e.name]
		out = append(out, Status{Name: e.name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

func (r *Runner) lastBatch() int {
	var max struct{ Max int }
	r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&max)
	return max.Max
}
