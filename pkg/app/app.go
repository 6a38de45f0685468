// Package app assembles the storefront process: it boots the shared
// infrastructure into a Runtime, builds the HTTP kernel and exposes the
// whole thing as a cobra command tree.
//
//	app.New("storefront").
//	    Routes(func(r *router.Router, rt *app.Runtime) error {
//	        return routes.RegisterAPI(r, routes.Deps{DB: rt.DB})
//	    }).
//	    Seed(seeders.RunAll).
//	    Execute()
//
// Migrations register themselves through migration.Register, so the binary
// only needs to blank-import its migrations package.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/router"
)

// RouteFunc mounts routes on r using the booted runtime.
type RouteFunc func(r *router.Router, rt *Runtime) error

// BootFunc runs once the runtime is up, before the listener opens. The
// returned stop function, if any, runs during shutdown.
type BootFunc func(rt *Runtime) (stop func())

// SeedFunc fills a freshly migrated database.
type SeedFunc func(ctx context.Context, db *gorm.DB, out io.Writer) error

type Application struct {
	name   string
	routes []RouteFunc
	boots  []BootFunc
	seed   SeedFunc
}

func New(name string) *Application {
	return &Application{name: name}
}

// Routes adds a route-registration callback. Callbacks run in order.
func (a *Application) Routes(fn RouteFunc) *Application {
	a.routes = append(a.routes, fn)
	return a
}

// OnBoot adds a hook that runs after Boot and before serving.
func (a *Application) OnBoot(fn BootFunc) *Application {
	a.boots = append(a.boots, fn)
	return a
}

// Seed sets the function behind the seed command.
func (a *Application) Seed(fn SeedFunc) *Application {
	a.seed = fn
	return a
}

// Execute runs the command line and exits non-zero on failure. SIGINT and
// SIGTERM cancel the command context.
func (a *Application) Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Command().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
