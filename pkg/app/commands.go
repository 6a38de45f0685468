package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/server"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// Command returns the root command with every subcommand attached.
func (a *Application) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           a.name,
		Short:         a.name + " API server and maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		a.serveCmd(),
		a.migrateCmd(),
		a.rollbackCmd(),
		a.statusCmd(),
		a.seedCmd(),
		a.routeListCmd(),
	)
	return root
}

func (a *Application) serveCmd() *cobra.Command {
	var port string
	var migrate bool
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context(), port, migrate, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default APP_PORT)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run pending migrations before serving")
	return cmd
}

func (a *Application) serve(ctx context.Context, port string, migrate bool, out io.Writer) error {
	rt, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
		defer cancel()
		rt.Close(closeCtx)
		logger.Info("shutdown complete")
	}()

	if migrate {
		if _, err := migration.New(rt.DB, out).Run(); err != nil {
			return err
		}
	}

	for _, fn := range a.boots {
		rt.onStop(fn(rt))
	}
	logger.Info("runtime ready", "components", rt.Describe())

	r, err := Kernel(rt, a.routes...)
	if err != nil {
		return err
	}

	if port == "" {
		port = config.AppPort()
	}
	return server.Start(ctx, ":"+port, r.Handler())
}

func (a *Application) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run all pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), func(r *migration.Runner, out io.Writer) error {
				n, err := r.Run()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d migration(s) applied\n", n)
				return nil
			}, cmd.OutOrStdout())
		},
	}
}

func (a *Application) rollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:rollback",
		Short: "Roll back the last batch of migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), func(r *migration.Runner, out io.Writer) error {
				n, err := r.Rollback()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d migration(s) rolled back\n", n)
				return nil
			}, cmd.OutOrStdout())
		},
	}
}

func (a *Application) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:status",
		Short: "Show which migrations have run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), func(r *migration.Runner, out io.Writer) error {
				statuses, err := r.Statuses()
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "MIGRATION\tRAN\tBATCH")
				for _, s := range statuses {
					ran, batch := "no", "-"
					if s.Ran {
						ran, batch = "yes", fmt.Sprint(s.Batch)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, ran, batch)
				}
				return tw.Flush()
			}, cmd.OutOrStdout())
		},
	}
}

func (a *Application) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.seed == nil {
				return errors.New("no seeder configured")
			}
			ctx := cmd.Context()
			db, err := BootDB(ctx)
			if err != nil {
				return err
			}
			defer database.Close() //nolint:errcheck

			ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()
			return a.seed(ctx, db, cmd.OutOrStdout())
		},
	}
}

func (a *Application) routeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "route:list",
		Aliases: []string{"routes"},
		Short:   "List the registered routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Registration only builds handlers, so an unconnected runtime is
			// enough to enumerate every route.
			r, err := Kernel(&Runtime{Hub: ws.NewHub()}, a.routes...)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "METHOD\tPATH\tNAME")
			for _, ri := range r.Routes() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
			}
			return tw.Flush()
		},
	}
}

func withDB(ctx context.Context, fn func(*migration.Runner, io.Writer) error, out io.Writer) error {
	db, err := BootDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close() //nolint:errcheck
	return fn(migration.New(db, out), out)
}
