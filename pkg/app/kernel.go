package app

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// Kernel builds the router with the global middleware stack, the
// operational endpoints and every route callback.
func Kernel(rt *Runtime, routes ...RouteFunc) (*router.Router, error) {
	r := router.New()

	// Outermost first: metrics see total latency, recovery guards the rest,
	// the request id exists before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.CORSFromEnv()))
	r.Use(middleware.RateLimit(200, time.Minute))

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", health(rt))

	if ld, ok := rt.Disk.(*storage.LocalDisk); ok {
		r.Handle("/storage/*", "storage", http.StripPrefix("/storage/", http.FileServer(http.Dir(ld.Root()))))
	}

	for _, fn := range routes {
		if err := fn(r, rt); err != nil {
			return nil, err
		}
	}
	return r, nil
}

type healthReport struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// health reports 503 only when the database is down; the cache is optional.
func health(rt *Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		rep := healthReport{Database: "up", Cache: "up"}
		if err := pingDB(ctx, rt); err != nil {
			rep.Database = "down"
		}
		if err := cache.Ping(ctx); err != nil {
			rep.Cache = "down"
		}

		if rep.Database != "up" {
			response.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		response.Success(w, rep)
	}
}

func pingDB(ctx context.Context, rt *Runtime) error {
	if rt.DB == nil {
		return database.ErrNotConnected
	}
	sqlDB, err := rt.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
