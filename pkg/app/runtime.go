package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/grpc"
	"github.com/shashiranjanraj/storefront/pkg/kafka"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/notification"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// Runtime holds the long-lived collaborators of a serving process. Optional
// parts are nil when their backing service is not configured.
type Runtime struct {
	DB    *gorm.DB
	Disk  storage.Disk
	Hub   *ws.Hub
	Kafka *kafka.Producer
	Pool  *workerpool.Pool
	GRPC  *grpc.Server

	mongo  *logger.MongoHandler
	cancel context.CancelFunc
	stops  []func()
}

// BootDB loads configuration and opens the database. It is all the
// migration and seed commands need.
func BootDB(ctx context.Context) (*gorm.DB, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.Connect(ctx); err != nil {
		return nil, err
	}
	return database.DB, nil
}

// Boot brings up everything the HTTP server depends on. Only the database
// is mandatory; Redis, object storage, Kafka and the gRPC health endpoint
// degrade to disabled with a warning.
func Boot(ctx context.Context) (*Runtime, error) {
	rt := &Runtime{}

	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if uri := config.Get("LOG_MONGO_URI", ""); uri != "" {
		mh, err := logger.EnableMongo(uri, config.Get("LOG_MONGO_DB", "storefront"), config.Get("LOG_MONGO_COLLECTION", "logs"))
		if err != nil {
			logger.Warn("logger: mongo sink disabled", "error", err)
		} else {
			rt.mongo = mh
		}
	}

	db, err := BootDB(ctx)
	if err != nil {
		rt.Close(context.Background())
		return nil, err
	}
	rt.DB = db

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("cache: redis unavailable, continuing without cache", "error", err)
	}

	if disk, err := storage.Open(ctx); err != nil {
		logger.Warn("storage: disk unavailable, uploads disabled", "error", err)
	} else {
		rt.Disk = disk
	}

	rt.Pool = workerpool.New(config.NotifyWorkers())
	notification.SetPool(rt.Pool)

	if brokers := config.KafkaBrokers(); len(brokers) > 0 {
		rt.Kafka = kafka.NewProducer(brokers, config.KafkaOrdersTopic(), config.Int("KAFKA_BUFFER", 256))
		logger.Info("kafka: publishing order events", "brokers", strings.Join(brokers, ","), "topic", config.KafkaOrdersTopic())
	}

	hubCtx, cancel := context.WithCancel(context.Background())
	rt.cancel = cancel
	rt.Hub = ws.NewHub()
	rt.Hub.SetCheckOrigin(originChecker(middleware.CORSFromEnv().AllowedOrigins))
	go rt.Hub.Run(hubCtx)

	if port := config.GRPCPort(); port != "" {
		rt.GRPC = grpc.New()
		if _, err := rt.GRPC.Listen(port); err != nil {
			rt.Close(context.Background())
			return nil, err
		}
	}

	return rt, nil
}

// Close releases everything Boot opened, in reverse dependency order.
func (rt *Runtime) Close(ctx context.Context) {
	for i := len(rt.stops) - 1; i >= 0; i-- {
		rt.stops[i]()
	}
	if rt.GRPC != nil {
		rt.GRPC.Stop()
	}
	if rt.cancel != nil {
		rt.cancel()
	}
	if rt.Pool != nil {
		rt.Pool.Shutdown()
		notification.SetPool(nil)
	}
	if rt.Kafka != nil {
		if err := rt.Kafka.Close(ctx); err != nil {
			logger.Warn("kafka: close", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warn("cache: close", "error", err)
	}
	if rt.DB != nil {
		if err := database.Close(); err != nil {
			logger.Warn("database: close", "error", err)
		}
	}
	if rt.mongo != nil {
		rt.mongo.Close()
	}
}

func (rt *Runtime) onStop(fn func()) {
	if fn != nil {
		rt.stops = append(rt.stops, fn)
	}
}

// originChecker accepts websocket upgrades from the CORS allow-list.
// Requests without an Origin header come from non-browser clients.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// Describe renders a one-line summary of the runtime for the startup log.
func (rt *Runtime) Describe() string {
	parts := []string{"db=" + config.DatabaseDriver()}
	if rt.Disk != nil {
		parts = append(parts, "storage="+config.StorageDefault())
	}
	if rt.Kafka != nil {
		parts = append(parts, "kafka=on")
	}
	if rt.GRPC != nil {
		parts = append(parts, "grpc=:"+config.GRPCPort())
	}
	return strings.Join(parts, " ")
}
