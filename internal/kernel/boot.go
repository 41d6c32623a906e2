package kernel

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tradebridge/tradebridge/app/listeners"
	"github.com/tradebridge/tradebridge/app/repositories"
	"github.com/tradebridge/tradebridge/config"
	"github.com/tradebridge/tradebridge/pkg/auth"
	"github.com/tradebridge/tradebridge/pkg/bind"
	"github.com/tradebridge/tradebridge/pkg/cache"
	"github.com/tradebridge/tradebridge/pkg/database"
	"github.com/tradebridge/tradebridge/pkg/event"
	"github.com/tradebridge/tradebridge/pkg/httpclient"
	"github.com/tradebridge/tradebridge/pkg/logger"
	"github.com/tradebridge/tradebridge/pkg/payment"
	"github.com/tradebridge/tradebridge/pkg/storage"
)

// CachePrefix namespaces every Redis key the app writes.
const CachePrefix = "tradebridge:"

// Options tweak Boot.
type Options struct {
	// Memory keeps all records in process instead of MongoDB.
	Memory bool
}

// App is a booted process: its dependencies and what must be closed on exit.
type App struct {
	Config *config.Config
	DB     *mongo.Database
	Deps   Deps

	logSink *logger.MongoHandler
}

// Boot connects every backing service described by cfg. A MongoDB failure
// is fatal; Redis is optional and only logged.
func Boot(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger.Setup(logger.Options{JSON: cfg.IsProduction(), Level: cfg.Log.Level})
	bind.SetMaxBodyBytes(cfg.App.MaxBodyBytes)

	a := &App{Config: cfg}

	if opts.Memory {
		mem := repositories.NewMemory()
		a.Deps.Users, a.Deps.Products, a.Deps.Orders = mem.Users(), mem.Products(), mem.Orders()
		logger.Warn("using in-memory store; data is lost on exit")
	} else {
		db, err := database.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		a.DB = db
		a.Deps.Users = repositories.NewMongoUsers(db)
		a.Deps.Products = repositories.NewMongoProducts(db)
		a.Deps.Orders = repositories.NewMongoOrders(db)

		if cfg.Log.Mongo {
			a.logSink = logger.NewMongoHandler(ctx, db, logger.ParseLevel(cfg.Log.Level))
			logger.Setup(logger.Options{
				JSON:  cfg.IsProduction(),
				Level: cfg.Log.Level,
				Extra: []slog.Handler{a.logSink},
			})
		}
		logger.Info("mongo connected", "database", cfg.Mongo.Database)
	}

	c, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, CachePrefix, cfg.Redis.TTL)
	if err != nil {
		logger.Warn("cache disabled", "error", err)
	}
	a.Deps.Cache = c

	disk, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("kernel: storage: %w", err)
	}
	a.Deps.Disk = disk

	a.Deps.Issuer = auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	a.Deps.Gateway = payment.NewRazorpay(cfg.Payment, httpclient.New(httpclient.DefaultTimeout))
	a.Deps.CORSOrigins = cfg.App.CORSOrigins

	a.Deps.Bus = event.NewBus()
	listeners.Register(a.Deps.Bus, a.Deps.Cache)

	return a, nil
}

// Close flushes the log sink and releases the cache and database clients.
func (a *App) Close(ctx context.Context) error {
	if a.logSink != nil {
		a.logSink.Close()
	}
	if err := a.Deps.Cache.Close(); err != nil {
		logger.Warn("cache close failed", "error", err)
	}
	return database.Disconnect(ctx, a.DB)
}
