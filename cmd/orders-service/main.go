// The orders service owns order records and aggregates product and user
// details from the other services through the fan-out resolver.
package main

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/foodfast/services/internal/aggregate"
	"github.com/foodfast/services/internal/config"
	"github.com/foodfast/services/internal/database"
	"github.com/foodfast/services/internal/handlers"
	"github.com/foodfast/services/internal/models"
	"github.com/foodfast/services/pkg/cache"
	"github.com/foodfast/services/pkg/logging"
	"github.com/foodfast/services/pkg/lookup"
	"github.com/foodfast/services/pkg/resolve"
)

func main() {
	cfg := config.Load("orders", "5003")
	logger := logging.Setup(logging.Config{
		Level:   cfg.Log.Level,
		Pretty:  cfg.Log.Pretty,
		Service: cfg.Service,
	})

	db, err := database.Connect(cfg.DB.DSN, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed")
	}
	if err := database.Migrate(db, &models.Order{}); err != nil {
		logger.Fatal().Err(err).Msg("Migration failed")
	}

	productStore, userStore := buildStores(cfg)

	resolverCfg := resolve.Config{
		SuccessTTL: cfg.Resolver.SuccessTTL,
		FailureTTL: cfg.Resolver.FailureTTL,
		MaxWorkers: cfg.Resolver.MaxWorkers,
	}
	products := resolve.New[models.Product]("product",
		lookup.NewClient[models.Product](cfg.Deps.ProductsBase, "products", cfg.Deps.Timeout),
		productStore, resolverCfg)
	users := resolve.New[models.User]("user",
		lookup.NewClient[models.User](cfg.Deps.UsersBase, "users", cfg.Deps.Timeout),
		userStore, resolverCfg)

	agg := aggregate.New(products, users)

	app := handlers.NewApp(cfg)
	handlers.NewOrders(db, agg).Register(app)

	logger.Info().Str("port", cfg.Port).
		Str("products_base", cfg.Deps.ProductsBase).
		Str("users_base", cfg.Deps.UsersBase).
		Msg("Starting orders service")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// buildStores returns the resolver caches: Redis-backed when configured
// and reachable, process-local memory otherwise.
func buildStores(cfg *config.Config) (cache.Store[int64, *models.Product], cache.Store[int64, *models.User]) {
	logger := logging.NewLogger("cache")

	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).
				Msg("Redis unreachable, falling back to in-memory cache")
		} else {
			logger.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis resolver cache")
			return cache.NewRedis[*models.Product](client, "product"),
				cache.NewRedis[*models.User](client, "user")
		}
	}

	return cache.NewMemory[int64, *models.Product]("product"),
		cache.NewMemory[int64, *models.User]("user")
}
