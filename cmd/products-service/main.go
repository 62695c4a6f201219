// The products service owns the product catalog; its list endpoint's
// ?ids= filter is the batch path the order resolver consumes.
package main

import (
	"github.com/foodfast/services/internal/config"
	"github.com/foodfast/services/internal/database"
	"github.com/foodfast/services/internal/handlers"
	"github.com/foodfast/services/internal/models"
	"github.com/foodfast/services/pkg/logging"
)

func main() {
	cfg := config.Load("products", "5002")
	logger := logging.Setup(logging.Config{
		Level:   cfg.Log.Level,
		Pretty:  cfg.Log.Pretty,
		Service: cfg.Service,
	})

	db, err := database.Connect(cfg.DB.DSN, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed")
	}
	if err := database.Migrate(db, &models.Product{}); err != nil {
		logger.Fatal().Err(err).Msg("Migration failed")
	}

	app := handlers.NewApp(cfg)
	handlers.NewProducts(db).Register(app)

	logger.Info().Str("port", cfg.Port).Msg("Starting products service")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}
