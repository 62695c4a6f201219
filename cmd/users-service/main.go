// The users service owns user records and exposes them for the order
// aggregation batch lookups.
package main

import (
	"github.com/foodfast/services/internal/config"
	"github.com/foodfast/services/internal/database"
	"github.com/foodfast/services/internal/handlers"
	"github.com/foodfast/services/internal/models"
	"github.com/foodfast/services/pkg/logging"
)

func main() {
	cfg := config.Load("users", "5001")
	logger := logging.Setup(logging.Config{
		Level:   cfg.Log.Level,
		Pretty:  cfg.Log.Pretty,
		Service: cfg.Service,
	})

	db, err := database.Connect(cfg.DB.DSN, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed")
	}
	if err := database.Migrate(db, &models.User{}); err != nil {
		logger.Fatal().Err(err).Msg("Migration failed")
	}

	app := handlers.NewApp(cfg)
	handlers.NewUsers(db).Register(app)

	logger.Info().Str("port", cfg.Port).Msg("Starting users service")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}
