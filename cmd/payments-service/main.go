// The payments service records payments against orders; the amount is
// read from the orders service at creation time.
package main

import (
	"github.com/foodfast/services/internal/config"
	"github.com/foodfast/services/internal/database"
	"github.com/foodfast/services/internal/handlers"
	"github.com/foodfast/services/internal/models"
	"github.com/foodfast/services/pkg/logging"
)

func main() {
	cfg := config.Load("payments", "5004")
	logger := logging.Setup(logging.Config{
		Level:   cfg.Log.Level,
		Pretty:  cfg.Log.Pretty,
		Service: cfg.Service,
	})

	db, err := database.Connect(cfg.DB.DSN, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed")
	}
	if err := database.Migrate(db, &models.Payment{}); err != nil {
		logger.Fatal().Err(err).Msg("Migration failed")
	}

	orders := handlers.NewOrderTotals(cfg.Deps.OrdersBase, cfg.Deps.Timeout)

	app := handlers.NewApp(cfg)
	handlers.NewPayments(db, orders).Register(app)

	logger.Info().Str("port", cfg.Port).
		Str("orders_base", cfg.Deps.OrdersBase).
		Msg("Starting payments service")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}
