// Package handlers implements the HTTP surface of the four services.
// Handlers hold their dependencies as struct fields and register their
// own routes; validation happens at the boundary so invalid input never
// reaches the database or the resolvers.
package handlers

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"

	"github.com/foodfast/services/internal/config"
	"github.com/foodfast/services/pkg/metrics"
)

var validate = validator.New()

// ErrorHandler is the central fiber error handler. Clients always get a
// JSON body with an "error" key.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	if ve, ok := err.(validator.ValidationErrors); ok {
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": fields,
		})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled request error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

// NewApp builds the fiber app shared by all four binaries: error
// handler, CORS, /health and /metrics.
func NewApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Service,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Service})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	return app
}

// parseID reads a positive int64 path parameter.
func parseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return id, nil
}

// parseIDsQuery reads the optional ?ids=1,2,3 batch filter. The second
// return reports whether the parameter was present at all.
func parseIDsQuery(c *fiber.Ctx) ([]int64, bool, error) {
	raw := c.Query("ids")
	if raw == "" {
		return nil, false, nil
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, true, fiber.NewError(fiber.StatusBadRequest, "Invalid ids parameter")
		}
		ids = append(ids, id)
	}
	return ids, true, nil
}
