package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/foodfast/services/internal/aggregate"
	"github.com/foodfast/services/internal/models"
	"github.com/foodfast/services/pkg/logging"
)

// Orders serves the orders-service routes. Reads return aggregated
// views; totals are computed through the aggregator so a dependency
// outage never fails a write.
type Orders struct {
	db     *gorm.DB
	agg    *aggregate.Aggregator
	logger zerolog.Logger
}

func NewOrders(db *gorm.DB, agg *aggregate.Aggregator) *Orders {
	return &Orders{db: db, agg: agg, logger: logging.NewLogger("orders")}
}

func (h *Orders) Register(app *fiber.App) {
	app.Post("/orders", h.Create)
	app.Get("/orders", h.List)
	app.Get("/orders/:id", h.Get)
	app.Put("/orders/:id", h.Update)
	app.Delete("/orders/:id", h.Delete)
}

type orderInput struct {
	ID         *int64        `json:"id"`
	UserID     int64         `json:"user_id" validate:"required,gt=0"`
	ProductIDs models.IDList `json:"product_ids" validate:"required,min=1"`
}

func (h *Orders) Create(c *fiber.Ctx) error {
	var in orderInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(in); err != nil {
		return err
	}

	// Every order starts Pending; the status moves only through updates.
	order := models.Order{
		UserID:     in.UserID,
		ProductIDs: models.FormatProductIDs(in.ProductIDs),
		Status:     "Pending",
	}

	message := "Order created"
	if in.ID != nil {
		if *in.ID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID must be positive")
		}
		var count int64
		if err := h.db.Model(&models.Order{}).Where("id = ?", *in.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "ID already exists")
		}
		order.ID = *in.ID
		message = "Order created with custom ID"
	}

	order.Total = h.agg.OrderTotal(c.UserContext(), in.ProductIDs)

	if err := h.db.Create(&order).Error; err != nil {
		return err
	}

	h.logger.Info().Int64("id", order.ID).Float64("total", order.Total).Msg("Order created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"id":      order.ID,
		"total":   order.Total,
	})
}

// List returns aggregated order views. An optional ?search= matches the
// order id or the user id; a non-numeric search is ignored and the
// listing comes back unfiltered.
func (h *Orders) List(c *fiber.Ctx) error {
	q := h.db
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		if id, err := strconv.ParseInt(search, 10, 64); err == nil {
			q = q.Where("id = ? OR user_id = ?", id, id)
		}
	}

	orders := []models.Order{}
	if err := q.Find(&orders).Error; err != nil {
		return err
	}
	return c.JSON(h.agg.Views(c.UserContext(), orders))
}

func (h *Orders) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var order models.Order
	if err := h.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}
		return err
	}
	return c.JSON(h.agg.View(c.UserContext(), order))
}

type orderUpdate struct {
	ID         *int64         `json:"id"`
	UserID     *int64         `json:"user_id" validate:"omitempty,gt=0"`
	ProductIDs *models.IDList `json:"product_ids" validate:"omitempty,min=1"`
	Status     *string        `json:"status"`
}

func (h *Orders) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var in orderUpdate
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(in); err != nil {
		return err
	}

	var order models.Order
	if err := h.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}
		return err
	}

	if in.UserID != nil {
		order.UserID = *in.UserID
	}
	if in.ProductIDs != nil {
		order.ProductIDs = models.FormatProductIDs(*in.ProductIDs)
		order.Total = h.agg.OrderTotal(c.UserContext(), *in.ProductIDs)
	}
	if in.Status != nil {
		order.Status = *in.Status
	}

	if in.ID != nil && *in.ID != id {
		newID := *in.ID
		if newID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID must be positive")
		}
		var count int64
		if err := h.db.Model(&models.Order{}).Where("id = ?", newID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "New ID already exists")
		}

		// Primary key change: replace the row under the new id.
		err := h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&models.Order{}, id).Error; err != nil {
				return err
			}
			order.ID = newID
			return tx.Create(&order).Error
		})
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Order updated with new ID", "new_id": newID})
	}

	if err := h.db.Save(&order).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Order updated"})
}

func (h *Orders) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	res := h.db.Delete(&models.Order{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Order not found")
	}
	return c.JSON(fiber.Map{"message": "Order deleted"})
}
