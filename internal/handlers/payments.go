package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/foodfast/services/internal/models"
	"github.com/foodfast/services/pkg/logging"
)

// OrderTotals provides the total of an order, zero when the order is
// unknown or the orders-service cannot be reached.
type OrderTotals interface {
	OrderTotal(ctx context.Context, orderID int64) float64
}

type orderTotalsClient struct {
	base   string
	http   *http.Client
	logger zerolog.Logger
}

// NewOrderTotals returns an OrderTotals backed by the orders-service
// HTTP API.
func NewOrderTotals(base string, timeout time.Duration) OrderTotals {
	return &orderTotalsClient{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{Timeout: timeout},
		logger: logging.NewLogger("order-totals"),
	}
}

func (c *orderTotalsClient) OrderTotal(ctx context.Context, orderID int64) float64 {
	url := fmt.Sprintf("%s/orders/%d", c.base, orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Int64("order_id", orderID).Msg("Orders service unreachable")
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0
	}

	var order struct {
		Total float64 `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		c.logger.Warn().Err(err).Int64("order_id", orderID).Msg("Malformed order response")
		return 0
	}
	return order.Total
}

// Payments serves the payments-service routes. The payment amount is
// always taken from the order's current total, never from the client.
type Payments struct {
	db     *gorm.DB
	orders OrderTotals
	logger zerolog.Logger
}

func NewPayments(db *gorm.DB, orders OrderTotals) *Payments {
	return &Payments{db: db, orders: orders, logger: logging.NewLogger("payments")}
}

func (h *Payments) Register(app *fiber.App) {
	app.Post("/payments", h.Create)
	app.Get("/payments", h.List)
	app.Put("/payments/:id", h.Update)
	app.Delete("/payments/:id", h.Delete)
}

type paymentInput struct {
	ID      *int64 `json:"id"`
	OrderID int64  `json:"order_id" validate:"required,gt=0"`
	Method  string `json:"method" validate:"required"`
	Status  string `json:"status"`
}

func (h *Payments) Create(c *fiber.Ctx) error {
	var in paymentInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(in); err != nil {
		return err
	}

	amount := h.orders.OrderTotal(c.UserContext(), in.OrderID)
	if amount <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid order or order total is 0")
	}

	payment := models.Payment{
		OrderID: in.OrderID,
		Amount:  amount,
		Method:  in.Method,
		Status:  in.Status,
	}
	if payment.Status == "" {
		payment.Status = "Pending"
	}

	message := "Payment created"
	if in.ID != nil {
		if *in.ID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID must be positive")
		}
		var count int64
		if err := h.db.Model(&models.Payment{}).Where("id = ?", *in.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "ID already exists")
		}
		payment.ID = *in.ID
		message = "Payment created with custom ID"
	}

	if err := h.db.Create(&payment).Error; err != nil {
		return err
	}

	h.logger.Info().Int64("id", payment.ID).Int64("order_id", payment.OrderID).
		Float64("amount", amount).Msg("Payment created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"id":      payment.ID,
		"amount":  payment.Amount,
		"status":  payment.Status,
	})
}

// List returns payments. A numeric ?search= matches the payment or
// order id; any other search matches method or status substrings.
func (h *Payments) List(c *fiber.Ctx) error {
	q := h.db
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		if id, err := strconv.ParseInt(search, 10, 64); err == nil {
			q = q.Where("id = ? OR order_id = ?", id, id)
		} else {
			like := "%" + search + "%"
			q = q.Where("method LIKE ? OR status LIKE ?", like, like)
		}
	}

	payments := []models.Payment{}
	if err := q.Find(&payments).Error; err != nil {
		return err
	}
	return c.JSON(payments)
}

type paymentUpdate struct {
	ID      *int64   `json:"id"`
	OrderID *int64   `json:"order_id" validate:"omitempty,gt=0"`
	Amount  *float64 `json:"amount" validate:"omitempty,gt=0"`
	Method  *string  `json:"method"`
	Status  *string  `json:"status"`
}

func (h *Payments) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var in paymentUpdate
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(in); err != nil {
		return err
	}

	var payment models.Payment
	if err := h.db.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Payment not found")
		}
		return err
	}

	if in.OrderID != nil {
		payment.OrderID = *in.OrderID
	}
	if in.Amount != nil {
		payment.Amount = *in.Amount
	}
	if in.Method != nil {
		payment.Method = *in.Method
	}
	if in.Status != nil {
		payment.Status = *in.Status
	}

	if in.ID != nil && *in.ID != id {
		newID := *in.ID
		if newID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID must be positive")
		}
		var count int64
		if err := h.db.Model(&models.Payment{}).Where("id = ?", newID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "New ID already exists")
		}

		err := h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&models.Payment{}, id).Error; err != nil {
				return err
			}
			payment.ID = newID
			return tx.Create(&payment).Error
		})
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Payment updated with new ID", "new_id": newID})
	}

	if err := h.db.Save(&payment).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Payment updated"})
}

func (h *Payments) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	res := h.db.Delete(&models.Payment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Payment not found")
	}
	return c.JSON(fiber.Map{"message": "Payment deleted"})
}
