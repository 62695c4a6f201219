package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/foodfast/services/internal/models"
	"github.com/foodfast/services/pkg/logging"
)

// Products serves the products-service routes. The list endpoint's ?ids=
// filter is the batch path the order resolver consumes.
type Products struct {
	db     *gorm.DB
	logger zerolog.Logger
}

func NewProducts(db *gorm.DB) *Products {
	return &Products{db: db, logger: logging.NewLogger("products")}
}

func (h *Products) Register(app *fiber.App) {
	app.Post("/products", h.Create)
	app.Get("/products", h.List)
	app.Get("/products/:id", h.Get)
	app.Put("/products/:id", h.Update)
	app.Delete("/products/:id", h.Delete)
}

type productInput struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
}

func (h *Products) Create(c *fiber.Ctx) error {
	var in productInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(in); err != nil {
		return err
	}

	product := models.Product{Name: in.Name, Price: in.Price}
	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	h.logger.Info().Int64("id", product.ID).Msg("Product added")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product added",
		"id":      product.ID,
	})
}

func (h *Products) List(c *fiber.Ctx) error {
	ids, filtered, err := parseIDsQuery(c)
	if err != nil {
		return err
	}

	q := h.db
	if filtered {
		q = q.Where("id IN ?", ids)
	}

	products := []models.Product{}
	if err := q.Find(&products).Error; err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *Products) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return err
	}
	return c.JSON(product)
}

type productUpdate struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price" validate:"omitempty,gte=0"`
}

func (h *Products) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var in productUpdate
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(in); err != nil {
		return err
	}

	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return err
	}

	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if err := h.db.Save(&product).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product updated"})
}

func (h *Products) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	res := h.db.Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Product not found")
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}
