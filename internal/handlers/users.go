package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/foodfast/services/internal/models"
	"github.com/foodfast/services/pkg/logging"
)

// Users serves the users-service routes.
type Users struct {
	db     *gorm.DB
	logger zerolog.Logger
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db, logger: logging.NewLogger("users")}
}

func (h *Users) Register(app *fiber.App) {
	app.Post("/users", h.Create)
	app.Get("/users", h.List)
	app.Get("/users/:id", h.Get)
	app.Put("/users/:id", h.Update)
	app.Delete("/users/:id", h.Delete)
}

type userInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func (h *Users) Create(c *fiber.Ctx) error {
	var in userInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(in); err != nil {
		return err
	}

	user := models.User{Name: in.Name, Email: in.Email}
	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	h.logger.Info().Int64("id", user.ID).Msg("User created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created",
		"id":      user.ID,
	})
}

// List returns all users, or only the requested ones when the ?ids=
// batch filter is present. Unknown ids are silently omitted.
func (h *Users) List(c *fiber.Ctx) error {
	ids, filtered, err := parseIDsQuery(c)
	if err != nil {
		return err
	}

	q := h.db
	if filtered {
		q = q.Where("id IN ?", ids)
	}

	users := []models.User{}
	if err := q.Find(&users).Error; err != nil {
		return err
	}
	return c.JSON(users)
}

func (h *Users) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return err
	}
	return c.JSON(user)
}

type userUpdate struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
}

func (h *Users) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var in userUpdate
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(in); err != nil {
		return err
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if err := h.db.Save(&user).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User updated"})
}

func (h *Users) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	res := h.db.Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}
