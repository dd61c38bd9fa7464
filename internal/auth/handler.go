package auth

import (
	"errors"
	"strings"

	"econome-backend/internal/config"
	"econome-backend/internal/models"
	"econome-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RegisterManagerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterManagerHandler bootstraps the first Gérant account. Once one
// exists, further users are created through the user management endpoints.
func RegisterManagerHandler(cfg *config.Config, store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterManagerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name, email and password are required")
		}
		if len(body.Password) < 6 {
			return fiber.NewError(fiber.StatusBadRequest, "Password must be at least 6 characters")
		}

		count, err := store.CountUsersByRole(models.RoleManager)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot check existing accounts")
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "A manager account already exists")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot hash password")
		}

		user := models.User{
			ID:           uuid.NewString(),
			Name:         body.Name,
			Email:        body.Email,
			Role:         models.RoleManager,
			PasswordHash: string(hash),
		}
		if err := store.CreateUser(&user); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot create user")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

func LoginHandler(cfg *config.Config, store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		user, err := store.GetUserByEmail(body.Email)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot look up user")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}

		token, err := GenerateToken(cfg.JWTSecret, user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot issue token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	}
}

func MeHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(CtxUserIDKey).(string)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Cannot resolve user")
		}
		user, err := store.GetUser(userID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "User no longer exists")
		}
		return c.JSON(user)
	}
}
