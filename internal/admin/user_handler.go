package admin

import (
	"errors"
	"strings"

	"econome-backend/internal/httperr"
	"econome-backend/internal/models"
	"econome-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	ID       string          `json:"id"` // optional, generated when empty
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
	Password string          `json:"password"`
}

type UpdateUserRequest struct {
	Name     *string          `json:"name"`
	Email    *string          `json:"email"`
	Role     *models.UserRole `json:"role"`
	Password *string          `json:"password"`
}

func validRole(role models.UserRole) bool {
	switch role {
	case models.RoleManager, models.RoleChef, models.RoleCommis:
		return true
	}
	return false
}

// GET /api/users
func ListUsersHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := store.ListUsers()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot list users")
		}
		return c.JSON(users)
	}
}

// GET /api/users/:id
func GetUserHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		user, err := store.GetUser(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return httperr.NotFound("user", id)
			}
			return err
		}
		return c.JSON(user)
	}
}

// POST /api/users
func CreateUserHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Name == "" || body.Email == "" {
			return httperr.Validation("name and email are required")
		}
		if !validRole(body.Role) {
			return httperr.Validation("role must be one of Gérant, Chef, Commis")
		}
		if body.Password != "" && len(body.Password) < 6 {
			return httperr.Validation("password must be at least 6 characters")
		}

		if body.ID == "" {
			body.ID = uuid.NewString()
		} else if _, err := store.GetUser(body.ID); err == nil {
			return httperr.Conflict("user with id %s already exists", body.ID)
		}
		if _, err := store.GetUserByEmail(body.Email); err == nil {
			return httperr.Conflict("user with email %s already exists", body.Email)
		}

		user := models.User{
			ID:    body.ID,
			Name:  body.Name,
			Email: body.Email,
			Role:  body.Role,
		}
		if body.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Cannot hash password")
			}
			user.PasswordHash = string(hash)
		}

		if err := store.CreateUser(&user); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot create user")
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// PUT /api/users/:id
func UpdateUserHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		user, err := store.GetUser(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return httperr.NotFound("user", id)
			}
			return err
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return httperr.Validation("name must not be empty")
			}
			user.Name = name
		}
		if body.Email != nil {
			email := strings.TrimSpace(strings.ToLower(*body.Email))
			if email == "" {
				return httperr.Validation("email must not be empty")
			}
			if other, err := store.GetUserByEmail(email); err == nil && other.ID != user.ID {
				return httperr.Conflict("user with email %s already exists", email)
			}
			user.Email = email
		}
		if body.Role != nil {
			if !validRole(*body.Role) {
				return httperr.Validation("role must be one of Gérant, Chef, Commis")
			}
			user.Role = *body.Role
		}
		if body.Password != nil {
			if len(*body.Password) < 6 {
				return httperr.Validation("password must be at least 6 characters")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Cannot hash password")
			}
			user.PasswordHash = string(hash)
		}

		if err := store.SaveUser(user); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot update user")
		}
		return c.JSON(user)
	}
}

// DELETE /api/users/:id
func DeleteUserHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := store.DeleteUser(id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return httperr.NotFound("user", id)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot delete user")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
