package catalog

import (
	"errors"
	"strings"

	"econome-backend/internal/httperr"
	"econome-backend/internal/models"
	"econome-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateProductRequest struct {
	ID           string  `json:"id"` // optional, generated when empty
	Name         string  `json:"name"`
	Family       string  `json:"family"`
	Unit         string  `json:"unit"`
	CurrentStock float64 `json:"currentStock"`
	MinStock     float64 `json:"minStock"`
	AverageCost  float64 `json:"averageCost"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Family      *string  `json:"family"`
	Unit        *string  `json:"unit"`
	MinStock    *float64 `json:"minStock"`
	AverageCost *float64 `json:"averageCost"`
}

// GET /api/products
func ListProductsHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := store.ListProducts()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot list products")
		}
		return c.JSON(products)
	}
}

// GET /api/products/low-stock
func LowStockProductsHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := store.LowStockProducts()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot list low-stock products")
		}
		return c.JSON(products)
	}
}

// GET /api/products/:id
func GetProductHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		product, err := store.GetProduct(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return httperr.NotFound("product", id)
			}
			return err
		}
		return c.JSON(product)
	}
}

// POST /api/products
func CreateProductHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Unit = strings.TrimSpace(body.Unit)
		if body.Name == "" || body.Unit == "" {
			return httperr.Validation("name and unit are required")
		}
		if body.CurrentStock < 0 || body.MinStock < 0 || body.AverageCost < 0 {
			return httperr.Validation("stock levels and cost must not be negative")
		}

		if body.ID == "" {
			body.ID = uuid.NewString()
		} else if _, err := store.GetProduct(body.ID); err == nil {
			return httperr.Conflict("product with id %s already exists", body.ID)
		}
		if _, err := store.GetProductByName(body.Name); err == nil {
			return httperr.Conflict("product with name %q already exists", body.Name)
		}

		p := models.Product{
			ID:           body.ID,
			Name:         body.Name,
			Family:       strings.TrimSpace(body.Family),
			Unit:         body.Unit,
			CurrentStock: body.CurrentStock,
			MinStock:     body.MinStock,
			AverageCost:  body.AverageCost,
		}
		if err := store.CreateProduct(&p); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot create product")
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// PUT /api/products/:id
// CurrentStock is deliberately absent from the update payload: stock only
// changes through ledger-backed operations.
func UpdateProductHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		product, err := store.GetProduct(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return httperr.NotFound("product", id)
			}
			return err
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return httperr.Validation("name must not be empty")
			}
			product.Name = name
		}
		if body.Family != nil {
			product.Family = strings.TrimSpace(*body.Family)
		}
		if body.Unit != nil {
			unit := strings.TrimSpace(*body.Unit)
			if unit == "" {
				return httperr.Validation("unit must not be empty")
			}
			product.Unit = unit
		}
		if body.MinStock != nil {
			if *body.MinStock < 0 {
				return httperr.Validation("minStock must not be negative")
			}
			product.MinStock = *body.MinStock
		}
		if body.AverageCost != nil {
			if *body.AverageCost < 0 {
				return httperr.Validation("averageCost must not be negative")
			}
			product.AverageCost = *body.AverageCost
		}

		if err := store.SaveProduct(product); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot update product")
		}
		return c.JSON(product)
	}
}

// DELETE /api/products/:id
func DeleteProductHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := store.DeleteProduct(id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return httperr.NotFound("product", id)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot delete product")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
