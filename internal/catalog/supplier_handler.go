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

type SupplierProductRequest struct {
	InternalProductID string  `json:"internalProductId"`
	SupplierSku       string  `json:"supplierSku"`
	Price             float64 `json:"price"`
}

type CreateSupplierRequest struct {
	ID           string                   `json:"id"` // optional, generated when empty
	Name         string                   `json:"name"`
	DeliveryDays string                   `json:"deliveryDays"`
	MinOrder     float64                  `json:"minOrder"`
	Products     []SupplierProductRequest `json:"products"`
}

type UpdateSupplierRequest struct {
	Name         *string                   `json:"name"`
	DeliveryDays *string                   `json:"deliveryDays"`
	MinOrder     *float64                  `json:"minOrder"`
	Products     *[]SupplierProductRequest `json:"products"` // replaces all mappings when present
}

// buildMappings validates and converts mapping requests. One mapping per
// product per supplier; every referenced product must exist.
func buildMappings(store storage.Store, reqs []SupplierProductRequest) ([]models.SupplierProduct, error) {
	seen := make(map[string]bool, len(reqs))
	mappings := make([]models.SupplierProduct, 0, len(reqs))
	for _, req := range reqs {
		if req.InternalProductID == "" {
			return nil, httperr.Validation("internalProductId is required for every mapping")
		}
		if req.Price < 0 {
			return nil, httperr.Validation("price must not be negative for product %s", req.InternalProductID)
		}
		if seen[req.InternalProductID] {
			return nil, httperr.Validation("duplicate mapping for product %s", req.InternalProductID)
		}
		seen[req.InternalProductID] = true
		if _, err := store.GetProduct(req.InternalProductID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, httperr.Validation("mapping references unknown product %s", req.InternalProductID)
			}
			return nil, err
		}
		mappings = append(mappings, models.SupplierProduct{
			InternalProductID: req.InternalProductID,
			SupplierSku:       req.SupplierSku,
			Price:             req.Price,
		})
	}
	return mappings, nil
}

// GET /api/suppliers
func ListSuppliersHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		suppliers, err := store.ListSuppliers()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot list suppliers")
		}
		return c.JSON(suppliers)
	}
}

// GET /api/suppliers/:id
func GetSupplierHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		supplier, err := store.GetSupplier(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return httperr.NotFound("supplier", id)
			}
			return err
		}
		return c.JSON(supplier)
	}
}

// POST /api/suppliers
func CreateSupplierHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return httperr.Validation("name is required")
		}
		if body.MinOrder < 0 {
			return httperr.Validation("minOrder must not be negative")
		}

		if body.ID == "" {
			body.ID = uuid.NewString()
		} else if _, err := store.GetSupplier(body.ID); err == nil {
			return httperr.Conflict("supplier with id %s already exists", body.ID)
		}

		mappings, err := buildMappings(store, body.Products)
		if err != nil {
			return err
		}

		supplier := models.Supplier{
			ID:           body.ID,
			Name:         body.Name,
			DeliveryDays: strings.TrimSpace(body.DeliveryDays),
			MinOrder:     body.MinOrder,
			Products:     mappings,
		}
		if err := store.CreateSupplier(&supplier); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot create supplier")
		}
		return c.Status(fiber.StatusCreated).JSON(supplier)
	}
}

// PUT /api/suppliers/:id
func UpdateSupplierHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		supplier, err := store.GetSupplier(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return httperr.NotFound("supplier", id)
			}
			return err
		}

		var body UpdateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return httperr.Validation("name must not be empty")
			}
			supplier.Name = name
		}
		if body.DeliveryDays != nil {
			supplier.DeliveryDays = strings.TrimSpace(*body.DeliveryDays)
		}
		if body.MinOrder != nil {
			if *body.MinOrder < 0 {
				return httperr.Validation("minOrder must not be negative")
			}
			supplier.MinOrder = *body.MinOrder
		}
		if body.Products != nil {
			mappings, err := buildMappings(store, *body.Products)
			if err != nil {
				return err
			}
			supplier.Products = mappings
		}

		if err := store.SaveSupplier(supplier); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot update supplier")
		}
		return c.JSON(supplier)
	}
}

// DELETE /api/suppliers/:id
func DeleteSupplierHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := store.DeleteSupplier(id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return httperr.NotFound("supplier", id)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot delete supplier")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
