package stock

import (
	"fmt"
	"strconv"
	"strings"

	"econome-backend/internal/httperr"
	"econome-backend/internal/importer"

	"github.com/gofiber/fiber/v2"
)

type AdjustStockRequest struct {
	NewStock float64 `json:"newStock"`
	Notes    string  `json:"notes"`
}

type ApplySalesRequest struct {
	Sales []SaleLine `json:"sales"`
}

type InventoryImportRequest struct {
	FileName string      `json:"fileName"`
	Updates  []CountLine `json:"updates"`
}

// PATCH /api/products/:id/stock
func AdjustStockHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AdjustStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		product, err := svc.Adjust(c.Params("id"), body.NewStock, body.Notes)
		if err != nil {
			return err
		}
		return c.JSON(product)
	}
}

// GET /api/products/:id/movements?limit=...
func ListMovementsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid limit")
			}
			limit = n
		}
		movements, err := svc.Movements(c.Params("id"), limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot list stock movements")
		}
		return c.JSON(movements)
	}
}

// POST /api/sales
// Applies already-parsed sales lines (used by clients that parse reports
// themselves).
func ApplySalesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ApplySalesRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		result, err := svc.ApplySales(body.Sales)
		if err != nil {
			return err
		}
		return c.JSON(result)
	}
}

// POST /api/sales/upload
// Accepts a sales-report workbook and applies it in one batch.
func UploadSalesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "File upload failed: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx files are accepted")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot open uploaded file")
		}
		defer file.Close()

		rows, unparsed, err := importer.ParseSalesWorkbook(file)
		if err != nil {
			return httperr.Validation("cannot parse sales workbook: %v", err)
		}

		lines := make([]SaleLine, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, SaleLine{ProductName: row.ProductName, QuantitySold: row.QuantitySold})
		}
		result, err := svc.ApplySales(lines)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"updatedProducts": result.UpdatedProducts,
			"skippedProducts": result.SkippedNames,
			"unparsedRows":    unparsed,
			"message":         fmt.Sprintf("%d products updated, %d lines skipped", len(result.UpdatedProducts), len(result.SkippedNames)),
		})
	}
}

// POST /api/stock-imports
// Applies an already-parsed physical count.
func InventoryImportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body InventoryImportRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		result, err := svc.ApplyInventoryImport(body.FileName, body.Updates)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(result)
	}
}

// POST /api/stock-imports/upload
// Accepts a stock-count workbook and applies it as one import.
func UploadInventoryImportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "File upload failed: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx files are accepted")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot open uploaded file")
		}
		defer file.Close()

		rows, unparsed, err := importer.ParseCountWorkbook(file)
		if err != nil {
			return httperr.Validation("cannot parse stock-count workbook: %v", err)
		}

		lines := make([]CountLine, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, CountLine{ProductName: row.ProductName, NewStock: row.NewStock})
		}
		result, err := svc.ApplyInventoryImport(fileHeader.Filename, lines)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"record":          result.Record,
			"updatedProducts": result.UpdatedProducts,
			"skippedProducts": result.SkippedNames,
			"unparsedRows":    unparsed,
		})
	}
}

// GET /api/stock-imports
func ImportHistoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := svc.ImportHistory()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot list import history")
		}
		return c.JSON(records)
	}
}
