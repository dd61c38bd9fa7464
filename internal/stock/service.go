package stock

import (
	"errors"
	"fmt"
	"time"

	"econome-backend/internal/httperr"
	"econome-backend/internal/models"
	"econome-backend/internal/storage"
	"econome-backend/pkg/logger"

	"github.com/google/uuid"
)

// SaleLine: one line of a sales export, matched to a product by exact name.
type SaleLine struct {
	ProductName  string  `json:"productName"`
	QuantitySold float64 `json:"quantitySold"`
}

// CountLine: one line of a physical inventory count; NewStock is the counted
// absolute level, not a delta.
type CountLine struct {
	ProductName string  `json:"productName"`
	NewStock    float64 `json:"newStock"`
}

// BatchResult reports how a best-effort batch went: lines that matched a
// product were applied, the rest are listed as skipped.
type BatchResult struct {
	UpdatedProducts []models.Product `json:"updatedProducts"`
	SkippedNames    []string         `json:"skippedProducts"`
}

// ImportResult: outcome of a stock-count import, including its history entry.
type ImportResult struct {
	Record          models.StockImportRecord `json:"record"`
	UpdatedProducts []models.Product         `json:"updatedProducts"`
	SkippedNames    []string                 `json:"skippedProducts"`
}

// Service owns stock bookkeeping outside the order lifecycle: manual
// adjustments, sales reconciliation and inventory imports. Every stock
// mutation writes a ledger entry in the same transaction.
type Service struct {
	store storage.Store
	log   *logger.Logger
}

func NewService(store storage.Store, log *logger.Logger) *Service {
	return &Service{
		store: store,
		log:   log.WithComponent("stock_service"),
	}
}

// Adjust overwrites a product's stock level and records an ADJUSTMENT entry
// with the signed difference.
func (s *Service) Adjust(productID string, newStock float64, notes string) (*models.Product, error) {
	if newStock < 0 {
		return nil, httperr.Validation("stock level must not be negative")
	}
	if notes == "" {
		notes = "Manual adjustment"
	}

	var updated *models.Product
	err := s.store.Transact(func(tx storage.Store) error {
		product, err := tx.GetProduct(productID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return httperr.NotFound("product", productID)
			}
			return err
		}
		previous := product.CurrentStock
		product.CurrentStock = newStock
		if err := tx.SaveProduct(product); err != nil {
			return err
		}
		if err := tx.RecordMovement(&models.StockMovement{
			ProductID:     product.ID,
			MovementType:  models.MovementAdjustment,
			Quantity:      newStock - previous,
			PreviousStock: previous,
			NewStock:      newStock,
			Notes:         notes,
		}); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Stock adjusted", "product_id", productID, "new_stock", newStock)
	return updated, nil
}

// ApplySales decrements stock from a sales export. Products are matched by
// exact name; unmatched lines are skipped, not fatal. Stock clamps at zero
// and the SALE ledger entry records the effective (clamped) delta, so the
// per-product ledger chain stays consistent.
func (s *Service) ApplySales(lines []SaleLine) (*BatchResult, error) {
	for _, line := range lines {
		if line.QuantitySold < 0 {
			return nil, httperr.Validation("quantity sold must not be negative for %q", line.ProductName)
		}
	}

	result := &BatchResult{UpdatedProducts: []models.Product{}, SkippedNames: []string{}}
	err := s.store.Transact(func(tx storage.Store) error {
		for _, line := range lines {
			product, err := tx.GetProductByName(line.ProductName)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					s.log.Warn("Sales line skipped: product not found", "product_name", line.ProductName)
					result.SkippedNames = append(result.SkippedNames, line.ProductName)
					continue
				}
				return err
			}
			previous := product.CurrentStock
			newStock := previous - line.QuantitySold
			if newStock < 0 {
				newStock = 0
			}
			product.CurrentStock = newStock
			if err := tx.SaveProduct(product); err != nil {
				return err
			}
			if err := tx.RecordMovement(&models.StockMovement{
				ProductID:     product.ID,
				MovementType:  models.MovementSale,
				Quantity:      newStock - previous,
				PreviousStock: previous,
				NewStock:      newStock,
				Notes:         fmt.Sprintf("Sale: %g %s", line.QuantitySold, product.Unit),
			}); err != nil {
				return err
			}
			result.UpdatedProducts = append(result.UpdatedProducts, *product)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Sales applied", "updated", len(result.UpdatedProducts), "skipped", len(result.SkippedNames))
	return result, nil
}

// ApplyInventoryImport overwrites stock levels from a physical count file,
// records an ADJUSTMENT entry per matched product and appends one entry to
// the import history.
func (s *Service) ApplyInventoryImport(fileName string, lines []CountLine) (*ImportResult, error) {
	if fileName == "" {
		return nil, httperr.Validation("file name is required")
	}
	for _, line := range lines {
		if line.NewStock < 0 {
			return nil, httperr.Validation("stock level must not be negative for %q", line.ProductName)
		}
	}

	result := &ImportResult{UpdatedProducts: []models.Product{}, SkippedNames: []string{}}
	err := s.store.Transact(func(tx storage.Store) error {
		record := models.StockImportRecord{
			ID:       uuid.NewString(),
			Date:     time.Now(),
			FileName: fileName,
		}
		for _, line := range lines {
			product, err := tx.GetProductByName(line.ProductName)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					s.log.Warn("Import line skipped: product not found", "product_name", line.ProductName)
					result.SkippedNames = append(result.SkippedNames, line.ProductName)
					continue
				}
				return err
			}
			previous := product.CurrentStock
			product.CurrentStock = line.NewStock
			if err := tx.SaveProduct(product); err != nil {
				return err
			}
			if err := tx.RecordMovement(&models.StockMovement{
				ProductID:     product.ID,
				MovementType:  models.MovementAdjustment,
				Quantity:      line.NewStock - previous,
				PreviousStock: previous,
				NewStock:      line.NewStock,
				ReferenceID:   record.ID,
				Notes:         fmt.Sprintf("Inventory import: %s", fileName),
			}); err != nil {
				return err
			}
			result.UpdatedProducts = append(result.UpdatedProducts, *product)
		}
		record.ProductsUpdated = len(result.UpdatedProducts)
		if err := tx.CreateImportRecord(&record); err != nil {
			return err
		}
		result.Record = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Inventory import applied", "file", fileName,
		"updated", len(result.UpdatedProducts), "skipped", len(result.SkippedNames))
	return result, nil
}

// Movements returns the ledger for one product (or all products when
// productID is empty), in chronological order.
func (s *Service) Movements(productID string, limit int) ([]models.StockMovement, error) {
	return s.store.ListMovements(productID, limit)
}

// ImportHistory lists past inventory imports, most recent first.
func (s *Service) ImportHistory() ([]models.StockImportRecord, error) {
	return s.store.ListImportRecords()
}
