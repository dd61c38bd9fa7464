// Package storage defines the persistence boundary of the purchasing core.
// Services depend on the Store interface only, so the order lifecycle and
// stock reconciliation logic runs unchanged against Postgres (GormStore) or
// the in-memory fake used in tests (MemoryStore).
package storage

import "econome-backend/internal/models"

// MonthlySpending: aggregated order statistics, one row per month.
type MonthlySpending struct {
	Month      string  `json:"month"` // "2026-08"
	OrderCount int     `json:"orderCount"`
	TotalSpent float64 `json:"totalSpent"`
}

type Store interface {
	// Products
	ListProducts() ([]models.Product, error)
	LowStockProducts() ([]models.Product, error)
	GetProduct(id string) (*models.Product, error)
	GetProductByName(name string) (*models.Product, error)
	CreateProduct(p *models.Product) error
	SaveProduct(p *models.Product) error
	DeleteProduct(id string) error

	// Suppliers
	ListSuppliers() ([]models.Supplier, error)
	GetSupplier(id string) (*models.Supplier, error)
	CreateSupplier(s *models.Supplier) error
	SaveSupplier(s *models.Supplier) error
	DeleteSupplier(id string) error

	// Orders
	ListOrders(status string) ([]models.Order, error)
	GetOrder(id string) (*models.Order, error)
	// GetOrderForUpdate locks the order row for the duration of the enclosing
	// Transact call, serializing concurrent receipts against the same order.
	GetOrderForUpdate(id string) (*models.Order, error)
	CreateOrder(o *models.Order) error
	SaveOrder(o *models.Order) error
	DeleteOrder(id string) error
	MonthlySpending() ([]MonthlySpending, error)

	// Stock ledger (append-only)
	RecordMovement(m *models.StockMovement) error
	ListMovements(productID string, limit int) ([]models.StockMovement, error)

	// Import history
	CreateImportRecord(r *models.StockImportRecord) error
	ListImportRecords() ([]models.StockImportRecord, error)

	// Users
	ListUsers() ([]models.User, error)
	GetUser(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	CreateUser(u *models.User) error
	SaveUser(u *models.User) error
	DeleteUser(id string) error
	CountUsersByRole(role models.UserRole) (int64, error)

	// Settings
	GetSettings() (*models.AppSettings, error)
	SaveSettings(s *models.AppSettings) error

	// Transact runs fn against a transactional view of the store. If fn
	// returns an error every write performed inside it is rolled back.
	Transact(fn func(Store) error) error
}
