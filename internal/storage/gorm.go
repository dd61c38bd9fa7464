package storage

import (
	"errors"

	"econome-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by every Get*/Delete* when no row matches.
// Services translate it into the HTTP error taxonomy.
var ErrNotFound = errors.New("record not found")

// GormStore is the Postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Products

func (s *GormStore) ListProducts() ([]models.Product, error) {
	var products []models.Product
	err := s.db.Order("name asc").Find(&products).Error
	return products, err
}

func (s *GormStore) LowStockProducts() ([]models.Product, error) {
	var products []models.Product
	err := s.db.Where("current_stock <= min_stock").Order("name asc").Find(&products).Error
	return products, err
}

func (s *GormStore) GetProduct(id string) (*models.Product, error) {
	var p models.Product
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *GormStore) GetProductByName(name string) (*models.Product, error) {
	var p models.Product
	if err := s.db.First(&p, "name = ?", name).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *GormStore) CreateProduct(p *models.Product) error {
	return s.db.Create(p).Error
}

func (s *GormStore) SaveProduct(p *models.Product) error {
	return s.db.Save(p).Error
}

func (s *GormStore) DeleteProduct(id string) error {
	res := s.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Suppliers

func (s *GormStore) ListSuppliers() ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := s.db.Preload("Products").Order("name asc").Find(&suppliers).Error
	return suppliers, err
}

func (s *GormStore) GetSupplier(id string) (*models.Supplier, error) {
	var sup models.Supplier
	if err := s.db.Preload("Products").First(&sup, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &sup, nil
}

func (s *GormStore) CreateSupplier(sup *models.Supplier) error {
	return s.db.Create(sup).Error
}

// SaveSupplier updates the supplier row and replaces its product mappings
// wholesale, matching the replace-all semantics of the supplier edit form.
func (s *GormStore) SaveSupplier(sup *models.Supplier) error {
	if err := s.db.Omit("Products").Save(sup).Error; err != nil {
		return err
	}
	if err := s.db.Where("supplier_id = ?", sup.ID).Delete(&models.SupplierProduct{}).Error; err != nil {
		return err
	}
	for i := range sup.Products {
		sup.Products[i].ID = 0
		sup.Products[i].SupplierID = sup.ID
		if err := s.db.Create(&sup.Products[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *GormStore) DeleteSupplier(id string) error {
	if err := s.db.Where("supplier_id = ?", id).Delete(&models.SupplierProduct{}).Error; err != nil {
		return err
	}
	res := s.db.Delete(&models.Supplier{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Orders

func (s *GormStore) ListOrders(status string) ([]models.Order, error) {
	q := s.db.Preload("Items").Order("date desc, created_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var orders []models.Order
	err := q.Find(&orders).Error
	return orders, err
}

func (s *GormStore) GetOrder(id string) (*models.Order, error) {
	var o models.Order
	if err := s.db.Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *GormStore) GetOrderForUpdate(id string) (*models.Order, error) {
	var o models.Order
	if err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	if err := s.db.Where("order_id = ?", id).Order("id asc").Find(&o.Items).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *GormStore) CreateOrder(o *models.Order) error {
	return s.db.Create(o).Error
}

func (s *GormStore) SaveOrder(o *models.Order) error {
	if err := s.db.Omit("Items").Save(o).Error; err != nil {
		return err
	}
	for i := range o.Items {
		if err := s.db.Save(&o.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *GormStore) DeleteOrder(id string) error {
	if err := s.db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	res := s.db.Delete(&models.Order{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) MonthlySpending() ([]MonthlySpending, error) {
	var rows []MonthlySpending
	err := s.db.Model(&models.Order{}).
		Select("to_char(date, 'YYYY-MM') as month, count(*) as order_count, coalesce(sum(total), 0) as total_spent").
		Where("status <> ?", models.StatusCancelled).
		Group("to_char(date, 'YYYY-MM')").
		Order("month desc").
		Scan(&rows).Error
	return rows, err
}

// Stock ledger

func (s *GormStore) RecordMovement(m *models.StockMovement) error {
	return s.db.Create(m).Error
}

func (s *GormStore) ListMovements(productID string, limit int) ([]models.StockMovement, error) {
	q := s.db.Order("created_at asc, id asc")
	if productID != "" {
		q = q.Where("product_id = ?", productID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var movements []models.StockMovement
	err := q.Find(&movements).Error
	return movements, err
}

// Import history

func (s *GormStore) CreateImportRecord(r *models.StockImportRecord) error {
	return s.db.Create(r).Error
}

func (s *GormStore) ListImportRecords() ([]models.StockImportRecord, error) {
	var records []models.StockImportRecord
	err := s.db.Order("date desc, created_at desc").Find(&records).Error
	return records, err
}

// Users

func (s *GormStore) ListUsers() ([]models.User, error) {
	var users []models.User
	err := s.db.Order("name asc").Find(&users).Error
	return users, err
}

func (s *GormStore) GetUser(id string) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *GormStore) GetUserByEmail(email string) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, "email = ?", email).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *GormStore) CreateUser(u *models.User) error {
	return s.db.Create(u).Error
}

func (s *GormStore) SaveUser(u *models.User) error {
	return s.db.Save(u).Error
}

func (s *GormStore) DeleteUser(id string) error {
	res := s.db.Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CountUsersByRole(role models.UserRole) (int64, error) {
	var count int64
	err := s.db.Model(&models.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

// Settings

func (s *GormStore) GetSettings() (*models.AppSettings, error) {
	var settings models.AppSettings
	if err := s.db.Order("id desc").First(&settings).Error; err != nil {
		return nil, notFound(err)
	}
	return &settings, nil
}

func (s *GormStore) SaveSettings(settings *models.AppSettings) error {
	return s.db.Save(settings).Error
}

// Transact

func (s *GormStore) Transact(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
