package storage

import (
	"sort"
	"strings"
	"sync"

	"econome-backend/internal/models"
)

// MemoryStore is an in-memory Store used by tests. Transactions are
// serialized by a mutex and rolled back by restoring a snapshot, which gives
// the same all-or-nothing guarantee the Postgres store provides.
type MemoryStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	products  map[string]models.Product
	suppliers map[string]models.Supplier
	orders    map[string]models.Order
	movements []models.StockMovement
	imports   []models.StockImportRecord
	users     map[string]models.User
	settings  *models.AppSettings

	nextMovementID uint
	nextItemID     uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:  make(map[string]models.Product),
		suppliers: make(map[string]models.Supplier),
		orders:    make(map[string]models.Order),
		users:     make(map[string]models.User),
	}
}

type memorySnapshot struct {
	products       map[string]models.Product
	suppliers      map[string]models.Supplier
	orders         map[string]models.Order
	movements      []models.StockMovement
	imports        []models.StockImportRecord
	users          map[string]models.User
	settings       *models.AppSettings
	nextMovementID uint
	nextItemID     uint
}

func copySupplier(s models.Supplier) models.Supplier {
	out := s
	out.Products = append([]models.SupplierProduct(nil), s.Products...)
	return out
}

func copyOrder(o models.Order) models.Order {
	out := o
	out.Items = append([]models.OrderItem(nil), o.Items...)
	return out
}

func (s *MemoryStore) snapshot() memorySnapshot {
	snap := memorySnapshot{
		products:       make(map[string]models.Product, len(s.products)),
		suppliers:      make(map[string]models.Supplier, len(s.suppliers)),
		orders:         make(map[string]models.Order, len(s.orders)),
		movements:      append([]models.StockMovement(nil), s.movements...),
		imports:        append([]models.StockImportRecord(nil), s.imports...),
		users:          make(map[string]models.User, len(s.users)),
		nextMovementID: s.nextMovementID,
		nextItemID:     s.nextItemID,
	}
	for id, p := range s.products {
		snap.products[id] = p
	}
	for id, sup := range s.suppliers {
		snap.suppliers[id] = copySupplier(sup)
	}
	for id, o := range s.orders {
		snap.orders[id] = copyOrder(o)
	}
	for id, u := range s.users {
		snap.users[id] = u
	}
	if s.settings != nil {
		settings := *s.settings
		snap.settings = &settings
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.products = snap.products
	s.suppliers = snap.suppliers
	s.orders = snap.orders
	s.movements = snap.movements
	s.imports = snap.imports
	s.users = snap.users
	s.settings = snap.settings
	s.nextMovementID = snap.nextMovementID
	s.nextItemID = snap.nextItemID
}

// Products

func (s *MemoryStore) ListProducts() ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (s *MemoryStore) LowStockProducts() ([]models.Product, error) {
	all, _ := s.ListProducts()
	out := make([]models.Product, 0)
	for _, p := range all {
		if p.CurrentStock <= p.MinStock {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetProduct(id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) GetProductByName(name string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Name == name {
			out := p
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateProduct(p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryStore) SaveProduct(p *models.Product) error {
	return s.CreateProduct(p)
}

func (s *MemoryStore) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// Suppliers

func (s *MemoryStore) ListSuppliers() ([]models.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		out = append(out, copySupplier(sup))
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (s *MemoryStore) GetSupplier(id string) (*models.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sup, ok := s.suppliers[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copySupplier(sup)
	return &out, nil
}

func (s *MemoryStore) CreateSupplier(sup *models.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers[sup.ID] = copySupplier(*sup)
	return nil
}

func (s *MemoryStore) SaveSupplier(sup *models.Supplier) error {
	return s.CreateSupplier(sup)
}

func (s *MemoryStore) DeleteSupplier(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.suppliers[id]; !ok {
		return ErrNotFound
	}
	delete(s.suppliers, id)
	return nil
}

// Orders

func (s *MemoryStore) ListOrders(status string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if status != "" && string(o.Status) != status {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *MemoryStore) GetOrder(id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyOrder(o)
	return &out, nil
}

// GetOrderForUpdate relies on Transact's mutex for serialization.
func (s *MemoryStore) GetOrderForUpdate(id string) (*models.Order, error) {
	return s.GetOrder(id)
}

func (s *MemoryStore) CreateOrder(o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range o.Items {
		if o.Items[i].ID == 0 {
			s.nextItemID++
			o.Items[i].ID = s.nextItemID
		}
		o.Items[i].OrderID = o.ID
	}
	s.orders[o.ID] = copyOrder(*o)
	return nil
}

func (s *MemoryStore) SaveOrder(o *models.Order) error {
	return s.CreateOrder(o)
}

func (s *MemoryStore) DeleteOrder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

func (s *MemoryStore) MonthlySpending() ([]MonthlySpending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byMonth := make(map[string]*MonthlySpending)
	for _, o := range s.orders {
		if o.Status == models.StatusCancelled {
			continue
		}
		month := o.Date.Format("2006-01")
		row, ok := byMonth[month]
		if !ok {
			row = &MonthlySpending{Month: month}
			byMonth[month] = row
		}
		row.OrderCount++
		row.TotalSpent += o.Total
	}
	out := make([]MonthlySpending, 0, len(byMonth))
	for _, row := range byMonth {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

// Stock ledger

func (s *MemoryStore) RecordMovement(m *models.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMovementID++
	m.ID = s.nextMovementID
	s.movements = append(s.movements, *m)
	return nil
}

func (s *MemoryStore) ListMovements(productID string, limit int) ([]models.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.StockMovement, 0)
	for _, m := range s.movements {
		if productID != "" && m.ProductID != productID {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Import history

func (s *MemoryStore) CreateImportRecord(r *models.StockImportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imports = append(s.imports, *r)
	return nil
}

func (s *MemoryStore) ListImportRecords() ([]models.StockImportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]models.StockImportRecord(nil), s.imports...)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// Users

func (s *MemoryStore) ListUsers() ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (s *MemoryStore) GetUser(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) SaveUser(u *models.User) error {
	return s.CreateUser(u)
}

func (s *MemoryStore) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) CountUsersByRole(role models.UserRole) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, u := range s.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

// Settings

func (s *MemoryStore) GetSettings() (*models.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return nil, ErrNotFound
	}
	out := *s.settings
	return &out, nil
}

func (s *MemoryStore) SaveSettings(settings *models.AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings.ID == 0 {
		settings.ID = 1
	}
	out := *settings
	s.settings = &out
	return nil
}

// Transact

func (s *MemoryStore) Transact(fn func(Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}
