package models

import "time"

type Supplier struct {
	ID           string  `gorm:"primaryKey;size:50" json:"id"`
	Name         string  `gorm:"size:200;not null" json:"name"`
	DeliveryDays string  `gorm:"size:100" json:"deliveryDays"` // e.g. "Lundi, Jeudi"
	MinOrder     float64 `gorm:"not null;default:0" json:"minOrder"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`

	Products []SupplierProduct `gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE" json:"products"`
}

// SupplierProduct: per-supplier price/SKU mapping for one catalog product.
// At most one mapping per product per supplier.
type SupplierProduct struct {
	ID                uint   `gorm:"primaryKey" json:"-"`
	SupplierID        string `gorm:"size:50;not null;uniqueIndex:idx_supplier_product" json:"-"`
	InternalProductID string `gorm:"size:50;not null;uniqueIndex:idx_supplier_product" json:"internalProductId"`
	SupplierSku       string `gorm:"size:100" json:"supplierSku"`
	Price             float64 `gorm:"not null" json:"price"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}
