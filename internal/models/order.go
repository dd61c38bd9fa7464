package models

import "time"

// OrderStatus values are stored and served exactly as the frontend knows them.
type OrderStatus string

const (
	StatusDraft             OrderStatus = "Brouillon"
	StatusSent              OrderStatus = "Envoyée"
	StatusConfirmed         OrderStatus = "Confirmée"
	StatusPartiallyReceived OrderStatus = "Reçue partiellement"
	StatusFullyReceived     OrderStatus = "Reçue totalement"
	StatusCancelled         OrderStatus = "Annulée"
)

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusFullyReceived || s == StatusCancelled
}

// Order: a purchase request sent to one supplier. SupplierName and the item
// snapshots are denormalized on purpose: they capture what was ordered at the
// time, independent of later catalog edits. Total is fixed at creation and is
// not recomputed after receipt.
type Order struct {
	ID           string      `gorm:"primaryKey;size:50" json:"id"`
	SupplierID   string      `gorm:"size:50;index;not null" json:"supplierId"`
	SupplierName string      `gorm:"size:200;not null" json:"supplierName"`
	Date         time.Time   `gorm:"index;not null" json:"date"`
	Status       OrderStatus `gorm:"size:30;not null" json:"status"`
	Total        float64     `gorm:"not null" json:"total"`
	CreatedAt    time.Time   `json:"-"`
	UpdatedAt    time.Time   `json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

type OrderItem struct {
	ID               uint    `gorm:"primaryKey" json:"-"`
	OrderID          string  `gorm:"size:50;index;not null" json:"-"`
	ProductID        string  `gorm:"size:50;index;not null" json:"productId"`
	ProductName      string  `gorm:"size:200;not null" json:"productName"`
	Quantity         float64 `gorm:"not null" json:"quantity"`
	ReceivedQuantity float64 `gorm:"not null;default:0" json:"receivedQuantity"`
	Unit             string  `gorm:"size:20" json:"unit"`
	PricePerUnit     float64 `gorm:"not null" json:"pricePerUnit"` // snapshot at order time
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}
