package models

import "time"

type MovementType string

const (
	MovementReceiveOrder MovementType = "RECEIVE_ORDER"
	MovementSale         MovementType = "SALE"
	MovementAdjustment   MovementType = "ADJUSTMENT"
)

// StockMovement: append-only ledger entry for every stock quantity change.
// Quantity is the signed delta; PreviousStock + Quantity == NewStock on every
// row. Entries are never updated or deleted.
type StockMovement struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	ProductID     string       `gorm:"size:50;index;not null" json:"productId"`
	MovementType  MovementType `gorm:"size:20;not null" json:"movementType"`
	Quantity      float64      `gorm:"not null" json:"quantity"`
	PreviousStock float64      `gorm:"not null" json:"previousStock"`
	NewStock      float64      `gorm:"not null" json:"newStock"`
	ReferenceID   string       `gorm:"size:50;index" json:"referenceId,omitempty"` // e.g. order id
	Notes         string       `gorm:"size:255" json:"notes,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}
