package models

import "time"

// Product: a catalog product with its live stock level. CurrentStock is only
// mutated through ledger-backed operations (receipt, sale, adjustment, import).
type Product struct {
	ID           string  `gorm:"primaryKey;size:50" json:"id"`
	Name         string  `gorm:"size:200;not null;unique" json:"name"`
	Family       string  `gorm:"size:100" json:"family"`
	Unit         string  `gorm:"size:20;not null" json:"unit"` // kg, pièce, litre...
	CurrentStock float64 `gorm:"not null;default:0" json:"currentStock"`
	MinStock     float64 `gorm:"not null;default:0" json:"minStock"`
	AverageCost  float64 `gorm:"not null;default:0" json:"averageCost"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
