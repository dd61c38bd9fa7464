package models

import "time"

// StockImportRecord: one entry of the inventory-import history, appended per
// processed stock-count file.
type StockImportRecord struct {
	ID              string    `gorm:"primaryKey;size:50" json:"id"`
	Date            time.Time `gorm:"index;not null" json:"date"`
	FileName        string    `gorm:"size:255;not null" json:"fileName"`
	ProductsUpdated int       `gorm:"not null" json:"productsUpdated"`
	CreatedAt       time.Time `json:"-"`
}
