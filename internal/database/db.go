package database

import (
	"log"

	"econome-backend/internal/config"
	"econome-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}

	err = DB.AutoMigrate(
		&models.Product{},
		&models.Supplier{},
		&models.SupplierProduct{},
		&models.Order{},
		&models.OrderItem{},
		&models.StockMovement{},
		&models.StockImportRecord{},
		&models.User{},
		&models.AppSettings{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	log.Println("Database connection established. Migration complete.")
}
