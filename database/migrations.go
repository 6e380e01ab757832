package database

import (
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/models"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for tables, reservations and users.
// The composite (table_number, reservation_date) index backs both the
// overlap scan and the conditional insert.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Table{},
		&models.Reservation{},
		&models.User{},
	); err != nil {
		return err
	}

	for _, idx := range []struct {
		model interface{}
		name  string
	}{
		{&models.Table{}, "idx_tables_number"},
		{&models.Reservation{}, "idx_reservations_table_date"},
	} {
		if !db.Migrator().HasIndex(idx.model, idx.name) {
			if err := db.Migrator().CreateIndex(idx.model, idx.name); err != nil {
				return err
			}
			utils.InfoLogger.WithField("index", idx.name).Info("Index created")
		}
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
