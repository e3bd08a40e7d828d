package database

import (
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Restaurant{},
		&models.User{},
		&models.Waiter{},
		&models.Table{},
		&models.Category{},
		&models.StockItem{},
		&models.StockMovement{},
		&models.MenuItem{},
		&models.MenuItemIngredient{},
		&models.Tab{},
		&models.Order{},
		&models.OrderItem{},
		&models.Notification{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			utils.ErrorLogger.Errorf("Error migrating %T: %v", m, err)
			return err
		}
	}
	utils.InfoLogger.Infof("Database schema migrated (%d tables)", len(Models()))
	return nil
}
