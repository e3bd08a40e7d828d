package database

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const DemoPassword = "comanda123"

// DemoData holds what SeedDemo created, so tests can reference it.
type DemoData struct {
	Restaurant models.Restaurant
	Users      []models.User
	Waiters    []models.Waiter
	Tables     []models.Table
	Categories []models.Category
	Stock      []models.StockItem
	MenuItems  []models.MenuItem
}

// SeedDemo fills an empty database with one restaurant, a login per role and
// a small menu. It does nothing when a restaurant already exists.
func SeedDemo(db *gorm.DB) (*DemoData, error) {
	var count int64
	if err := db.Model(&models.Restaurant{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		utils.InfoLogger.Info("Seed skipped: database already has data")
		return nil, nil
	}

	data := &DemoData{}
	err := db.Transaction(func(tx *gorm.DB) error {
		data.Restaurant = models.Restaurant{Name: "Comanda Demo"}
		if err := tx.Create(&data.Restaurant).Error; err != nil {
			return err
		}
		rid := data.Restaurant.ID

		hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		for _, u := range []struct {
			name, email string
			role        models.Role
		}{
			{"Admin", "admin@comanda.local", models.RoleAdmin},
			{"Garçom", "garcom@comanda.local", models.RoleWaiter},
			{"Cozinha", "cozinha@comanda.local", models.RoleKitchen},
		} {
			user := models.User{RestaurantID: rid, Name: u.name, Email: u.email, Password: string(hash), Role: u.role}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			data.Users = append(data.Users, user)
		}

		for _, name := range []string{"João", "Maria"} {
			waiter := models.Waiter{RestaurantID: rid, Name: name, IsActive: true}
			if err := tx.Create(&waiter).Error; err != nil {
				return err
			}
			data.Waiters = append(data.Waiters, waiter)
		}

		for i := 1; i <= 6; i++ {
			table := models.Table{RestaurantID: rid, Number: i, Capacity: 4, Status: models.TableAvailable}
			if err := tx.Create(&table).Error; err != nil {
				return err
			}
			data.Tables = append(data.Tables, table)
		}

		for i, name := range []string{"Lanches", "Bebidas"} {
			category := models.Category{RestaurantID: rid, Name: name, SortOrder: i + 1, IsActive: true}
			if err := tx.Create(&category).Error; err != nil {
				return err
			}
			data.Categories = append(data.Categories, category)
		}

		for _, s := range []struct {
			name, unit, qty, min, cost string
		}{
			{"Pão", "un", "50", "10", "0.80"},
			{"Carne", "kg", "10", "2", "38.00"},
			{"Queijo", "kg", "5", "1", "42.00"},
			{"Refrigerante lata", "un", "48", "12", "2.50"},
		} {
			item := models.StockItem{
				RestaurantID: rid,
				Name:         s.name,
				Unit:         s.unit,
				Quantity:     decimal.RequireFromString(s.qty),
				MinQuantity:  decimal.RequireFromString(s.min),
				Cost:         decimal.RequireFromString(s.cost),
				IsActive:     true,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			data.Stock = append(data.Stock, item)
		}

		recipes := []struct {
			name, price string
			category    int
			ingredients map[int]string
		}{
			{"X-Burger", "28.90", 0, map[int]string{0: "1", 1: "0.150", 2: "0.030"}},
			{"Refrigerante", "6.00", 1, map[int]string{3: "1"}},
		}
		for _, r := range recipes {
			item := models.MenuItem{
				RestaurantID:    rid,
				CategoryID:      data.Categories[r.category].ID,
				Name:            r.name,
				Price:           decimal.RequireFromString(r.price),
				IsAvailable:     true,
				PreparationTime: 15,
			}
			if err := tx.Omit("Ingredients").Create(&item).Error; err != nil {
				return err
			}
			for pos := 0; pos < len(data.Stock); pos++ {
				qty, ok := r.ingredients[pos]
				if !ok {
					continue
				}
				ingredient := models.MenuItemIngredient{
					MenuItemID:  item.ID,
					StockItemID: data.Stock[pos].ID,
					Quantity:    decimal.RequireFromString(qty),
					Position:    len(item.Ingredients),
				}
				if err := tx.Create(&ingredient).Error; err != nil {
					return err
				}
				item.Ingredients = append(item.Ingredients, ingredient)
			}
			data.MenuItems = append(data.MenuItems, item)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed demo data: %w", err)
	}
	utils.InfoLogger.Infof("Seeded demo restaurant %s (login admin@comanda.local / %s)", data.Restaurant.ID, DemoPassword)
	return data, nil
}
