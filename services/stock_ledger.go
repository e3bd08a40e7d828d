package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/store"
	"github.com/yeremiapane/comanda-app/utils"
)

// Consumption is one sold line: Quantity units of MenuItem, whose
// Ingredients must be loaded.
type Consumption struct {
	MenuItem  *models.MenuItem
	Quantity  int
	Reference string
}

// StockLedger moves stock quantities by recipe. It never lets a quantity go
// below zero and leaves every row untouched when any ingredient is short.
type StockLedger struct{}

func stockIDs(lines []Consumption) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, line := range lines {
		for _, ing := range line.MenuItem.Ingredients {
			if !seen[ing.StockItemID] {
				seen[ing.StockItemID] = true
				ids = append(ids, ing.StockItemID)
			}
		}
	}
	return ids
}

// check walks the lines in order, accumulating the requirement per stock
// item, and names the menu item of the first line that overdraws one.
func (l *StockLedger) check(repo store.Repository, lines []Consumption) (map[string]*models.StockItem, error) {
	stock, err := repo.LockStockItems(stockIDs(lines))
	if err != nil {
		return nil, err
	}
	required := make(map[string]decimal.Decimal)
	for _, line := range lines {
		multiplier := decimal.NewFromInt(int64(line.Quantity))
		for _, ing := range line.MenuItem.Ingredients {
			item, ok := stock[ing.StockItemID]
			if !ok {
				return nil, apperrors.InsufficientStock(line.MenuItem.Name)
			}
			need := required[ing.StockItemID].Add(ing.Quantity.Mul(multiplier))
			if need.GreaterThan(item.Quantity) {
				return nil, apperrors.InsufficientStock(line.MenuItem.Name)
			}
			required[ing.StockItemID] = need
		}
	}
	return stock, nil
}

// CheckAvailability reports whether the whole batch could be served from
// current stock. Nothing is written.
func (l *StockLedger) CheckAvailability(repo store.Repository, lines []Consumption) error {
	_, err := l.check(repo, lines)
	return err
}

// Deduct consumes the recipes of every line and records one SALE movement
// per line and ingredient. It returns the stock items that are now below
// their minimum.
func (l *StockLedger) Deduct(repo store.Repository, lines []Consumption) ([]models.StockItem, error) {
	stock, err := l.check(repo, lines)
	if err != nil {
		return nil, err
	}
	return l.apply(repo, stock, lines, models.MovementSale, -1)
}

// Restore gives the recipes of every line back to stock.
func (l *StockLedger) Restore(repo store.Repository, lines []Consumption) error {
	stock, err := repo.LockStockItems(stockIDs(lines))
	if err != nil {
		return err
	}
	_, err = l.apply(repo, stock, lines, models.MovementRestore, 1)
	return err
}

func (l *StockLedger) apply(repo store.Repository, stock map[string]*models.StockItem, lines []Consumption, kind models.MovementKind, sign int64) ([]models.StockItem, error) {
	var touched []string
	seen := make(map[string]bool)
	for _, line := range lines {
		multiplier := decimal.NewFromInt(int64(line.Quantity) * sign)
		for _, ing := range line.MenuItem.Ingredients {
			item, ok := stock[ing.StockItemID]
			if !ok {
				return nil, apperrors.Internal(fmt.Errorf("stock item %s vanished", ing.StockItemID))
			}
			delta := ing.Quantity.Mul(multiplier)
			before := item.Quantity
			item.Quantity = before.Add(delta)
			if err := repo.AddStockMovement(&models.StockMovement{
				StockItemID: item.ID,
				Kind:        kind,
				Delta:       delta,
				Before:      before,
				After:       item.Quantity,
				Reference:   line.Reference,
			}); err != nil {
				return nil, err
			}
			if !seen[item.ID] {
				seen[item.ID] = true
				touched = append(touched, item.ID)
			}
		}
	}

	var low []models.StockItem
	for _, id := range touched {
		item := stock[id]
		if err := repo.SaveStockItem(item); err != nil {
			return nil, err
		}
		if item.IsLow() {
			low = append(low, *item)
		}
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": repo.TenantID(),
		"kind":          kind,
		"lines":         len(lines),
		"stock_items":   len(touched),
	}).Info("Stock ledger updated")
	return low, nil
}

// Adjust applies a manual correction. A result below zero fails with
// InsufficientStock naming the stock item.
func (l *StockLedger) Adjust(repo store.Repository, stockItemID string, delta decimal.Decimal, reason string) (*models.StockItem, error) {
	stock, err := repo.LockStockItems([]string{stockItemID})
	if err != nil {
		return nil, err
	}
	item, ok := stock[stockItemID]
	if !ok {
		return nil, apperrors.NotFound("stock item not found")
	}
	before := item.Quantity
	after := before.Add(delta)
	if after.IsNegative() {
		return nil, apperrors.InsufficientStock(item.Name)
	}
	item.Quantity = after
	if err := repo.SaveStockItem(item); err != nil {
		return nil, err
	}
	if err := repo.AddStockMovement(&models.StockMovement{
		StockItemID: item.ID,
		Kind:        models.MovementAdjustment,
		Delta:       delta,
		Before:      before,
		After:       after,
		Reference:   reason,
	}); err != nil {
		return nil, err
	}
	return item, nil
}
