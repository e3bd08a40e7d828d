package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/kds"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/store"
	"github.com/yeremiapane/comanda-app/utils"
)

const movementHistory = 50

// StockItemInput is used for create and update. Quantity only applies on
// create; later changes go through AdjustStock so they are recorded.
type StockItemInput struct {
	Name        *string
	Unit        *string
	Quantity    *decimal.Decimal
	MinQuantity *decimal.Decimal
	Cost        *decimal.Decimal
	IsActive    *bool
}

type StockService struct {
	engine
	ledger StockLedger
}

func NewStockService(s store.Store, n Notifier) *StockService {
	return &StockService{engine: newEngine(s, n)}
}

func (s *StockService) ListStockItems(ctx context.Context, tenantID string, lowOnly bool) ([]models.StockItem, error) {
	var items []models.StockItem
	err := s.store.Read(ctx, tenantID, func(repo store.Repository) error {
		var err error
		items, err = repo.ListStockItems(lowOnly)
		return err
	})
	return items, err
}

// GetStockItem returns the item with its most recent movements.
func (s *StockService) GetStockItem(ctx context.Context, tenantID, id string) (*models.StockItem, error) {
	var item *models.StockItem
	err := s.store.Read(ctx, tenantID, func(repo store.Repository) error {
		var err error
		if item, err = repo.FindStockItem(id); err != nil {
			return err
		}
		item.Movements, err = repo.ListStockMovements(item.ID, movementHistory)
		return err
	})
	return item, err
}

func (s *StockService) CreateStockItem(ctx context.Context, tenantID string, in StockItemInput) (*models.StockItem, error) {
	if in.Name == nil || in.Unit == nil {
		return nil, apperrors.InvalidInput("name and unit are required")
	}
	if err := validateStockInput(in); err != nil {
		return nil, err
	}
	item := &models.StockItem{
		Quantity:    decimal.Zero,
		MinQuantity: decimal.Zero,
		Cost:        decimal.Zero,
		IsActive:    true,
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	applyStockInput(item, in)

	err := s.store.Atomic(ctx, tenantID, func(repo store.Repository) error {
		return repo.CreateStockItem(item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *StockService) UpdateStockItem(ctx context.Context, tenantID, id string, in StockItemInput) (*models.StockItem, error) {
	if in.Quantity != nil {
		return nil, apperrors.InvalidInput("quantity changes go through a stock adjustment")
	}
	if err := validateStockInput(in); err != nil {
		return nil, err
	}
	var item *models.StockItem
	err := s.atomic(ctx, tenantID, func(repo store.Repository, emit func(string, interface{})) error {
		var err error
		if item, err = repo.FindStockItem(id); err != nil {
			return err
		}
		applyStockInput(item, in)
		if err := repo.SaveStockItem(item); err != nil {
			return err
		}
		if item.IsLow() {
			emit(kds.EventStockLow, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// AdjustStock adds delta (negative to remove) and records why.
func (s *StockService) AdjustStock(ctx context.Context, tenantID, id string, delta decimal.Decimal, reason string) (*models.StockItem, error) {
	if delta.IsZero() {
		return nil, apperrors.InvalidInput("adjustment cannot be zero")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual adjustment"
	}
	var item *models.StockItem
	err := s.atomic(ctx, tenantID, func(repo store.Repository, emit func(string, interface{})) error {
		var err error
		if item, err = s.ledger.Adjust(repo, id, delta, reason); err != nil {
			return err
		}
		utils.InfoLogger.WithFields(logrus.Fields{
			"restaurant_id": tenantID,
			"stock_item":    item.Name,
			"delta":         delta.String(),
			"quantity":      item.Quantity.String(),
		}).Info("Stock adjusted")
		if item.IsLow() {
			emit(kds.EventStockLow, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteStockItem refuses while a recipe still uses the item. An item with
// recorded movements is deactivated instead of removed so its history stays;
// the deactivated item is returned. A removed item returns nil.
func (s *StockService) DeleteStockItem(ctx context.Context, tenantID, id string) (*models.StockItem, error) {
	var deactivated *models.StockItem
	err := s.store.Atomic(ctx, tenantID, func(repo store.Repository) error {
		item, err := repo.FindStockItem(id)
		if err != nil {
			return err
		}
		n, err := repo.CountRecipesUsingStockItem(item.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperrors.Conflict("%s is used by %d recipes", item.Name, n)
		}
		history, err := repo.ListStockMovements(item.ID, 1)
		if err != nil {
			return err
		}
		if len(history) == 0 {
			return repo.DeleteStockItem(item.ID)
		}
		item.IsActive = false
		if err := repo.SaveStockItem(item); err != nil {
			return err
		}
		deactivated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deactivated, nil
}

func validateStockInput(in StockItemInput) error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return apperrors.InvalidInput("name cannot be empty")
	}
	if in.Unit != nil && strings.TrimSpace(*in.Unit) == "" {
		return apperrors.InvalidInput("unit cannot be empty")
	}
	for field, v := range map[string]*decimal.Decimal{
		"quantity":     in.Quantity,
		"min_quantity": in.MinQuantity,
		"cost":         in.Cost,
	} {
		if v != nil && v.IsNegative() {
			return apperrors.InvalidInput("%s cannot be negative", field)
		}
	}
	return nil
}

func applyStockInput(item *models.StockItem, in StockItemInput) {
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Unit != nil {
		item.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.MinQuantity != nil {
		item.MinQuantity = *in.MinQuantity
	}
	if in.Cost != nil {
		item.Cost = in.Cost.Round(2)
	}
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}
}
