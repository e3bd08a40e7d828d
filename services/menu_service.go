package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/store"
)

type IngredientInput struct {
	StockItemID string
	Quantity    decimal.Decimal
}

// MenuItemInput is used for create and update. A non-nil Ingredients slice
// replaces the whole recipe.
type MenuItemInput struct {
	CategoryID      *string
	Name            *string
	Description     *string
	Price           *decimal.Decimal
	Image           *string
	IsAvailable     *bool
	PreparationTime *int
	Ingredients     *[]IngredientInput
}

type MenuService struct {
	engine
}

func NewMenuService(s store.Store) *MenuService {
	return &MenuService{engine: newEngine(s, nil)}
}

func (s *MenuService) ListMenuItems(ctx context.Context, tenantID string, filter store.MenuItemFilter) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.store.Read(ctx, tenantID, func(repo store.Repository) error {
		var err error
		items, err = repo.ListMenuItems(filter)
		return err
	})
	return items, err
}

func (s *MenuService) GetMenuItem(ctx context.Context, tenantID, id string) (*models.MenuItem, error) {
	var item *models.MenuItem
	err := s.store.Read(ctx, tenantID, func(repo store.Repository) error {
		var err error
		item, err = repo.FindMenuItem(id)
		return err
	})
	return item, err
}

func (s *MenuService) CreateMenuItem(ctx context.Context, tenantID string, in MenuItemInput) (*models.MenuItem, error) {
	if in.CategoryID == nil || in.Name == nil || in.Price == nil {
		return nil, apperrors.InvalidInput("category, name and price are required")
	}
	if err := validateMenuItemInput(in); err != nil {
		return nil, err
	}

	var created *models.MenuItem
	err := s.store.Atomic(ctx, tenantID, func(repo store.Repository) error {
		item := &models.MenuItem{IsAvailable: true}
		if err := applyMenuItemInput(repo, item, in); err != nil {
			return err
		}
		if err := repo.CreateMenuItem(item); err != nil {
			return err
		}
		var err error
		created, err = repo.FindMenuItem(item.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *MenuService) UpdateMenuItem(ctx context.Context, tenantID, id string, in MenuItemInput) (*models.MenuItem, error) {
	if err := validateMenuItemInput(in); err != nil {
		return nil, err
	}

	var updated *models.MenuItem
	err := s.store.Atomic(ctx, tenantID, func(repo store.Repository) error {
		item, err := repo.FindMenuItem(id)
		if err != nil {
			return err
		}
		if err := applyMenuItemInput(repo, item, in); err != nil {
			return err
		}
		if err := repo.SaveMenuItem(item); err != nil {
			return err
		}
		if in.Ingredients != nil {
			if err := repo.ReplaceIngredients(item.ID, item.Ingredients); err != nil {
				return err
			}
		}
		updated, err = repo.FindMenuItem(item.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteMenuItem refuses once the item has been ordered; mark it
// unavailable instead.
func (s *MenuService) DeleteMenuItem(ctx context.Context, tenantID, id string) error {
	return s.store.Atomic(ctx, tenantID, func(repo store.Repository) error {
		item, err := repo.FindMenuItem(id)
		if err != nil {
			return err
		}
		n, err := repo.CountOrderItemsForMenuItem(item.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperrors.Conflict("%s has been ordered and cannot be deleted", item.Name)
		}
		return repo.DeleteMenuItem(item.ID)
	})
}

func validateMenuItemInput(in MenuItemInput) error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return apperrors.InvalidInput("name cannot be empty")
	}
	if in.Price != nil && !in.Price.IsPositive() {
		return apperrors.InvalidInput("price must be greater than zero")
	}
	if in.PreparationTime != nil && *in.PreparationTime < 0 {
		return apperrors.InvalidInput("preparation time cannot be negative")
	}
	if in.Ingredients != nil {
		seen := make(map[string]bool)
		for _, ing := range *in.Ingredients {
			if !ing.Quantity.IsPositive() {
				return apperrors.InvalidInput("ingredient quantity must be greater than zero")
			}
			if seen[ing.StockItemID] {
				return apperrors.InvalidInput("stock item %s appears twice in the recipe", ing.StockItemID)
			}
			seen[ing.StockItemID] = true
		}
	}
	return nil
}

// applyMenuItemInput copies the input onto item, checking that the category
// and every recipe stock item exist in the tenant and are active.
func applyMenuItemInput(repo store.Repository, item *models.MenuItem, in MenuItemInput) error {
	if in.CategoryID != nil {
		category, err := repo.FindCategory(*in.CategoryID)
		if err != nil {
			return err
		}
		if !category.IsActive {
			return apperrors.InvalidReference("category %s is inactive", category.Name)
		}
		item.CategoryID = category.ID
		item.Category = category
	}
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		item.Description = in.Description
	}
	if in.Price != nil {
		item.Price = in.Price.Round(2)
	}
	if in.Image != nil {
		item.Image = in.Image
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}
	if in.PreparationTime != nil {
		item.PreparationTime = *in.PreparationTime
	}
	if in.Ingredients == nil {
		return nil
	}

	ids := make([]string, 0, len(*in.Ingredients))
	for _, ing := range *in.Ingredients {
		ids = append(ids, ing.StockItemID)
	}
	stock, err := repo.FindStockItems(ids)
	if err != nil {
		return err
	}
	byID := make(map[string]models.StockItem, len(stock))
	for _, s := range stock {
		byID[s.ID] = s
	}
	item.Ingredients = make([]models.MenuItemIngredient, 0, len(*in.Ingredients))
	for i, ing := range *in.Ingredients {
		s, ok := byID[ing.StockItemID]
		if !ok {
			return apperrors.InvalidReference("stock item %s does not exist", ing.StockItemID)
		}
		if !s.IsActive {
			return apperrors.InvalidReference("stock item %s is inactive", s.Name)
		}
		item.Ingredients = append(item.Ingredients, models.MenuItemIngredient{
			StockItemID: s.ID,
			Quantity:    ing.Quantity,
			Position:    i,
		})
	}
	return nil
}
