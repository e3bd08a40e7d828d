package services

import (
	"context"
	"strings"

	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/store"
)

type CategoryInput struct {
	Name        *string
	Description *string
	SortOrder   *int
	IsActive    *bool
}

type CategoryService struct {
	engine
}

func NewCategoryService(s store.Store) *CategoryService {
	return &CategoryService{engine: newEngine(s, nil)}
}

func (s *CategoryService) ListCategories(ctx context.Context, tenantID string) ([]models.Category, error) {
	var categories []models.Category
	err := s.store.Read(ctx, tenantID, func(repo store.Repository) error {
		var err error
		categories, err = repo.ListCategories()
		return err
	})
	return categories, err
}

func (s *CategoryService) GetCategory(ctx context.Context, tenantID, id string) (*models.Category, error) {
	var category *models.Category
	err := s.store.Read(ctx, tenantID, func(repo store.Repository) error {
		var err error
		category, err = repo.FindCategory(id)
		return err
	})
	return category, err
}

func (s *CategoryService) CreateCategory(ctx context.Context, tenantID string, in CategoryInput) (*models.Category, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	category := &models.Category{IsActive: true}
	applyCategoryInput(category, in)

	err := s.store.Atomic(ctx, tenantID, func(repo store.Repository) error {
		return repo.CreateCategory(category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, tenantID, id string, in CategoryInput) (*models.Category, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.InvalidInput("name cannot be empty")
	}
	var category *models.Category
	err := s.store.Atomic(ctx, tenantID, func(repo store.Repository) error {
		var err error
		if category, err = repo.FindCategory(id); err != nil {
			return err
		}
		applyCategoryInput(category, in)
		return repo.SaveCategory(category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory refuses while any menu item still belongs to the category.
func (s *CategoryService) DeleteCategory(ctx context.Context, tenantID, id string) error {
	return s.store.Atomic(ctx, tenantID, func(repo store.Repository) error {
		category, err := repo.FindCategory(id)
		if err != nil {
			return err
		}
		n, err := repo.CountMenuItemsInCategory(category.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperrors.Conflict("category %s still has %d menu items", category.Name, n)
		}
		return repo.DeleteCategory(category.ID)
	})
}

func applyCategoryInput(c *models.Category, in CategoryInput) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		c.Description = in.Description
	}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
}
