package services

import (
	"context"
	"strings"

	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/store"
)

type WaiterInput struct {
	Name     *string
	Phone    *string
	TaxID    *string
	IsActive *bool
}

// WaiterService manages waiters. Waiters are deactivated, never deleted.
type WaiterService struct {
	engine
}

func NewWaiterService(s store.Store) *WaiterService {
	return &WaiterService{engine: newEngine(s, nil)}
}

func (s *WaiterService) ListWaiters(ctx context.Context, tenantID string) ([]models.Waiter, error) {
	var waiters []models.Waiter
	err := s.store.Read(ctx, tenantID, func(repo store.Repository) error {
		var err error
		waiters, err = repo.ListWaiters()
		return err
	})
	return waiters, err
}

func (s *WaiterService) GetWaiter(ctx context.Context, tenantID, id string) (*models.Waiter, error) {
	var waiter *models.Waiter
	err := s.store.Read(ctx, tenantID, func(repo store.Repository) error {
		var err error
		waiter, err = repo.FindWaiter(id)
		return err
	})
	return waiter, err
}

func (s *WaiterService) CreateWaiter(ctx context.Context, tenantID string, in WaiterInput) (*models.Waiter, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	waiter := &models.Waiter{IsActive: true}
	applyWaiterInput(waiter, in)
	err := s.store.Atomic(ctx, tenantID, func(repo store.Repository) error {
		return repo.CreateWaiter(waiter)
	})
	if err != nil {
		return nil, err
	}
	return waiter, nil
}

func (s *WaiterService) UpdateWaiter(ctx context.Context, tenantID, id string, in WaiterInput) (*models.Waiter, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.InvalidInput("name cannot be empty")
	}
	var waiter *models.Waiter
	err := s.store.Atomic(ctx, tenantID, func(repo store.Repository) error {
		var err error
		if waiter, err = repo.FindWaiter(id); err != nil {
			return err
		}
		applyWaiterInput(waiter, in)
		return repo.SaveWaiter(waiter)
	})
	if err != nil {
		return nil, err
	}
	return waiter, nil
}

// DeactivateWaiter is the delete of the waiter resource. Open tabs keep
// their waiter; only new assignments are refused.
func (s *WaiterService) DeactivateWaiter(ctx context.Context, tenantID, id string) (*models.Waiter, error) {
	inactive := false
	return s.UpdateWaiter(ctx, tenantID, id, WaiterInput{IsActive: &inactive})
}

func applyWaiterInput(w *models.Waiter, in WaiterInput) {
	if in.Name != nil {
		w.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		w.Phone = in.Phone
	}
	if in.TaxID != nil {
		w.TaxID = in.TaxID
	}
	if in.IsActive != nil {
		w.IsActive = *in.IsActive
	}
}
