package services

import (
	"context"

	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/kds"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/store"
)

type TableInput struct {
	Number   *int
	Capacity *int
	Status   *models.TableStatus
}

// TableService is the admin side of the table lifecycle. OCCUPIED is only
// ever set by the tab engine.
type TableService struct {
	engine
}

func NewTableService(s store.Store, n Notifier) *TableService {
	return &TableService{engine: newEngine(s, n)}
}

func (s *TableService) ListTables(ctx context.Context, tenantID string, status models.TableStatus) ([]models.Table, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.InvalidInput("unknown status %q", status)
	}
	var tables []models.Table
	err := s.store.Read(ctx, tenantID, func(repo store.Repository) error {
		var err error
		tables, err = repo.ListTables(status)
		return err
	})
	return tables, err
}

func (s *TableService) GetTable(ctx context.Context, tenantID, id string) (*models.Table, error) {
	var table *models.Table
	err := s.store.Read(ctx, tenantID, func(repo store.Repository) error {
		var err error
		table, err = repo.FindTable(id)
		return err
	})
	return table, err
}

func (s *TableService) CreateTable(ctx context.Context, tenantID string, in TableInput) (*models.Table, error) {
	if in.Number == nil || in.Capacity == nil {
		return nil, apperrors.InvalidInput("number and capacity are required")
	}
	if err := validateTableInput(in); err != nil {
		return nil, err
	}

	table := &models.Table{Number: *in.Number, Capacity: *in.Capacity, Status: models.TableAvailable}
	if in.Status != nil {
		table.Status = *in.Status
	}
	err := s.atomic(ctx, tenantID, func(repo store.Repository, emit func(string, interface{})) error {
		if err := ensureTableNumberFree(repo, table.Number, ""); err != nil {
			return err
		}
		if err := repo.CreateTable(table); err != nil {
			return err
		}
		emit(kds.EventTableUpdated, table)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// UpdateTable edits number, capacity or status while no tab is open on the
// table.
func (s *TableService) UpdateTable(ctx context.Context, tenantID, id string, in TableInput) (*models.Table, error) {
	if err := validateTableInput(in); err != nil {
		return nil, err
	}

	var table *models.Table
	err := s.atomic(ctx, tenantID, func(repo store.Repository, emit func(string, interface{})) error {
		var err error
		if table, err = repo.FindTable(id); err != nil {
			return err
		}
		if open, err := repo.FindOpenTabByTable(table.ID); err != nil {
			return err
		} else if open != nil {
			return apperrors.Conflict("table %d has open tab %s", table.Number, open.Code)
		}

		if in.Number != nil && *in.Number != table.Number {
			if err := ensureTableNumberFree(repo, *in.Number, table.ID); err != nil {
				return err
			}
			table.Number = *in.Number
		}
		if in.Capacity != nil {
			table.Capacity = *in.Capacity
		}
		if in.Status != nil {
			table.Status = *in.Status
		}
		if err := repo.SaveTable(table); err != nil {
			return err
		}
		emit(kds.EventTableUpdated, table)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// DeleteTable removes a table that no tab has ever referenced.
func (s *TableService) DeleteTable(ctx context.Context, tenantID, id string) error {
	return s.atomic(ctx, tenantID, func(repo store.Repository, emit func(string, interface{})) error {
		table, err := repo.FindTable(id)
		if err != nil {
			return err
		}
		n, err := repo.CountTabsForTable(table.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperrors.Conflict("table %d has tabs and cannot be deleted", table.Number)
		}
		return repo.DeleteTable(table.ID)
	})
}

func validateTableInput(in TableInput) error {
	if in.Number != nil && *in.Number < 1 {
		return apperrors.InvalidInput("table number must be positive")
	}
	if in.Capacity != nil && *in.Capacity < 1 {
		return apperrors.InvalidInput("capacity must be positive")
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return apperrors.InvalidInput("unknown status %q", *in.Status)
		}
		if *in.Status == models.TableOccupied {
			return apperrors.InvalidInput("tables become occupied by opening a tab")
		}
	}
	return nil
}

func ensureTableNumberFree(repo store.Repository, number int, selfID string) error {
	existing, err := repo.FindTableByNumber(number)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return apperrors.Conflict("table number %d is already in use", number)
	}
	return nil
}

// setTableStatus is the tab engine's hook into the table lifecycle.
func setTableStatus(repo store.Repository, tableID string, status models.TableStatus) (*models.Table, error) {
	table, err := repo.FindTable(tableID)
	if err != nil {
		return nil, err
	}
	table.Status = status
	if err := repo.SaveTable(table); err != nil {
		return nil, err
	}
	return table, nil
}
