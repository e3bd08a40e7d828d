package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/models"
)

func TestCreateTable(t *testing.T) {
	f := newFixture(t)

	table, err := f.tables.CreateTable(f.ctx, f.tenant, TableInput{Number: ptr(4), Capacity: ptr(6)})
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, table.Status)
	assert.Equal(t, table.ID, f.reloadTable(table.ID).ID)

	_, err = f.tables.CreateTable(f.ctx, f.tenant, TableInput{Number: ptr(4), Capacity: ptr(2)})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Numbers are unique per restaurant only.
	_, err = f.tables.CreateTable(f.ctx, f.other, TableInput{Number: ptr(4), Capacity: ptr(2)})
	assert.NoError(t, err)

	tests := []struct {
		name string
		in   TableInput
	}{
		{"missing number", TableInput{Capacity: ptr(2)}},
		{"zero capacity", TableInput{Number: ptr(9), Capacity: ptr(0)}},
		{"negative number", TableInput{Number: ptr(-1), Capacity: ptr(2)}},
		{"occupied", TableInput{Number: ptr(9), Capacity: ptr(2), Status: ptr(models.TableOccupied)}},
		{"unknown status", TableInput{Number: ptr(9), Capacity: ptr(2), Status: ptr(models.TableStatus("BROKEN"))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tables.CreateTable(f.ctx, f.tenant, tt.in)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestUpdateTable(t *testing.T) {
	f := newFixture(t)
	table := f.table(f.tenant, 1)
	f.table(f.tenant, 2)

	updated, err := f.tables.UpdateTable(f.ctx, f.tenant, table.ID, TableInput{Capacity: ptr(8), Status: ptr(models.TableReserved)})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Capacity)
	assert.Equal(t, models.TableReserved, updated.Status)

	_, err = f.tables.UpdateTable(f.ctx, f.tenant, table.ID, TableInput{Number: ptr(2)})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Keeping its own number is not a clash.
	_, err = f.tables.UpdateTable(f.ctx, f.tenant, table.ID, TableInput{Number: ptr(1), Status: ptr(models.TableAvailable)})
	assert.NoError(t, err)

	_, err = f.tables.UpdateTable(f.ctx, f.other, table.ID, TableInput{Capacity: ptr(2)})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTableFollowsItsTab(t *testing.T) {
	f := newFixture(t)
	tab := f.openTab(f.tenant, 3)

	_, err := f.tables.UpdateTable(f.ctx, f.tenant, tab.TableID, TableInput{Status: ptr(models.TableAvailable)})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	err = f.tables.DeleteTable(f.ctx, f.tenant, tab.TableID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	occupied, err := f.tables.ListTables(f.ctx, f.tenant, models.TableOccupied)
	require.NoError(t, err)
	require.Len(t, occupied, 1)
	assert.Equal(t, tab.TableID, occupied[0].ID)

	_, err = f.tabs.CloseTab(f.ctx, f.tenant, tab.ID, CloseTabInput{PaymentMethod: models.PaymentCash})
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, f.reloadTable(tab.TableID).Status)

	// A table with history stays for the reports.
	err = f.tables.DeleteTable(f.ctx, f.tenant, tab.TableID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDeleteTable(t *testing.T) {
	f := newFixture(t)
	table := f.table(f.tenant, 1)

	require.NoError(t, f.tables.DeleteTable(f.ctx, f.tenant, table.ID))
	_, err := f.tables.GetTable(f.ctx, f.tenant, table.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.tables.ListTables(f.ctx, f.tenant, "FLOATING")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func (f *fixture) reloadTable(id string) *models.Table {
	f.t.Helper()
	table, err := f.tables.GetTable(f.ctx, f.tenant, id)
	require.NoError(f.t, err)
	return table
}
