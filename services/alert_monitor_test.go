package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-app/models"
)

func TestAlertMonitorRaisesOncePerDay(t *testing.T) {
	f := newFixture(t)
	f.stockItem(f.tenant, "Ice", "1", "4")
	f.stockItem(f.tenant, "Lemons", "40", "4")
	f.stockItem(f.other, "Limes", "0", "1")

	opened := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	f.tabs.SetClock(func() time.Time { return opened })
	tab := f.openTab(f.tenant, 1)

	monitor := NewAlertMonitor(f.store, f.events, time.Minute, 2*time.Hour)
	now := opened.Add(3 * time.Hour)
	monitor.SetClock(func() time.Time { return now })
	f.events.reset()

	assert.Equal(t, 3, monitor.CheckAll(f.ctx))
	assert.ElementsMatch(t, []string{"stock_low", "stock_low", "tab_stale"}, f.events.names())

	notifications, err := monitor.ListNotifications(f.ctx, f.tenant, 10)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	kinds := []models.NotificationKind{notifications[0].Kind, notifications[1].Kind}
	assert.ElementsMatch(t, []models.NotificationKind{models.NotificationLowStock, models.NotificationStaleTab}, kinds)
	for _, n := range notifications {
		if n.Kind == models.NotificationStaleTab {
			assert.Equal(t, tab.ID, n.Reference)
		}
	}

	// Later the same day nothing new is raised.
	now = now.Add(4 * time.Hour)
	raised, err := monitor.Check(f.ctx, f.tenant)
	require.NoError(t, err)
	assert.Zero(t, raised)

	// The next day the same conditions are reported again.
	now = now.Add(24 * time.Hour)
	raised, err = monitor.Check(f.ctx, f.tenant)
	require.NoError(t, err)
	assert.Equal(t, 2, raised)
}

func TestAlertMonitorStartStop(t *testing.T) {
	f := newFixture(t)
	f.stockItem(f.tenant, "Ice", "0", "1")

	monitor := NewAlertMonitor(f.store, f.events, 10*time.Millisecond, time.Hour)
	monitor.Start()
	require.Eventually(t, func() bool {
		n, err := monitor.ListNotifications(f.ctx, f.tenant, 0)
		return err == nil && len(n) == 1
	}, time.Second, 10*time.Millisecond)
	monitor.Stop()
}
