package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-app/kds"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/store"
	"github.com/yeremiapane/comanda-app/utils"
)

// AlertMonitor periodically turns low stock and tabs left open too long
// into notifications. Each reference is raised at most once a day.
type AlertMonitor struct {
	engine
	Interval   time.Duration
	StaleAfter time.Duration
	stopChan   chan struct{}
	done       chan struct{}
}

func NewAlertMonitor(s store.Store, n Notifier, interval, staleAfter time.Duration) *AlertMonitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 2 * time.Hour
	}
	return &AlertMonitor{
		engine:     newEngine(s, n),
		Interval:   interval,
		StaleAfter: staleAfter,
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (m *AlertMonitor) Start() {
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.CheckAll(context.Background())
			case <-m.stopChan:
				return
			}
		}
	}()
}

// Stop ends the loop and waits for a running check to finish.
func (m *AlertMonitor) Stop() {
	close(m.stopChan)
	<-m.done
}

// CheckAll runs one pass over every restaurant and returns how many
// notifications it raised.
func (m *AlertMonitor) CheckAll(ctx context.Context) int {
	tenants, err := m.store.Tenants(ctx)
	if err != nil {
		utils.ErrorLogger.Errorf("Error listing restaurants: %v", err)
		return 0
	}
	raised := 0
	for _, tenantID := range tenants {
		n, err := m.Check(ctx, tenantID)
		if err != nil {
			utils.ErrorLogger.WithField("restaurant_id", tenantID).Errorf("Error checking alerts: %v", err)
			continue
		}
		raised += n
	}
	if raised > 0 {
		utils.InfoLogger.Infof("Raised %d alerts", raised)
	}
	return raised
}

func (m *AlertMonitor) Check(ctx context.Context, tenantID string) (int, error) {
	now := m.now()
	dayStart := startOfDay(now)
	staleBefore := now.Add(-m.StaleAfter)
	raised := 0

	err := m.atomic(ctx, tenantID, func(repo store.Repository, emit func(string, interface{})) error {
		low, err := repo.ListStockItems(true)
		if err != nil {
			return err
		}
		for _, item := range low {
			if !item.IsActive {
				continue
			}
			n := &models.Notification{
				Kind:      models.NotificationLowStock,
				Title:     "Estoque baixo",
				Message:   fmt.Sprintf("%s: %s %s (mínimo %s)", item.Name, item.Quantity.String(), item.Unit, item.MinQuantity.String()),
				Reference: item.ID,
			}
			ok, err := raise(repo, n, dayStart, now)
			if err != nil {
				return err
			}
			if ok {
				raised++
				emit(kds.EventStockLow, item)
			}
		}

		stale, err := repo.ListTabs(store.TabFilter{Status: models.TabOpen, OpenedBefore: &staleBefore})
		if err != nil {
			return err
		}
		for _, tab := range stale {
			table := 0
			if tab.Table != nil {
				table = tab.Table.Number
			}
			n := &models.Notification{
				Kind:      models.NotificationStaleTab,
				Title:     "Comanda aberta há muito tempo",
				Message:   fmt.Sprintf("Comanda %s na mesa %d aberta desde %s", tab.Code, table, tab.OpenedAt.Format("15:04")),
				Reference: tab.ID,
			}
			ok, err := raise(repo, n, dayStart, now)
			if err != nil {
				return err
			}
			if ok {
				raised++
				emit(kds.EventTabStale, StaleTab{TabID: tab.ID, Code: tab.Code, TableNumber: table, OpenedAt: tab.OpenedAt})
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if raised > 0 {
		utils.InfoLogger.WithFields(logrus.Fields{
			"restaurant_id": tenantID,
			"alerts":        raised,
		}).Info("Alerts raised")
	}
	return raised, nil
}

// ListNotifications returns the latest alerts of a restaurant.
func (m *AlertMonitor) ListNotifications(ctx context.Context, tenantID string, limit int) ([]models.Notification, error) {
	var out []models.Notification
	err := m.store.Read(ctx, tenantID, func(repo store.Repository) error {
		var err error
		out, err = repo.ListNotifications(limit)
		return err
	})
	return out, err
}

func raise(repo store.Repository, n *models.Notification, since, now time.Time) (bool, error) {
	exists, err := repo.NotificationExists(n.Kind, n.Reference, since)
	if err != nil || exists {
		return false, err
	}
	n.CreatedAt = now
	return true, repo.CreateNotification(n)
}
