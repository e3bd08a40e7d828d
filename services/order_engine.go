package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/kds"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/store"
	"github.com/yeremiapane/comanda-app/utils"
)

type OrderLine struct {
	MenuItemID string
	Quantity   int
	Notes      *string
}

type CreateOrderInput struct {
	TabID string
	Items []OrderLine
	Notes *string
}

// OrderEngine creates orders against open tabs and moves their items through
// the kitchen pipeline.
type OrderEngine struct {
	engine
	ledger StockLedger
}

func NewOrderEngine(s store.Store, n Notifier) *OrderEngine {
	return &OrderEngine{engine: newEngine(s, n)}
}

// CreateOrder prices every line at the current menu price and checks that
// stock could serve the whole order. Stock is only consumed on delivery.
func (e *OrderEngine) CreateOrder(ctx context.Context, tenantID string, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, apperrors.InvalidInput("an order needs at least one item")
	}
	for _, line := range in.Items {
		if line.Quantity < 1 {
			return nil, apperrors.InvalidInput("quantity must be at least 1")
		}
	}

	var created *models.Order
	err := e.atomic(ctx, tenantID, func(repo store.Repository, emit func(string, interface{})) error {
		tab, err := repo.LockTab(in.TabID)
		if err != nil {
			return err
		}
		if tab.Status != models.TabOpen {
			return apperrors.Conflict("tab %s is %s", tab.Code, tab.Status)
		}

		menu, err := menuItemsByID(repo, lineMenuIDs(in.Items))
		if err != nil {
			return err
		}

		lines := make([]Consumption, 0, len(in.Items))
		order := &models.Order{
			TabID:  tab.ID,
			Status: models.OrderPending,
			Notes:  in.Notes,
		}
		for i, line := range in.Items {
			mi, ok := menu[line.MenuItemID]
			if !ok {
				return apperrors.InvalidReference("menu item %s does not exist", line.MenuItemID)
			}
			if !mi.IsAvailable {
				return apperrors.InvalidReference("%s is not available", mi.Name)
			}
			lines = append(lines, Consumption{MenuItem: mi, Quantity: line.Quantity})
			order.Items = append(order.Items, models.OrderItem{
				MenuItemID: mi.ID,
				Quantity:   line.Quantity,
				UnitPrice:  mi.Price,
				TotalPrice: mi.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
				Status:     models.OrderPending,
				Notes:      line.Notes,
				Position:   i,
			})
		}
		if err := e.ledger.CheckAvailability(repo, lines); err != nil {
			return err
		}

		order.Recompute()
		if err := repo.CreateOrder(order); err != nil {
			return err
		}
		if err := recomputeTab(repo, tab.ID); err != nil {
			return err
		}

		created, err = repo.FindOrder(order.ID)
		if err != nil {
			return err
		}
		utils.InfoLogger.WithFields(logrus.Fields{
			"restaurant_id": tenantID,
			"tab":           tab.Code,
			"order_id":      created.ID,
			"items":         len(created.Items),
			"total":         created.TotalAmount.StringFixed(2),
		}).Info("Order created")
		emit(kds.EventOrderCreated, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SetItemStatus moves one item. Entering DELIVERED consumes stock for that
// line first; asking for the status an item already has changes nothing.
func (e *OrderEngine) SetItemStatus(ctx context.Context, tenantID, orderID, itemID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperrors.InvalidInput("unknown status %q", status)
	}

	var updated *models.Order
	err := e.atomic(ctx, tenantID, func(repo store.Repository, emit func(string, interface{})) error {
		order, err := repo.FindOrder(orderID)
		if err != nil {
			return err
		}
		var item *models.OrderItem
		for i := range order.Items {
			if order.Items[i].ID == itemID {
				item = &order.Items[i]
				break
			}
		}
		if item == nil {
			return apperrors.NotFound("order item not found")
		}
		if item.Status == status {
			updated = order
			return nil
		}
		if item.Status.IsTerminal() {
			return apperrors.Conflict("item is already %s", item.Status)
		}

		if status == models.OrderDelivered {
			low, err := e.deliver(repo, []*models.OrderItem{item})
			if err != nil {
				return err
			}
			for _, s := range low {
				emit(kds.EventStockLow, s)
			}
		}

		from := item.Status
		item.Status = status
		if err := repo.SaveOrderItem(item); err != nil {
			return err
		}
		if updated, err = saveOrder(repo, order); err != nil {
			return err
		}
		utils.InfoLogger.WithFields(logrus.Fields{
			"restaurant_id": tenantID,
			"order_id":      order.ID,
			"item_id":       item.ID,
			"from":          from,
			"to":            status,
		}).Info("Order item status changed")
		emit(kds.EventOrderUpdated, updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetOrderStatus moves every item of an order at once. Delivering consumes
// the stock of all pending lines together, or none of it.
func (e *OrderEngine) SetOrderStatus(ctx context.Context, tenantID, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperrors.InvalidInput("unknown status %q", status)
	}

	var updated *models.Order
	err := e.atomic(ctx, tenantID, func(repo store.Repository, emit func(string, interface{})) error {
		order, err := repo.FindOrder(orderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			if order.Status == status {
				updated = order
				return nil
			}
			return apperrors.Conflict("order is already %s", order.Status)
		}

		if status == models.OrderCancelled {
			if err := cancelItems(order); err != nil {
				return err
			}
		} else {
			var targets []*models.OrderItem
			for i := range order.Items {
				if !order.Items[i].Status.IsTerminal() && order.Items[i].Status != status {
					targets = append(targets, &order.Items[i])
				}
			}
			if status == models.OrderDelivered {
				low, err := e.deliver(repo, targets)
				if err != nil {
					return err
				}
				for _, s := range low {
					emit(kds.EventStockLow, s)
				}
			}
			for _, item := range targets {
				item.Status = status
			}
		}

		for i := range order.Items {
			if err := repo.SaveOrderItem(&order.Items[i]); err != nil {
				return err
			}
		}
		if updated, err = saveOrder(repo, order); err != nil {
			return err
		}
		utils.InfoLogger.WithFields(logrus.Fields{
			"restaurant_id": tenantID,
			"order_id":      order.ID,
			"requested":     status,
			"status":        updated.Status,
		}).Info("Order status changed")
		emit(kds.EventOrderUpdated, updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CancelOrder cancels an order that has nothing delivered yet and takes its
// amount off the tab. Cancelling a cancelled order is a no-op.
func (e *OrderEngine) CancelOrder(ctx context.Context, tenantID, orderID string) (*models.Order, error) {
	return e.SetOrderStatus(ctx, tenantID, orderID, models.OrderCancelled)
}

func (e *OrderEngine) GetOrder(ctx context.Context, tenantID, orderID string) (*models.Order, error) {
	var order *models.Order
	err := e.store.Read(ctx, tenantID, func(repo store.Repository) error {
		var err error
		order, err = repo.FindOrder(orderID)
		return err
	})
	return order, err
}

func (e *OrderEngine) ListOrders(ctx context.Context, tenantID string, filter store.OrderFilter) ([]models.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.InvalidInput("unknown status %q", filter.Status)
	}
	var orders []models.Order
	err := e.store.Read(ctx, tenantID, func(repo store.Repository) error {
		var err error
		orders, err = repo.ListOrders(filter)
		return err
	})
	return orders, err
}

// KitchenQueue lists the orders still being worked on, oldest first.
func (e *OrderEngine) KitchenQueue(ctx context.Context, tenantID string) ([]models.Order, error) {
	return e.ListOrders(ctx, tenantID, store.OrderFilter{
		Statuses: []models.OrderStatus{models.OrderPending, models.OrderPreparing, models.OrderReady},
		Oldest:   true,
	})
}

// deliver consumes stock for items about to become DELIVERED.
func (e *OrderEngine) deliver(repo store.Repository, items []*models.OrderItem) ([]models.StockItem, error) {
	if len(items) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.MenuItemID)
	}
	menu, err := menuItemsByID(repo, ids)
	if err != nil {
		return nil, err
	}
	lines := make([]Consumption, 0, len(items))
	for _, item := range items {
		mi, ok := menu[item.MenuItemID]
		if !ok {
			return nil, apperrors.Internal(fmt.Errorf("menu item %s of order item %s vanished", item.MenuItemID, item.ID))
		}
		lines = append(lines, Consumption{MenuItem: mi, Quantity: item.Quantity, Reference: item.ID})
	}
	return e.ledger.Deduct(repo, lines)
}

func cancelItems(order *models.Order) error {
	for _, item := range order.Items {
		if item.Status == models.OrderDelivered {
			return apperrors.Conflict("order has delivered items and cannot be cancelled")
		}
	}
	for i := range order.Items {
		order.Items[i].Status = models.OrderCancelled
	}
	return nil
}

// saveOrder recomputes the order from its items, stores it and refreshes
// the tab total.
func saveOrder(repo store.Repository, order *models.Order) (*models.Order, error) {
	order.Recompute()
	if err := repo.SaveOrder(order); err != nil {
		return nil, err
	}
	if err := recomputeTab(repo, order.TabID); err != nil {
		return nil, err
	}
	return order, nil
}

func lineMenuIDs(lines []OrderLine) []string {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.MenuItemID)
	}
	return ids
}

func menuItemsByID(repo store.Repository, ids []string) (map[string]*models.MenuItem, error) {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	items, err := repo.FindMenuItems(unique)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.MenuItem, len(items))
	for i := range items {
		out[items[i].ID] = &items[i]
	}
	return out, nil
}
