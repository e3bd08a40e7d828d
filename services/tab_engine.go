package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/kds"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/store"
	"github.com/yeremiapane/comanda-app/utils"
)

const tabCodePrefix = "C"

var hundred = decimal.NewFromInt(100)

type OpenTabInput struct {
	TableID  string
	WaiterID string
}

// CloseTabInput carries the settlement. Without a DiscountType a non-zero
// DiscountValue is an absolute amount; a zero value falls back to the
// discount already set on the tab.
type CloseTabInput struct {
	DiscountType  *models.DiscountType
	DiscountValue decimal.Decimal
	PaymentMethod models.PaymentMethod
}

type UpdateTabInput struct {
	WaiterID *string
	Discount *decimal.Decimal
	Status   *models.TabStatus
}

// TabEngine opens, settles and cancels tabs, and drives the status of the
// table a tab sits on.
type TabEngine struct {
	engine
}

func NewTabEngine(s store.Store, n Notifier) *TabEngine {
	return &TabEngine{engine: newEngine(s, n)}
}

func (e *TabEngine) OpenTab(ctx context.Context, tenantID string, in OpenTabInput) (*models.Tab, error) {
	var opened *models.Tab
	err := e.atomic(ctx, tenantID, func(repo store.Repository, emit func(string, interface{})) error {
		table, err := repo.FindTable(in.TableID)
		if err != nil {
			return err
		}
		if table.Status != models.TableAvailable {
			return apperrors.Conflict("table %d is %s", table.Number, table.Status)
		}
		if existing, err := repo.FindOpenTabByTable(table.ID); err != nil {
			return err
		} else if existing != nil {
			return apperrors.Conflict("table %d already has open tab %s", table.Number, existing.Code)
		}

		waiter, err := repo.FindWaiter(in.WaiterID)
		if err != nil {
			return err
		}
		if !waiter.IsActive {
			return apperrors.InvalidReference("waiter %s is inactive", waiter.Name)
		}

		last, err := repo.LastTab()
		if err != nil {
			return err
		}
		tab := &models.Tab{
			Code:        utils.NextSequentialCode(tabCodePrefix, ""),
			Sequence:    1,
			Status:      models.TabOpen,
			TableID:     table.ID,
			WaiterID:    waiter.ID,
			Discount:    decimal.Zero,
			TotalAmount: decimal.Zero,
			OpenedAt:    e.now(),
		}
		if last != nil {
			tab.Code = utils.NextSequentialCode(tabCodePrefix, last.Code)
			tab.Sequence = last.Sequence + 1
		}
		if err := repo.CreateTab(tab); err != nil {
			return err
		}

		table, err = setTableStatus(repo, table.ID, models.TableOccupied)
		if err != nil {
			return err
		}
		if opened, err = repo.FindTab(tab.ID); err != nil {
			return err
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"restaurant_id": tenantID,
			"tab":           opened.Code,
			"table":         table.Number,
			"waiter":        waiter.Name,
		}).Info("Tab opened")
		emit(kds.EventTabOpened, opened)
		emit(kds.EventTableUpdated, table)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return opened, nil
}

// CloseTab settles a tab whose orders are all delivered or cancelled. The
// total is rebuilt from the items, the discount taken off and the table
// released.
func (e *TabEngine) CloseTab(ctx context.Context, tenantID, tabID string, in CloseTabInput) (*models.Tab, error) {
	if !in.PaymentMethod.Valid() {
		return nil, apperrors.InvalidInput("unknown payment method %q", in.PaymentMethod)
	}
	if in.DiscountValue.IsNegative() {
		return nil, apperrors.InvalidInput("discount cannot be negative")
	}
	if in.DiscountType != nil {
		if !in.DiscountType.Valid() {
			return nil, apperrors.InvalidInput("unknown discount type %q", *in.DiscountType)
		}
		if *in.DiscountType == models.DiscountPercentage && in.DiscountValue.GreaterThan(hundred) {
			return nil, apperrors.InvalidInput("percentage discount cannot exceed 100")
		}
	}

	var closed *models.Tab
	err := e.atomic(ctx, tenantID, func(repo store.Repository, emit func(string, interface{})) error {
		tab, err := repo.LockTab(tabID)
		if err != nil {
			return err
		}
		if tab.Status != models.TabOpen {
			return apperrors.Conflict("tab %s is %s", tab.Code, tab.Status)
		}
		for _, order := range tab.Orders {
			if !order.Status.IsTerminal() {
				return apperrors.Conflict("tab %s has pending orders", tab.Code)
			}
		}

		total := itemsTotal(tab.Orders)
		discount := tab.Discount
		switch {
		case in.DiscountType != nil && *in.DiscountType == models.DiscountPercentage:
			discount = total.Mul(in.DiscountValue).Div(hundred)
		case in.DiscountType != nil, !in.DiscountValue.IsZero():
			discount = in.DiscountValue
		}
		discount = discount.Round(2)

		final := total.Sub(discount)
		if final.IsNegative() {
			final = decimal.Zero
		}
		closedAt := e.now()
		method := in.PaymentMethod
		tab.Discount = discount
		tab.TotalAmount = final
		tab.Status = models.TabClosed
		tab.PaymentMethod = &method
		tab.ClosedAt = &closedAt
		if err := repo.SaveTab(tab); err != nil {
			return err
		}

		table, err := setTableStatus(repo, tab.TableID, models.TableAvailable)
		if err != nil {
			return err
		}
		if closed, err = repo.FindTab(tab.ID); err != nil {
			return err
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"restaurant_id": tenantID,
			"tab":           tab.Code,
			"subtotal":      total.StringFixed(2),
			"discount":      discount.StringFixed(2),
			"total":         final.StringFixed(2),
			"payment":       method,
		}).Info("Tab closed")
		emit(kds.EventTabClosed, closed)
		emit(kds.EventTableUpdated, table)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// CancelTab abandons an open tab. The accrued total is kept as it was and the
// orders are left untouched.
func (e *TabEngine) CancelTab(ctx context.Context, tenantID, tabID string) (*models.Tab, error) {
	var cancelled *models.Tab
	err := e.atomic(ctx, tenantID, func(repo store.Repository, emit func(string, interface{})) error {
		tab, err := repo.LockTab(tabID)
		if err != nil {
			return err
		}
		cancelled, err = e.cancel(repo, tab, emit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (e *TabEngine) cancel(repo store.Repository, tab *models.Tab, emit func(string, interface{})) (*models.Tab, error) {
	if tab.Status != models.TabOpen {
		return nil, apperrors.Conflict("tab %s is %s", tab.Code, tab.Status)
	}
	closedAt := e.now()
	tab.Status = models.TabCancelled
	tab.ClosedAt = &closedAt
	if err := repo.SaveTab(tab); err != nil {
		return nil, err
	}
	table, err := setTableStatus(repo, tab.TableID, models.TableAvailable)
	if err != nil {
		return nil, err
	}
	cancelled, err := repo.FindTab(tab.ID)
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": repo.TenantID(),
		"tab":           tab.Code,
		"total":         tab.TotalAmount.StringFixed(2),
	}).Info("Tab cancelled")
	emit(kds.EventTabCancelled, cancelled)
	emit(kds.EventTableUpdated, table)
	return cancelled, nil
}

// UpdateTab reassigns the waiter or presets the discount of an open tab. A
// CANCELLED status cancels the tab; closing goes through CloseTab.
func (e *TabEngine) UpdateTab(ctx context.Context, tenantID, tabID string, in UpdateTabInput) (*models.Tab, error) {
	if in.Discount != nil && in.Discount.IsNegative() {
		return nil, apperrors.InvalidInput("discount cannot be negative")
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, apperrors.InvalidInput("unknown status %q", *in.Status)
	}

	var updated *models.Tab
	err := e.atomic(ctx, tenantID, func(repo store.Repository, emit func(string, interface{})) error {
		tab, err := repo.LockTab(tabID)
		if err != nil {
			return err
		}
		if in.Status != nil && *in.Status != tab.Status && *in.Status != models.TabCancelled {
			return apperrors.Conflict("tab %s cannot move from %s to %s", tab.Code, tab.Status, *in.Status)
		}
		if (in.WaiterID != nil || in.Discount != nil) && tab.Status != models.TabOpen {
			return apperrors.Conflict("tab %s is %s", tab.Code, tab.Status)
		}

		if in.WaiterID != nil {
			waiter, err := repo.FindWaiter(*in.WaiterID)
			if err != nil {
				return err
			}
			if !waiter.IsActive {
				return apperrors.InvalidReference("waiter %s is inactive", waiter.Name)
			}
			tab.WaiterID = waiter.ID
			tab.Waiter = waiter
		}
		if in.Discount != nil {
			tab.Discount = in.Discount.Round(2)
		}
		if in.WaiterID != nil || in.Discount != nil {
			if err := repo.SaveTab(tab); err != nil {
				return err
			}
		}

		if in.Status != nil && *in.Status == models.TabCancelled {
			updated, err = e.cancel(repo, tab, emit)
			return err
		}
		updated, err = repo.FindTab(tab.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (e *TabEngine) GetTab(ctx context.Context, tenantID, tabID string) (*models.Tab, error) {
	var tab *models.Tab
	err := e.store.Read(ctx, tenantID, func(repo store.Repository) error {
		var err error
		tab, err = repo.FindTab(tabID)
		return err
	})
	return tab, err
}

func (e *TabEngine) ListTabs(ctx context.Context, tenantID string, filter store.TabFilter) ([]models.Tab, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.InvalidInput("unknown status %q", filter.Status)
	}
	var tabs []models.Tab
	err := e.store.Read(ctx, tenantID, func(repo store.Repository) error {
		var err error
		tabs, err = repo.ListTabs(filter)
		return err
	})
	return tabs, err
}

// recomputeTab refreshes the running total of an open tab from its orders.
// Closed and cancelled tabs keep their final figure.
func recomputeTab(repo store.Repository, tabID string) error {
	tab, err := repo.FindTab(tabID)
	if err != nil {
		return err
	}
	if tab.Status != models.TabOpen {
		return nil
	}
	total := decimal.Zero
	for _, order := range tab.Orders {
		if order.Status != models.OrderCancelled {
			total = total.Add(order.TotalAmount)
		}
	}
	tab.TotalAmount = total
	return repo.SaveTab(tab)
}

// itemsTotal sums the live items of the live orders, ignoring cached totals.
func itemsTotal(orders []models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, order := range orders {
		if order.Status == models.OrderCancelled {
			continue
		}
		for _, item := range order.Items {
			if item.Status != models.OrderCancelled {
				total = total.Add(item.TotalPrice)
			}
		}
	}
	return total
}
