package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/models"
)

// Wednesday.
var reportNow = time.Date(2026, 3, 11, 21, 0, 0, 0, time.UTC)

type sale struct {
	table    int
	waiter   *models.Waiter
	item     *models.MenuItem
	qty      int
	closedAt time.Time
	method   models.PaymentMethod
}

// closeSale runs a whole service: open, order, deliver and close at the
// given time.
func (f *fixture) closeSale(s sale) *models.Tab {
	f.t.Helper()
	table := f.table(f.tenant, s.table)
	f.tabs.SetClock(func() time.Time { return s.closedAt.Add(-time.Hour) })
	tab, err := f.tabs.OpenTab(f.ctx, f.tenant, OpenTabInput{TableID: table.ID, WaiterID: s.waiter.ID})
	require.NoError(f.t, err)
	order := f.order(f.tenant, tab, OrderLine{MenuItemID: s.item.ID, Quantity: s.qty})
	_, err = f.orders.SetOrderStatus(f.ctx, f.tenant, order.ID, models.OrderDelivered)
	require.NoError(f.t, err)
	f.tabs.SetClock(func() time.Time { return s.closedAt })
	closed, err := f.tabs.CloseTab(f.ctx, f.tenant, tab.ID, CloseTabInput{PaymentMethod: s.method})
	require.NoError(f.t, err)
	return closed
}

type salesFloor struct {
	ana, bia    *models.Waiter
	steak, beer *models.MenuItem
	lowStock    *models.StockItem
}

func newSalesFloor(f *fixture) *salesFloor {
	food := f.category(f.tenant, "Food")
	drinks := f.category(f.tenant, "Drinks")
	s := &salesFloor{
		ana:      f.waiter(f.tenant, "Ana"),
		bia:      f.waiter(f.tenant, "Bia"),
		steak:    f.menuItem(f.tenant, food, "Steak", "25.00"),
		beer:     f.menuItem(f.tenant, drinks, "Beer", "10.00"),
		lowStock: f.stockItem(f.tenant, "Charcoal", "1", "5"),
	}
	f.closeSale(sale{table: 1, waiter: s.ana, item: s.steak, qty: 2, closedAt: time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC), method: models.PaymentPix})
	f.closeSale(sale{table: 2, waiter: s.bia, item: s.beer, qty: 3, closedAt: time.Date(2026, 3, 11, 20, 0, 0, 0, time.UTC), method: models.PaymentCash})
	f.closeSale(sale{table: 3, waiter: s.ana, item: s.beer, qty: 2, closedAt: time.Date(2026, 2, 27, 19, 0, 0, 0, time.UTC), method: models.PaymentPix})
	return s
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	floor := newSalesFloor(f)

	// One tab left open for three hours, one for half an hour.
	table := f.table(f.tenant, 10)
	f.tabs.SetClock(func() time.Time { return reportNow.Add(-3 * time.Hour) })
	stale, err := f.tabs.OpenTab(f.ctx, f.tenant, OpenTabInput{TableID: table.ID, WaiterID: floor.bia.ID})
	require.NoError(t, err)
	table = f.table(f.tenant, 11)
	f.tabs.SetClock(func() time.Time { return reportNow.Add(-30 * time.Minute) })
	_, err = f.tabs.OpenTab(f.ctx, f.tenant, OpenTabInput{TableID: table.ID, WaiterID: floor.bia.ID})
	require.NoError(t, err)

	f.reports.SetClock(func() time.Time { return reportNow })
	d, err := f.reports.Dashboard(f.ctx, f.tenant)
	require.NoError(t, err)

	assertDecimal(t, "30", d.SalesToday)
	assertDecimal(t, "80", d.SalesWeek)
	assertDecimal(t, "80", d.SalesMonth)
	assertDecimal(t, "33.33", d.AverageTicket)
	assert.Equal(t, 3, d.OrdersCount)
	assert.EqualValues(t, 2, d.OccupiedTables)

	require.Len(t, d.SalesChart, 7)
	assert.Equal(t, "2026-03-05", d.SalesChart[0].Date)
	assert.Equal(t, "2026-03-11", d.SalesChart[6].Date)
	assertDecimal(t, "50", d.SalesChart[4].Total)
	assertDecimal(t, "30", d.SalesChart[6].Total)
	assertDecimal(t, "0", d.SalesChart[5].Total)

	require.Len(t, d.TopProducts, 2)
	assert.Equal(t, "Beer", d.TopProducts[0].Name)
	assert.Equal(t, 5, d.TopProducts[0].Quantity)
	assert.Equal(t, "Drinks", d.TopProducts[0].Category)

	require.Len(t, d.TopWaiters, 2)
	assert.Equal(t, "Ana", d.TopWaiters[0].WaiterName)
	assertDecimal(t, "70", d.TopWaiters[0].Total)
	assert.Equal(t, 2, d.TopWaiters[0].TabsCount)

	require.Len(t, d.LowStockAlerts, 1)
	assert.Equal(t, floor.lowStock.ID, d.LowStockAlerts[0].StockItemID)
	require.Len(t, d.StaleTabs, 1)
	assert.Equal(t, stale.ID, d.StaleTabs[0].TabID)
	assert.Equal(t, 10, d.StaleTabs[0].TableNumber)
}

func TestSalesReport(t *testing.T) {
	f := newFixture(t)
	newSalesFloor(f)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	r, err := f.reports.SalesReport(f.ctx, f.tenant, Period{From: &from})
	require.NoError(t, err)
	assertDecimal(t, "80", r.TotalRevenue)
	assert.Equal(t, 2, r.TabsCount)
	assert.Equal(t, 2, r.TotalOrders)
	assertDecimal(t, "40", r.AverageTicket)

	require.Len(t, r.Details, 2)
	assert.Equal(t, 2, r.Details[0].TableNumber, "latest first")
	assert.Equal(t, "Bia", r.Details[0].WaiterName)

	require.Len(t, r.TotalsByPayment, 2)
	assert.Equal(t, models.PaymentCash, r.TotalsByPayment[0].PaymentMethod)
	assertDecimal(t, "30", r.TotalsByPayment[0].Total)
	assert.Equal(t, models.PaymentPix, r.TotalsByPayment[1].PaymentMethod)

	require.Len(t, r.DailyTotals, 2)
	assert.Equal(t, "2026-03-09", r.DailyTotals[0].Date)

	all, err := f.reports.SalesReport(f.ctx, f.tenant, Period{})
	require.NoError(t, err)
	assertDecimal(t, "100", all.TotalRevenue)

	before := from.AddDate(0, 0, -1)
	_, err = f.reports.SalesReport(f.ctx, f.tenant, Period{From: &from, To: &before})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	other, err := f.reports.SalesReport(f.ctx, f.other, Period{})
	require.NoError(t, err)
	assert.Zero(t, other.TabsCount)
	assert.NotNil(t, other.Details)
}

func TestProductsAndWaitersReports(t *testing.T) {
	f := newFixture(t)
	floor := newSalesFloor(f)

	// A cancelled order does not count as sold.
	tab := f.openTab(f.tenant, 20)
	order := f.order(f.tenant, tab, OrderLine{MenuItemID: floor.steak.ID, Quantity: 9})
	_, err := f.orders.CancelOrder(f.ctx, f.tenant, order.ID)
	require.NoError(t, err)

	products, err := f.reports.ProductsReport(f.ctx, f.tenant, Period{}, "")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, floor.beer.ID, products[0].MenuItemID)
	assert.Equal(t, 5, products[0].Quantity)
	assertDecimal(t, "50", products[0].Total)
	assert.Equal(t, 2, products[1].Quantity)

	steakOnly, err := f.reports.ProductsReport(f.ctx, f.tenant, Period{}, floor.steak.CategoryID)
	require.NoError(t, err)
	require.Len(t, steakOnly, 1)
	assert.Equal(t, "Steak", steakOnly[0].Name)

	future := time.Now().AddDate(1, 0, 0)
	none, err := f.reports.ProductsReport(f.ctx, f.tenant, Period{From: &future}, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	waiters, err := f.reports.WaitersReport(f.ctx, f.tenant, Period{From: &from})
	require.NoError(t, err)
	require.Len(t, waiters, 2)
	assert.Equal(t, "Ana", waiters[0].WaiterName)
	assertDecimal(t, "50", waiters[0].Total)
	assert.Equal(t, "Bia", waiters[1].WaiterName)
	assertDecimal(t, "30", waiters[1].AverageTicket)
}

func TestStartOfWeekIsMonday(t *testing.T) {
	sunday := time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), startOfWeek(sunday))
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), startOfWeek(reportNow.AddDate(0, 0, -2)))
}
