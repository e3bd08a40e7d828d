package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-app/database"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/store"
	"gorm.io/gorm"
)

type recordedEvent struct {
	tenant string
	name   string
	data   interface{}
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Publish(tenant, name string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{tenant: tenant, name: name, data: data})
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.name)
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	db     *gorm.DB
	store  *store.GormStore
	events *recorder
	tenant string
	other  string

	orders     *OrderEngine
	tabs       *TabEngine
	tables     *TableService
	categories *CategoryService
	menu       *MenuService
	stock      *StockService
	waiters    *WaiterService
	reports    *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	restaurants := []models.Restaurant{{Name: "Main"}, {Name: "Other"}}
	require.NoError(t, db.Create(&restaurants).Error)

	s := store.NewGormStore(db)
	rec := &recorder{}
	return &fixture{
		t:          t,
		ctx:        context.Background(),
		db:         db,
		store:      s,
		events:     rec,
		tenant:     restaurants[0].ID,
		other:      restaurants[1].ID,
		orders:     NewOrderEngine(s, rec),
		tabs:       NewTabEngine(s, rec),
		tables:     NewTableService(s, rec),
		categories: NewCategoryService(s),
		menu:       NewMenuService(s),
		stock:      NewStockService(s, rec),
		waiters:    NewWaiterService(s),
		reports:    NewReportService(s, 2*time.Hour),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

// assertDecimal compares numerically; SQLite hands decimals back with
// varying scale.
func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, dec(expected).Equal(actual), "expected %s, got %s %v", expected, actual.String(), msgAndArgs)
}

func (f *fixture) table(tenant string, number int) *models.Table {
	f.t.Helper()
	table, err := f.tables.CreateTable(f.ctx, tenant, TableInput{Number: ptr(number), Capacity: ptr(4)})
	require.NoError(f.t, err)
	return table
}

func (f *fixture) waiter(tenant, name string) *models.Waiter {
	f.t.Helper()
	w, err := f.waiters.CreateWaiter(f.ctx, tenant, WaiterInput{Name: ptr(name)})
	require.NoError(f.t, err)
	return w
}

func (f *fixture) category(tenant, name string) *models.Category {
	f.t.Helper()
	c, err := f.categories.CreateCategory(f.ctx, tenant, CategoryInput{Name: ptr(name)})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) stockItem(tenant, name, qty, min string) *models.StockItem {
	f.t.Helper()
	s, err := f.stock.CreateStockItem(f.ctx, tenant, StockItemInput{
		Name:        ptr(name),
		Unit:        ptr("kg"),
		Quantity:    ptr(dec(qty)),
		MinQuantity: ptr(dec(min)),
		Cost:        ptr(dec("1")),
	})
	require.NoError(f.t, err)
	return s
}

type ingredient struct {
	stock *models.StockItem
	qty   string
}

func (f *fixture) menuItem(tenant string, category *models.Category, name, price string, recipe ...ingredient) *models.MenuItem {
	f.t.Helper()
	ings := make([]IngredientInput, 0, len(recipe))
	for _, r := range recipe {
		ings = append(ings, IngredientInput{StockItemID: r.stock.ID, Quantity: dec(r.qty)})
	}
	m, err := f.menu.CreateMenuItem(f.ctx, tenant, MenuItemInput{
		CategoryID:      ptr(category.ID),
		Name:            ptr(name),
		Price:           ptr(dec(price)),
		PreparationTime: ptr(10),
		Ingredients:     &ings,
	})
	require.NoError(f.t, err)
	return m
}

// openTab opens a tab on a fresh table with a fresh waiter.
func (f *fixture) openTab(tenant string, tableNumber int) *models.Tab {
	f.t.Helper()
	table := f.table(tenant, tableNumber)
	waiter := f.waiter(tenant, "Waiter")
	tab, err := f.tabs.OpenTab(f.ctx, tenant, OpenTabInput{TableID: table.ID, WaiterID: waiter.ID})
	require.NoError(f.t, err)
	return tab
}

func (f *fixture) order(tenant string, tab *models.Tab, lines ...OrderLine) *models.Order {
	f.t.Helper()
	order, err := f.orders.CreateOrder(f.ctx, tenant, CreateOrderInput{TabID: tab.ID, Items: lines})
	require.NoError(f.t, err)
	return order
}

func (f *fixture) reloadTab(tenant, id string) *models.Tab {
	f.t.Helper()
	tab, err := f.tabs.GetTab(f.ctx, tenant, id)
	require.NoError(f.t, err)
	return tab
}

func (f *fixture) reloadStock(tenant, id string) *models.StockItem {
	f.t.Helper()
	item, err := f.stock.GetStockItem(f.ctx, tenant, id)
	require.NoError(f.t, err)
	return item
}

// assertTotals checks the derived totals of every order and, while open,
// of the tab.
func (f *fixture) assertTotals(tenant, tabID string) {
	f.t.Helper()
	tab := f.reloadTab(tenant, tabID)
	tabTotal := decimal.Zero
	for _, order := range tab.Orders {
		orderTotal := decimal.Zero
		for _, item := range order.Items {
			if item.Status != models.OrderCancelled {
				orderTotal = orderTotal.Add(item.TotalPrice)
			}
		}
		assert.Truef(f.t, orderTotal.Equal(order.TotalAmount), "order %s total %s != %s", order.ID, order.TotalAmount, orderTotal)
		assert.Equal(f.t, models.DeriveOrderStatus(order.Items), order.Status)
		if order.Status != models.OrderCancelled {
			tabTotal = tabTotal.Add(order.TotalAmount)
		}
	}
	if tab.Status == models.TabOpen {
		assert.Truef(f.t, tabTotal.Equal(tab.TotalAmount), "tab total %s != %s", tab.TotalAmount, tabTotal)
	}
}

func storeTabFilter(status ...models.TabStatus) store.TabFilter {
	var filter store.TabFilter
	if len(status) > 0 {
		filter.Status = status[0]
	}
	return filter
}
