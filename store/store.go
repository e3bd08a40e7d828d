// Package store is the entity store: tenant-scoped lookups and mutations
// over tables, waiters, catalog, stock, tabs and orders.
package store

import (
	"context"
	"time"

	"github.com/yeremiapane/comanda-app/models"
)

// Store hands out tenant-scoped repositories.
//
// Atomic runs fn inside one transaction while holding the tenant's lock, so
// compound operations (order creation, status changes with stock deduction,
// closing a tab) commit or roll back as a unit and never interleave. Read
// runs fn inside a read transaction for a consistent snapshot.
type Store interface {
	Atomic(ctx context.Context, tenantID string, fn func(repo Repository) error) error
	Read(ctx context.Context, tenantID string, fn func(repo Repository) error) error

	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUser(ctx context.Context, id string) (*models.User, error)
	Tenants(ctx context.Context) ([]string, error)
}

type MenuItemFilter struct {
	CategoryID  string
	IsAvailable *bool
	Search      string
}

type TabFilter struct {
	Status       models.TabStatus
	WaiterID     string
	OpenedFrom   *time.Time
	OpenedTo     *time.Time
	ClosedFrom   *time.Time
	ClosedTo     *time.Time
	Search       string
	WithOrders   bool
	OpenedBefore *time.Time
}

type OrderFilter struct {
	Status   models.OrderStatus
	Statuses []models.OrderStatus
	TabID    string
	From     *time.Time
	To       *time.Time
	Oldest   bool
}

// Repository is the persistence contract of the engines. Every method is
// scoped to the tenant the repository was opened for; an id that belongs to
// another tenant is reported as not found.
type Repository interface {
	TenantID() string

	FindTable(id string) (*models.Table, error)
	FindTableByNumber(number int) (*models.Table, error)
	ListTables(status models.TableStatus) ([]models.Table, error)
	CreateTable(table *models.Table) error
	SaveTable(table *models.Table) error
	DeleteTable(id string) error
	CountTables(status models.TableStatus) (int64, error)

	FindWaiter(id string) (*models.Waiter, error)
	ListWaiters() ([]models.Waiter, error)
	CreateWaiter(waiter *models.Waiter) error
	SaveWaiter(waiter *models.Waiter) error

	FindCategory(id string) (*models.Category, error)
	ListCategories() ([]models.Category, error)
	CreateCategory(category *models.Category) error
	SaveCategory(category *models.Category) error
	DeleteCategory(id string) error
	CountMenuItemsInCategory(categoryID string) (int64, error)

	FindMenuItem(id string) (*models.MenuItem, error)
	FindMenuItems(ids []string) ([]models.MenuItem, error)
	ListMenuItems(filter MenuItemFilter) ([]models.MenuItem, error)
	CreateMenuItem(item *models.MenuItem) error
	SaveMenuItem(item *models.MenuItem) error
	ReplaceIngredients(menuItemID string, ingredients []models.MenuItemIngredient) error
	DeleteMenuItem(id string) error
	CountOrderItemsForMenuItem(menuItemID string) (int64, error)

	FindStockItem(id string) (*models.StockItem, error)
	FindStockItems(ids []string) ([]models.StockItem, error)
	LockStockItems(ids []string) (map[string]*models.StockItem, error)
	ListStockItems(lowOnly bool) ([]models.StockItem, error)
	CreateStockItem(item *models.StockItem) error
	SaveStockItem(item *models.StockItem) error
	DeleteStockItem(id string) error
	CountRecipesUsingStockItem(stockItemID string) (int64, error)
	AddStockMovement(movement *models.StockMovement) error
	ListStockMovements(stockItemID string, limit int) ([]models.StockMovement, error)

	FindTab(id string) (*models.Tab, error)
	LockTab(id string) (*models.Tab, error)
	LastTab() (*models.Tab, error)
	FindOpenTabByTable(tableID string) (*models.Tab, error)
	CountTabsForTable(tableID string) (int64, error)
	ListTabs(filter TabFilter) ([]models.Tab, error)
	CreateTab(tab *models.Tab) error
	SaveTab(tab *models.Tab) error

	FindOrder(id string) (*models.Order, error)
	ListOrders(filter OrderFilter) ([]models.Order, error)
	ListOrdersByTab(tabID string) ([]models.Order, error)
	CreateOrder(order *models.Order) error
	SaveOrder(order *models.Order) error
	SaveOrderItem(item *models.OrderItem) error

	CreateNotification(notification *models.Notification) error
	ListNotifications(limit int) ([]models.Notification, error)
	NotificationExists(kind models.NotificationKind, reference string, since time.Time) (bool, error)
}
