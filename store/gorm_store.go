package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the production Store, backed by any GORM dialect.
type GormStore struct {
	db    *gorm.DB
	locks sync.Map // tenant id -> *sync.Mutex
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) tenantLock(tenantID string) *sync.Mutex {
	l, _ := s.locks.LoadOrStore(tenantID, &sync.Mutex{})
	return l.(*sync.Mutex)
}

func (s *GormStore) Atomic(ctx context.Context, tenantID string, fn func(repo Repository) error) error {
	if tenantID == "" {
		return apperrors.NotFound("restaurant not found")
	}
	mu := s.tenantLock(tenantID)
	mu.Lock()
	defer mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepo{db: tx, tenantID: tenantID, lock: true})
	})
}

func (s *GormStore) Read(ctx context.Context, tenantID string, fn func(repo Repository) error) error {
	if tenantID == "" {
		return apperrors.NotFound("restaurant not found")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepo{db: tx, tenantID: tenantID})
	})
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](s.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)), "user")
}

func (s *GormStore) FindUser(ctx context.Context, id string) (*models.User, error) {
	return first[models.User](s.db.WithContext(ctx).Where("id = ?", id), "user")
}

func (s *GormStore) Tenants(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.Restaurant{}).Order("created_at").Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return ids, nil
}

// first loads a single row, mapping a missing row to a NotFound error.
func first[T any](q *gorm.DB, what string) (*T, error) {
	var out T
	err := q.First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("%s not found", what)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &out, nil
}

// optional loads a single row or nil when there is none.
func optional[T any](q *gorm.DB) (*T, error) {
	var out []T
	if err := q.Limit(1).Find(&out).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

type gormRepo struct {
	db       *gorm.DB
	tenantID string
	lock     bool
}

func (r *gormRepo) TenantID() string { return r.tenantID }

// scoped restricts a query to the repository's tenant.
func (r *gormRepo) scoped() *gorm.DB {
	return r.db.Where("restaurant_id = ?", r.tenantID)
}

// forUpdate adds a row lock inside Atomic. SQLite ignores the clause.
func (r *gormRepo) forUpdate(q *gorm.DB) *gorm.DB {
	if !r.lock {
		return q
	}
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *gormRepo) create(value interface{}) error {
	return apperrors.Internal(r.db.Omit(clause.Associations).Create(value).Error)
}

func (r *gormRepo) save(value interface{}) error {
	return apperrors.Internal(r.db.Omit(clause.Associations).Save(value).Error)
}

func (r *gormRepo) count(model interface{}, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := r.scoped().Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return 0, apperrors.Internal(err)
	}
	return n, nil
}

// Tables

func (r *gormRepo) FindTable(id string) (*models.Table, error) {
	return first[models.Table](r.scoped().Where("id = ?", id), "table")
}

func (r *gormRepo) FindTableByNumber(number int) (*models.Table, error) {
	return optional[models.Table](r.scoped().Where("number = ?", number))
}

func (r *gormRepo) ListTables(status models.TableStatus) ([]models.Table, error) {
	q := r.scoped().Preload("Tabs", "status = ?", models.TabOpen).Order("number ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var tables []models.Table
	if err := q.Find(&tables).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return tables, nil
}

func (r *gormRepo) CreateTable(table *models.Table) error {
	table.RestaurantID = r.tenantID
	return r.create(table)
}

func (r *gormRepo) SaveTable(table *models.Table) error { return r.save(table) }

func (r *gormRepo) DeleteTable(id string) error {
	return apperrors.Internal(r.scoped().Where("id = ?", id).Delete(&models.Table{}).Error)
}

func (r *gormRepo) CountTables(status models.TableStatus) (int64, error) {
	return r.count(&models.Table{}, "status = ?", status)
}

// Waiters

func (r *gormRepo) FindWaiter(id string) (*models.Waiter, error) {
	return first[models.Waiter](r.scoped().Where("id = ?", id), "waiter")
}

func (r *gormRepo) ListWaiters() ([]models.Waiter, error) {
	var waiters []models.Waiter
	if err := r.scoped().Order("name ASC").Find(&waiters).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return waiters, nil
}

func (r *gormRepo) CreateWaiter(waiter *models.Waiter) error {
	waiter.RestaurantID = r.tenantID
	return r.create(waiter)
}

func (r *gormRepo) SaveWaiter(waiter *models.Waiter) error { return r.save(waiter) }

// Categories

func (r *gormRepo) FindCategory(id string) (*models.Category, error) {
	return first[models.Category](r.scoped().Where("id = ?", id), "category")
}

func (r *gormRepo) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := r.scoped().Order("sort_order ASC").Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return categories, nil
}

func (r *gormRepo) CreateCategory(category *models.Category) error {
	category.RestaurantID = r.tenantID
	return r.create(category)
}

func (r *gormRepo) SaveCategory(category *models.Category) error { return r.save(category) }

func (r *gormRepo) DeleteCategory(id string) error {
	return apperrors.Internal(r.scoped().Where("id = ?", id).Delete(&models.Category{}).Error)
}

func (r *gormRepo) CountMenuItemsInCategory(categoryID string) (int64, error) {
	return r.count(&models.MenuItem{}, "category_id = ?", categoryID)
}

// Menu items

func (r *gormRepo) menuItems() *gorm.DB {
	return r.scoped().
		Preload("Category").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Ingredients.StockItem")
}

func (r *gormRepo) FindMenuItem(id string) (*models.MenuItem, error) {
	return first[models.MenuItem](r.menuItems().Where("id = ?", id), "menu item")
}

func (r *gormRepo) FindMenuItems(ids []string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.menuItems().Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return items, nil
}

func (r *gormRepo) ListMenuItems(filter MenuItemFilter) ([]models.MenuItem, error) {
	q := r.menuItems().Order("name ASC")
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.IsAvailable != nil {
		q = q.Where("is_available = ?", *filter.IsAvailable)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	var items []models.MenuItem
	if err := q.Find(&items).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return items, nil
}

func (r *gormRepo) CreateMenuItem(item *models.MenuItem) error {
	item.RestaurantID = r.tenantID
	ingredients := item.Ingredients
	if err := r.create(item); err != nil {
		return err
	}
	return r.ReplaceIngredients(item.ID, ingredients)
}

func (r *gormRepo) SaveMenuItem(item *models.MenuItem) error { return r.save(item) }

func (r *gormRepo) ReplaceIngredients(menuItemID string, ingredients []models.MenuItemIngredient) error {
	if err := r.db.Where("menu_item_id = ?", menuItemID).Delete(&models.MenuItemIngredient{}).Error; err != nil {
		return apperrors.Internal(err)
	}
	for i := range ingredients {
		ingredients[i].ID = ""
		ingredients[i].MenuItemID = menuItemID
		ingredients[i].Position = i
		if err := r.create(&ingredients[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *gormRepo) DeleteMenuItem(id string) error {
	if err := r.db.Where("menu_item_id = ?", id).Delete(&models.MenuItemIngredient{}).Error; err != nil {
		return apperrors.Internal(err)
	}
	return apperrors.Internal(r.scoped().Where("id = ?", id).Delete(&models.MenuItem{}).Error)
}

func (r *gormRepo) CountOrderItemsForMenuItem(menuItemID string) (int64, error) {
	return r.count(&models.OrderItem{}, "menu_item_id = ?", menuItemID)
}

// Stock

func (r *gormRepo) FindStockItem(id string) (*models.StockItem, error) {
	return first[models.StockItem](r.scoped().Where("id = ?", id), "stock item")
}

func (r *gormRepo) FindStockItems(ids []string) ([]models.StockItem, error) {
	var items []models.StockItem
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.scoped().Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return items, nil
}

func (r *gormRepo) LockStockItems(ids []string) (map[string]*models.StockItem, error) {
	out := make(map[string]*models.StockItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []models.StockItem
	if err := r.forUpdate(r.scoped().Where("id IN ?", ids)).Order("id").Find(&items).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	for i := range items {
		out[items[i].ID] = &items[i]
	}
	return out, nil
}

func (r *gormRepo) ListStockItems(lowOnly bool) ([]models.StockItem, error) {
	q := r.scoped().Order("name ASC")
	if lowOnly {
		q = q.Where("quantity < min_quantity")
	}
	var items []models.StockItem
	if err := q.Find(&items).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return items, nil
}

func (r *gormRepo) CreateStockItem(item *models.StockItem) error {
	item.RestaurantID = r.tenantID
	return r.create(item)
}

func (r *gormRepo) SaveStockItem(item *models.StockItem) error { return r.save(item) }

func (r *gormRepo) DeleteStockItem(id string) error {
	return apperrors.Internal(r.scoped().Where("id = ?", id).Delete(&models.StockItem{}).Error)
}

func (r *gormRepo) CountRecipesUsingStockItem(stockItemID string) (int64, error) {
	var n int64
	err := r.db.Model(&models.MenuItemIngredient{}).
		Joins("JOIN menu_items ON menu_items.id = menu_item_ingredients.menu_item_id").
		Where("menu_items.restaurant_id = ? AND menu_item_ingredients.stock_item_id = ?", r.tenantID, stockItemID).
		Count(&n).Error
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return n, nil
}

func (r *gormRepo) AddStockMovement(movement *models.StockMovement) error {
	movement.RestaurantID = r.tenantID
	return r.create(movement)
}

func (r *gormRepo) ListStockMovements(stockItemID string, limit int) ([]models.StockMovement, error) {
	q := r.scoped().Where("stock_item_id = ?", stockItemID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var movements []models.StockMovement
	if err := q.Find(&movements).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return movements, nil
}

// Tabs

func (r *gormRepo) tabs(withOrders bool) *gorm.DB {
	q := r.scoped().Preload("Table").Preload("Waiter")
	if withOrders {
		q = q.Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
			Preload("Orders.Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
			Preload("Orders.Items.MenuItem")
	}
	return q
}

func (r *gormRepo) FindTab(id string) (*models.Tab, error) {
	return first[models.Tab](r.tabs(true).Where("id = ?", id), "tab")
}

func (r *gormRepo) LockTab(id string) (*models.Tab, error) {
	return first[models.Tab](r.forUpdate(r.tabs(true).Where("id = ?", id)), "tab")
}

func (r *gormRepo) LastTab() (*models.Tab, error) {
	return optional[models.Tab](r.scoped().Order("sequence DESC"))
}

func (r *gormRepo) FindOpenTabByTable(tableID string) (*models.Tab, error) {
	return optional[models.Tab](r.scoped().Where("table_id = ? AND status = ?", tableID, models.TabOpen))
}

func (r *gormRepo) CountTabsForTable(tableID string) (int64, error) {
	return r.count(&models.Tab{}, "table_id = ?", tableID)
}

func (r *gormRepo) ListTabs(filter TabFilter) ([]models.Tab, error) {
	q := r.tabs(filter.WithOrders).Order("opened_at DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.WaiterID != "" {
		q = q.Where("waiter_id = ?", filter.WaiterID)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(code) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.OpenedFrom != nil {
		q = q.Where("opened_at >= ?", *filter.OpenedFrom)
	}
	if filter.OpenedTo != nil {
		q = q.Where("opened_at <= ?", *filter.OpenedTo)
	}
	if filter.OpenedBefore != nil {
		q = q.Where("opened_at < ?", *filter.OpenedBefore)
	}
	if filter.ClosedFrom != nil {
		q = q.Where("closed_at >= ?", *filter.ClosedFrom)
	}
	if filter.ClosedTo != nil {
		q = q.Where("closed_at <= ?", *filter.ClosedTo)
	}
	var tabs []models.Tab
	if err := q.Find(&tabs).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return tabs, nil
}

func (r *gormRepo) CreateTab(tab *models.Tab) error {
	tab.RestaurantID = r.tenantID
	return r.create(tab)
}

func (r *gormRepo) SaveTab(tab *models.Tab) error { return r.save(tab) }

// Orders

func (r *gormRepo) orders() *gorm.DB {
	return r.scoped().
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.MenuItem")
}

func (r *gormRepo) FindOrder(id string) (*models.Order, error) {
	return first[models.Order](r.forUpdate(r.orders().Where("id = ?", id)), "order")
}

func (r *gormRepo) ListOrders(filter OrderFilter) ([]models.Order, error) {
	q := r.orders().Preload("Tab").Preload("Tab.Table")
	if filter.Oldest {
		q = q.Order("created_at ASC")
	} else {
		q = q.Order("created_at DESC")
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.TabID != "" {
		q = q.Where("tab_id = ?", filter.TabID)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return orders, nil
}

func (r *gormRepo) ListOrdersByTab(tabID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.orders().Where("tab_id = ?", tabID).Order("created_at ASC").Find(&orders).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return orders, nil
}

func (r *gormRepo) CreateOrder(order *models.Order) error {
	order.RestaurantID = r.tenantID
	if err := r.create(order); err != nil {
		return err
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.Items[i].RestaurantID = r.tenantID
		if err := r.create(&order.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *gormRepo) SaveOrder(order *models.Order) error { return r.save(order) }

func (r *gormRepo) SaveOrderItem(item *models.OrderItem) error { return r.save(item) }

// Notifications

func (r *gormRepo) CreateNotification(notification *models.Notification) error {
	notification.RestaurantID = r.tenantID
	return r.create(notification)
}

func (r *gormRepo) ListNotifications(limit int) ([]models.Notification, error) {
	q := r.scoped().Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var notifications []models.Notification
	if err := q.Find(&notifications).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return notifications, nil
}

func (r *gormRepo) NotificationExists(kind models.NotificationKind, reference string, since time.Time) (bool, error) {
	n, err := r.count(&models.Notification{}, "kind = ? AND reference = ? AND created_at >= ?", kind, reference, since)
	return n > 0, err
}
