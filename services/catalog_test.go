package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/store"
)

func TestCategoryLifecycle(t *testing.T) {
	f := newFixture(t)
	drinks := f.category(f.tenant, "  Drinks ")
	assert.Equal(t, "Drinks", drinks.Name)
	assert.True(t, drinks.IsActive)

	_, err := f.categories.CreateCategory(f.ctx, f.tenant, CategoryInput{Name: ptr(" ")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	updated, err := f.categories.UpdateCategory(f.ctx, f.tenant, drinks.ID, CategoryInput{SortOrder: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.SortOrder)
	assert.Equal(t, "Drinks", updated.Name)

	f.menuItem(f.tenant, drinks, "Juice", "8.00")
	err = f.categories.DeleteCategory(f.ctx, f.tenant, drinks.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	empty := f.category(f.tenant, "Seasonal")
	require.NoError(t, f.categories.DeleteCategory(f.ctx, f.tenant, empty.ID))
	_, err = f.categories.GetCategory(f.ctx, f.tenant, empty.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.categories.GetCategory(f.ctx, f.other, drinks.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateMenuItemWithRecipe(t *testing.T) {
	f := newFixture(t)
	cat := f.category(f.tenant, "Burgers")
	bun := f.stockItem(f.tenant, "Bun", "50", "10")
	patty := f.stockItem(f.tenant, "Patty", "30", "5")

	item := f.menuItem(f.tenant, cat, "Classic", "21.905", ingredient{patty, "1"}, ingredient{bun, "1"})
	assertDecimal(t, "21.91", item.Price)
	assert.True(t, item.IsAvailable)
	require.NotNil(t, item.Category)
	assert.Equal(t, "Burgers", item.Category.Name)
	require.Len(t, item.Ingredients, 2)
	assert.Equal(t, patty.ID, item.Ingredients[0].StockItemID)
	assert.Equal(t, bun.ID, item.Ingredients[1].StockItemID)
	require.NotNil(t, item.Ingredients[0].StockItem)
	assert.Equal(t, "Patty", item.Ingredients[0].StockItem.Name)

	// Replacing the recipe drops the old lines.
	updated, err := f.menu.UpdateMenuItem(f.ctx, f.tenant, item.ID, MenuItemInput{
		Ingredients: &[]IngredientInput{{StockItemID: bun.ID, Quantity: dec("2")}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Ingredients, 1)
	assertDecimal(t, "2", updated.Ingredients[0].Quantity)

	// Leaving the recipe out keeps it.
	updated, err = f.menu.UpdateMenuItem(f.ctx, f.tenant, item.ID, MenuItemInput{Price: ptr(dec("23"))})
	require.NoError(t, err)
	assertDecimal(t, "23", updated.Price)
	assert.Len(t, updated.Ingredients, 1)
}

func TestMenuItemReferences(t *testing.T) {
	f := newFixture(t)
	cat := f.category(f.tenant, "Food")
	inactiveCat := f.category(f.tenant, "Old")
	_, err := f.categories.UpdateCategory(f.ctx, f.tenant, inactiveCat.ID, CategoryInput{IsActive: ptr(false)})
	require.NoError(t, err)
	foreignStock := f.stockItem(f.other, "Rice", "10", "1")
	retired := f.stockItem(f.tenant, "Lard", "10", "1")
	_, err = f.stock.UpdateStockItem(f.ctx, f.tenant, retired.ID, StockItemInput{IsActive: ptr(false)})
	require.NoError(t, err)

	base := func() MenuItemInput {
		return MenuItemInput{CategoryID: ptr(cat.ID), Name: ptr("Dish"), Price: ptr(dec("10"))}
	}
	with := func(mod func(*MenuItemInput)) MenuItemInput {
		in := base()
		mod(&in)
		return in
	}

	tests := []struct {
		name string
		in   MenuItemInput
		want error
	}{
		{"missing price", with(func(in *MenuItemInput) { in.Price = nil }), apperrors.ErrInvalidInput},
		{"zero price", with(func(in *MenuItemInput) { in.Price = ptr(dec("0")) }), apperrors.ErrInvalidInput},
		{"unknown category", with(func(in *MenuItemInput) { in.CategoryID = ptr("nope") }), apperrors.ErrNotFound},
		{"inactive category", with(func(in *MenuItemInput) { in.CategoryID = ptr(inactiveCat.ID) }), apperrors.ErrInvalidReference},
		{"foreign stock", with(func(in *MenuItemInput) {
			in.Ingredients = &[]IngredientInput{{StockItemID: foreignStock.ID, Quantity: dec("1")}}
		}), apperrors.ErrInvalidReference},
		{"inactive stock", with(func(in *MenuItemInput) {
			in.Ingredients = &[]IngredientInput{{StockItemID: retired.ID, Quantity: dec("1")}}
		}), apperrors.ErrInvalidReference},
		{"zero quantity", with(func(in *MenuItemInput) {
			in.Ingredients = &[]IngredientInput{{StockItemID: retired.ID, Quantity: dec("0")}}
		}), apperrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.menu.CreateMenuItem(f.ctx, f.tenant, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	items, err := f.menu.ListMenuItems(f.ctx, f.tenant, store.MenuItemFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListAndDeleteMenuItems(t *testing.T) {
	f := newFixture(t)
	food := f.category(f.tenant, "Food")
	drinks := f.category(f.tenant, "Drinks")
	soup := f.menuItem(f.tenant, food, "Onion soup", "18")
	f.menuItem(f.tenant, food, "Steak", "60")
	cola := f.menuItem(f.tenant, drinks, "Cola", "6")
	_, err := f.menu.UpdateMenuItem(f.ctx, f.tenant, cola.ID, MenuItemInput{IsAvailable: ptr(false)})
	require.NoError(t, err)

	byCategory, err := f.menu.ListMenuItems(f.ctx, f.tenant, store.MenuItemFilter{CategoryID: food.ID})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	available, err := f.menu.ListMenuItems(f.ctx, f.tenant, store.MenuItemFilter{IsAvailable: ptr(true)})
	require.NoError(t, err)
	assert.Len(t, available, 2)

	search, err := f.menu.ListMenuItems(f.ctx, f.tenant, store.MenuItemFilter{Search: "soup"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, soup.ID, search[0].ID)

	tab := f.openTab(f.tenant, 1)
	f.order(f.tenant, tab, OrderLine{MenuItemID: soup.ID, Quantity: 1})
	err = f.menu.DeleteMenuItem(f.ctx, f.tenant, soup.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	require.NoError(t, f.menu.DeleteMenuItem(f.ctx, f.tenant, cola.ID))
	_, err = f.menu.GetMenuItem(f.ctx, f.tenant, cola.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStockItemLifecycle(t *testing.T) {
	f := newFixture(t)
	flour := f.stockItem(f.tenant, "Flour", "5", "2")

	_, err := f.stock.UpdateStockItem(f.ctx, f.tenant, flour.ID, StockItemInput{Quantity: ptr(dec("9"))})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = f.stock.CreateStockItem(f.ctx, f.tenant, StockItemInput{Name: ptr("Salt"), Unit: ptr("kg"), Cost: ptr(dec("-1"))})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = f.stock.AdjustStock(f.ctx, f.tenant, flour.ID, dec("0"), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	f.events.reset()
	adjusted, err := f.stock.AdjustStock(f.ctx, f.tenant, flour.ID, dec("-3.5"), "spilled")
	require.NoError(t, err)
	assertDecimal(t, "1.5", adjusted.Quantity)
	assert.Equal(t, []string{"stock_low"}, f.events.names())

	low, err := f.stock.ListStockItems(f.ctx, f.tenant, true)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, flour.ID, low[0].ID)

	withHistory := f.reloadStock(f.tenant, flour.ID)
	require.Len(t, withHistory.Movements, 1)
	assert.Equal(t, models.MovementAdjustment, withHistory.Movements[0].Kind)
	assert.Equal(t, "spilled", withHistory.Movements[0].Reference)

	cat := f.category(f.tenant, "Bakery")
	f.menuItem(f.tenant, cat, "Bread", "4", ingredient{flour, "0.2"})
	_, err = f.stock.DeleteStockItem(f.ctx, f.tenant, flour.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Items with movements are deactivated and keep their history.
	yeast := f.stockItem(f.tenant, "Yeast", "1", "0")
	_, err = f.stock.AdjustStock(f.ctx, f.tenant, yeast.ID, dec("0.5"), "delivery")
	require.NoError(t, err)
	deactivated, err := f.stock.DeleteStockItem(f.ctx, f.tenant, yeast.ID)
	require.NoError(t, err)
	require.NotNil(t, deactivated)
	assert.False(t, deactivated.IsActive)
	kept, err := f.stock.GetStockItem(f.ctx, f.tenant, yeast.ID)
	require.NoError(t, err)
	assert.False(t, kept.IsActive)
	require.Len(t, kept.Movements, 1)
	assert.Equal(t, "delivery", kept.Movements[0].Reference)

	salt := f.stockItem(f.tenant, "Salt", "0", "0")
	removed, err := f.stock.DeleteStockItem(f.ctx, f.tenant, salt.ID)
	require.NoError(t, err)
	assert.Nil(t, removed)
	_, err = f.stock.GetStockItem(f.ctx, f.tenant, salt.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWaiterLifecycle(t *testing.T) {
	f := newFixture(t)
	w := f.waiter(f.tenant, "Gabi")
	assert.True(t, w.IsActive)

	_, err := f.waiters.CreateWaiter(f.ctx, f.tenant, WaiterInput{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	updated, err := f.waiters.UpdateWaiter(f.ctx, f.tenant, w.ID, WaiterInput{Phone: ptr("+55 11 99999-0000")})
	require.NoError(t, err)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "+55 11 99999-0000", *updated.Phone)

	inactive, err := f.waiters.DeactivateWaiter(f.ctx, f.tenant, w.ID)
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)

	list, err := f.waiters.ListWaiters(f.ctx, f.tenant)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsActive)

	_, err = f.waiters.GetWaiter(f.ctx, f.other, w.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
