package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/store"
	"github.com/yeremiapane/comanda-app/utils"
)

type MenuController struct {
	Menu *services.MenuService
}

func NewMenuController(menu *services.MenuService) *MenuController {
	return &MenuController{Menu: menu}
}

type ingredientRequest struct {
	StockItemID string          `json:"stock_item_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
}

type menuItemRequest struct {
	CategoryID      *string              `json:"category_id"`
	Name            *string              `json:"name"`
	Description     *string              `json:"description"`
	Price           *decimal.Decimal     `json:"price"`
	Image           *string              `json:"image"`
	IsAvailable     *bool                `json:"is_available"`
	PreparationTime *int                 `json:"preparation_time"`
	Ingredients     *[]ingredientRequest `json:"ingredients" binding:"omitempty,dive"`
}

func (r menuItemRequest) input() services.MenuItemInput {
	in := services.MenuItemInput{
		CategoryID:      r.CategoryID,
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		Image:           r.Image,
		IsAvailable:     r.IsAvailable,
		PreparationTime: r.PreparationTime,
	}
	if r.Ingredients != nil {
		ings := make([]services.IngredientInput, 0, len(*r.Ingredients))
		for _, ing := range *r.Ingredients {
			ings = append(ings, services.IngredientInput{StockItemID: ing.StockItemID, Quantity: ing.Quantity})
		}
		in.Ingredients = &ings
	}
	return in
}

// GetAllMenus -> ?category_id=&available=true&search=
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	available, err := queryBool(c, "available")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	filter := store.MenuItemFilter{
		CategoryID:  c.Query("category_id"),
		IsAvailable: available,
		Search:      c.Query("search"),
	}
	items, err := mc.Menu.ListMenuItems(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

func (mc *MenuController) GetMenuByID(c *gin.Context) {
	item, err := mc.Menu.GetMenuItem(c.Request.Context(), tenantID(c), c.Param("menu_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req menuItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := mc.Menu.CreateMenuItem(c.Request.Context(), tenantID(c), req.input())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.InfoLogger.WithField("restaurant_id", item.RestaurantID).Infof("Menu item created: %s", item.Name)
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// UpdateMenu -> an "ingredients" array replaces the whole recipe
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	var req menuItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := mc.Menu.UpdateMenuItem(c.Request.Context(), tenantID(c), c.Param("menu_id"), req.input())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id := c.Param("menu_id")
	if err := mc.Menu.DeleteMenuItem(c.Request.Context(), tenantID(c), id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", gin.H{"id": id})
}
