package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/store"
	"github.com/yeremiapane/comanda-app/utils"
)

type OrderController struct {
	Orders *services.OrderEngine
}

func NewOrderController(orders *services.OrderEngine) *OrderController {
	return &OrderController{Orders: orders}
}

type orderLineRequest struct {
	MenuItemID string  `json:"menu_item_id" binding:"required"`
	Quantity   int     `json:"quantity" binding:"required,min=1"`
	Notes      *string `json:"notes"`
}

type statusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// CreateOrder -> adds an order to an open tab
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req struct {
		TabID string             `json:"tab_id" binding:"required"`
		Items []orderLineRequest `json:"items" binding:"required,min=1,dive"`
		Notes *string            `json:"notes"`
	}
	if !bindJSON(c, &req) {
		return
	}

	in := services.CreateOrderInput{TabID: req.TabID, Notes: req.Notes}
	for _, item := range req.Items {
		in.Items = append(in.Items, services.OrderLine{MenuItemID: item.MenuItemID, Quantity: item.Quantity, Notes: item.Notes})
	}
	order, err := oc.Orders.CreateOrder(c.Request.Context(), tenantID(c), in)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetAllOrders -> ?status=PENDING&tab_id=&from=&to=
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	p, err := parsePeriod(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	filter := store.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		TabID:  c.Query("tab_id"),
		From:   p.From,
		To:     p.To,
	}
	orders, err := oc.Orders.ListOrders(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	order, err := oc.Orders.GetOrder(c.Request.Context(), tenantID(c), c.Param("order_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderStatus moves every open item of the order at once.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oc.Orders.SetOrderStatus(c.Request.Context(), tenantID(c), c.Param("order_id"), req.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

func (oc *OrderController) UpdateItemStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oc.Orders.SetItemStatus(c.Request.Context(), tenantID(c), c.Param("order_id"), c.Param("item_id"), req.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item status updated", order)
}

func (oc *OrderController) CancelOrder(c *gin.Context) {
	order, err := oc.Orders.CancelOrder(c.Request.Context(), tenantID(c), c.Param("order_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", order)
}

// GetKitchenDisplay -> orders still being worked on, oldest first
func (oc *OrderController) GetKitchenDisplay(c *gin.Context) {
	orders, err := oc.Orders.KitchenQueue(c.Request.Context(), tenantID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen queue", orders)
}
