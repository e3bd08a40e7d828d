package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/utils"
)

type StockController struct {
	Stock *services.StockService
}

func NewStockController(stock *services.StockService) *StockController {
	return &StockController{Stock: stock}
}

type stockItemRequest struct {
	Name        *string          `json:"name"`
	Unit        *string          `json:"unit"`
	Quantity    *decimal.Decimal `json:"quantity"`
	MinQuantity *decimal.Decimal `json:"min_quantity"`
	Cost        *decimal.Decimal `json:"cost"`
	IsActive    *bool            `json:"is_active"`
}

func (r stockItemRequest) input() services.StockItemInput {
	return services.StockItemInput{
		Name:        r.Name,
		Unit:        r.Unit,
		Quantity:    r.Quantity,
		MinQuantity: r.MinQuantity,
		Cost:        r.Cost,
		IsActive:    r.IsActive,
	}
}

// GetAllStock -> ?low=true lists only items under their minimum
func (sc *StockController) GetAllStock(c *gin.Context) {
	low, err := queryBool(c, "low")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	items, err := sc.Stock.ListStockItems(c.Request.Context(), tenantID(c), low != nil && *low)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of stock items", items)
}

func (sc *StockController) GetStockItem(c *gin.Context) {
	item, err := sc.Stock.GetStockItem(c.Request.Context(), tenantID(c), c.Param("stock_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock item detail", item)
}

func (sc *StockController) CreateStockItem(c *gin.Context) {
	var req stockItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := sc.Stock.CreateStockItem(c.Request.Context(), tenantID(c), req.input())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Stock item created", item)
}

func (sc *StockController) UpdateStockItem(c *gin.Context) {
	var req stockItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := sc.Stock.UpdateStockItem(c.Request.Context(), tenantID(c), c.Param("stock_id"), req.input())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock item updated", item)
}

// AdjustStock -> {"delta": -1.5, "reason": "spoiled"}
func (sc *StockController) AdjustStock(c *gin.Context) {
	var req struct {
		Delta  decimal.Decimal `json:"delta"`
		Reason string          `json:"reason"`
	}
	if !bindJSON(c, &req) {
		return
	}
	item, err := sc.Stock.AdjustStock(c.Request.Context(), tenantID(c), c.Param("stock_id"), req.Delta, req.Reason)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock adjusted", item)
}

func (sc *StockController) DeleteStockItem(c *gin.Context) {
	id := c.Param("stock_id")
	item, err := sc.Stock.DeleteStockItem(c.Request.Context(), tenantID(c), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if item != nil {
		utils.RespondJSON(c, http.StatusOK, "Stock item deactivated, movement history kept", item)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock item deleted", gin.H{"id": id})
}
