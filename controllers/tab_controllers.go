package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/store"
	"github.com/yeremiapane/comanda-app/utils"
)

type TabController struct {
	Tabs    *services.TabEngine
	Exports *services.ExportService
}

func NewTabController(tabs *services.TabEngine, exports *services.ExportService) *TabController {
	return &TabController{Tabs: tabs, Exports: exports}
}

// GetAllTabs -> ?status=OPEN&waiter_id=&search=C00&from=&to=
func (tc *TabController) GetAllTabs(c *gin.Context) {
	p, err := parsePeriod(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	filter := store.TabFilter{
		Status:     models.TabStatus(c.Query("status")),
		WaiterID:   c.Query("waiter_id"),
		Search:     c.Query("search"),
		OpenedFrom: p.From,
		OpenedTo:   p.To,
	}
	tabs, err := tc.Tabs.ListTabs(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tabs", tabs)
}

func (tc *TabController) GetTab(c *gin.Context) {
	tab, err := tc.Tabs.GetTab(c.Request.Context(), tenantID(c), c.Param("tab_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tab detail", tab)
}

func (tc *TabController) OpenTab(c *gin.Context) {
	var req struct {
		TableID  string `json:"table_id" binding:"required"`
		WaiterID string `json:"waiter_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	tab, err := tc.Tabs.OpenTab(c.Request.Context(), tenantID(c), services.OpenTabInput{TableID: req.TableID, WaiterID: req.WaiterID})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Tab opened", tab)
}

// UpdateTab -> waiter, preset discount, or status CANCELLED
func (tc *TabController) UpdateTab(c *gin.Context) {
	var req struct {
		WaiterID *string           `json:"waiter_id"`
		Discount *decimal.Decimal  `json:"discount"`
		Status   *models.TabStatus `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	tab, err := tc.Tabs.UpdateTab(c.Request.Context(), tenantID(c), c.Param("tab_id"), services.UpdateTabInput{
		WaiterID: req.WaiterID,
		Discount: req.Discount,
		Status:   req.Status,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tab updated", tab)
}

// CloseTab -> {"payment_method": "PIX", "discount_type": "percentage", "discount_value": 10}
func (tc *TabController) CloseTab(c *gin.Context) {
	var req struct {
		PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required"`
		DiscountType  *models.DiscountType `json:"discount_type"`
		DiscountValue decimal.Decimal      `json:"discount_value"`
	}
	if !bindJSON(c, &req) {
		return
	}
	tab, err := tc.Tabs.CloseTab(c.Request.Context(), tenantID(c), c.Param("tab_id"), services.CloseTabInput{
		PaymentMethod: req.PaymentMethod,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tab closed", tab)
}

func (tc *TabController) CancelTab(c *gin.Context) {
	tab, err := tc.Tabs.CancelTab(c.Request.Context(), tenantID(c), c.Param("tab_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tab cancelled", tab)
}

// GetReceipt streams the PDF receipt of a closed tab.
func (tc *TabController) GetReceipt(c *gin.Context) {
	pdf, err := tc.Exports.TabReceipt(c.Request.Context(), tenantID(c), c.Param("tab_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="comanda-%s.pdf"`, c.Param("tab_id")))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
