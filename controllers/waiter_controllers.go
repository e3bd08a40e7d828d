package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/utils"
)

type WaiterController struct {
	Waiters *services.WaiterService
}

func NewWaiterController(waiters *services.WaiterService) *WaiterController {
	return &WaiterController{Waiters: waiters}
}

type waiterRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	TaxID    *string `json:"tax_id"`
	IsActive *bool   `json:"is_active"`
}

func (r waiterRequest) input() services.WaiterInput {
	return services.WaiterInput{Name: r.Name, Phone: r.Phone, TaxID: r.TaxID, IsActive: r.IsActive}
}

func (wc *WaiterController) GetAllWaiters(c *gin.Context) {
	waiters, err := wc.Waiters.ListWaiters(c.Request.Context(), tenantID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of waiters", waiters)
}

func (wc *WaiterController) GetWaiter(c *gin.Context) {
	waiter, err := wc.Waiters.GetWaiter(c.Request.Context(), tenantID(c), c.Param("waiter_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Waiter detail", waiter)
}

func (wc *WaiterController) CreateWaiter(c *gin.Context) {
	var req waiterRequest
	if !bindJSON(c, &req) {
		return
	}
	waiter, err := wc.Waiters.CreateWaiter(c.Request.Context(), tenantID(c), req.input())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Waiter created", waiter)
}

func (wc *WaiterController) UpdateWaiter(c *gin.Context) {
	var req waiterRequest
	if !bindJSON(c, &req) {
		return
	}
	waiter, err := wc.Waiters.UpdateWaiter(c.Request.Context(), tenantID(c), c.Param("waiter_id"), req.input())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Waiter updated", waiter)
}

// DeactivateWaiter -> DELETE keeps the row for the tab history
func (wc *WaiterController) DeactivateWaiter(c *gin.Context) {
	waiter, err := wc.Waiters.DeactivateWaiter(c.Request.Context(), tenantID(c), c.Param("waiter_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Waiter deactivated", waiter)
}
