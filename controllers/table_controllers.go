package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/utils"
)

type TableController struct {
	Tables *services.TableService
}

func NewTableController(tables *services.TableService) *TableController {
	return &TableController{Tables: tables}
}

type tableRequest struct {
	Number   *int                `json:"number"`
	Capacity *int                `json:"capacity"`
	Status   *models.TableStatus `json:"status"`
}

func (r tableRequest) input() services.TableInput {
	return services.TableInput{Number: r.Number, Capacity: r.Capacity, Status: r.Status}
}

// GetAllTables -> ?status=AVAILABLE filters by status
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Tables.ListTables(c.Request.Context(), tenantID(c), models.TableStatus(c.Query("status")))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTable(c *gin.Context) {
	table, err := tc.Tables.GetTable(c.Request.Context(), tenantID(c), c.Param("table_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

func (tc *TableController) CreateTable(c *gin.Context) {
	var req tableRequest
	if !bindJSON(c, &req) {
		return
	}
	table, err := tc.Tables.CreateTable(c.Request.Context(), tenantID(c), req.input())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": table.RestaurantID,
		"table":         table.Number,
	}).Info("New table created")
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

func (tc *TableController) UpdateTable(c *gin.Context) {
	var req tableRequest
	if !bindJSON(c, &req) {
		return
	}
	table, err := tc.Tables.UpdateTable(c.Request.Context(), tenantID(c), c.Param("table_id"), req.input())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	id := c.Param("table_id")
	if err := tc.Tables.DeleteTable(c.Request.Context(), tenantID(c), id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": id})
}
