package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminController serves the dashboard and the sales reports.
type AdminController struct {
	Reports *services.ReportService
	Exports *services.ExportService
}

func NewAdminController(reports *services.ReportService, exports *services.ExportService) *AdminController {
	return &AdminController{Reports: reports, Exports: exports}
}

func (ac *AdminController) GetDashboard(c *gin.Context) {
	d, err := ac.Reports.Dashboard(c.Request.Context(), tenantID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard", d)
}

// GetSalesReport -> ?from=2024-01-01&to=2024-01-31
func (ac *AdminController) GetSalesReport(c *gin.Context) {
	p, err := parsePeriod(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	r, err := ac.Reports.SalesReport(c.Request.Context(), tenantID(c), p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sales report", r)
}

// GetProductsReport -> ?from=&to=&category_id=
func (ac *AdminController) GetProductsReport(c *gin.Context) {
	p, err := parsePeriod(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	r, err := ac.Reports.ProductsReport(c.Request.Context(), tenantID(c), p, c.Query("category_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Products report", r)
}

func (ac *AdminController) GetWaitersReport(c *gin.Context) {
	p, err := parsePeriod(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	r, err := ac.Reports.WaitersReport(c.Request.Context(), tenantID(c), p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Waiters report", r)
}

// ExportSales downloads the sales report as a workbook.
func (ac *AdminController) ExportSales(c *gin.Context) {
	p, err := parsePeriod(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	data, err := ac.Exports.SalesWorkbook(c.Request.Context(), tenantID(c), p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	name := fmt.Sprintf("vendas-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, data)
}
