package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/utils"
)

const defaultNotificationLimit = 50

type NotificationController struct {
	Alerts *services.AlertMonitor
}

func NewNotificationController(alerts *services.AlertMonitor) *NotificationController {
	return &NotificationController{Alerts: alerts}
}

// GetAllNotifications -> ?limit=20
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultNotificationLimit)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	notifications, err := nc.Alerts.ListNotifications(c.Request.Context(), tenantID(c), limit)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications", notifications)
}

// CheckAlerts runs the alert checks for the caller's restaurant right away.
func (nc *NotificationController) CheckAlerts(c *gin.Context) {
	raised, err := nc.Alerts.Check(c.Request.Context(), tenantID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Alerts checked", gin.H{"raised": raised})
}
