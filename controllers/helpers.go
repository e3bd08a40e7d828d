package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/utils"
)

const dateLayout = "2006-01-02"

func tenantID(c *gin.Context) string {
	return c.GetString(utils.CtxRestaurantID)
}

// bindJSON decodes the body into req and answers 400 when it does not fit.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return false
	}
	return true
}

// parsePeriod reads ?from=YYYY-MM-DD&to=YYYY-MM-DD. The end date is
// inclusive.
func parsePeriod(c *gin.Context) (services.Period, error) {
	var p services.Period
	if v := c.Query("from"); v != "" {
		from, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return p, apperrors.InvalidInput("from must be a date like 2024-01-31")
		}
		p.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return p, apperrors.InvalidInput("to must be a date like 2024-01-31")
		}
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		p.To = &end
	}
	return p, nil
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, apperrors.InvalidInput("%s must be true or false", key)
	}
	return &b, nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperrors.InvalidInput("%s must be a positive number", key)
	}
	return n, nil
}
