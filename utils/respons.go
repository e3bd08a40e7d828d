package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-app/apperrors"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// HTTPStatus maps an error kind to its response code.
func HTTPStatus(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindInvalidReference, apperrors.KindInvalidInput:
		return http.StatusBadRequest
	case apperrors.KindConflict, apperrors.KindInsufficientStock:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// RespondAppError writes err with the status code of its kind. Internal
// errors are logged and answered with a generic message.
func RespondAppError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	code := HTTPStatus(kind)
	if kind == apperrors.KindInternal {
		ErrorLogger.WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Errorf("request failed: %v", err)
		c.JSON(code, JSONResponse{Status: false, Message: "internal server error"})
		return
	}
	resp := JSONResponse{Status: false, Message: err.Error()}
	if kind == apperrors.KindInsufficientStock {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			resp.Data = gin.H{"kind": kind.String(), "item": appErr.Item}
		}
	} else {
		resp.Data = gin.H{"kind": kind.String()}
	}
	c.JSON(code, resp)
}
