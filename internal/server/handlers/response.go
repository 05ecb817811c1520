// Package handlers is the HTTP boundary: request binding, identity
// plumbing, and translation of service errors into status codes. No
// business rules live here.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"materiaux-pro/internal/apperr"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

var kindToStatus = map[apperr.Kind]int{
	apperr.Validation:   http.StatusBadRequest,
	apperr.Unauthorized: http.StatusUnauthorized,
	apperr.Forbidden:    http.StatusForbidden,
	apperr.NotFound:     http.StatusNotFound,
	apperr.Conflict:     http.StatusConflict,
}

// respondError maps a service error to HTTP. Errors without a known kind
// are logged and answered with a generic 500; their text never reaches
// the caller.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status, ok := kindToStatus[kind]
	if !ok {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("unhandled error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	c.JSON(status, errorResponse(err.Error()))
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("invalid "+name))
		return 0, false
	}
	return id, true
}
