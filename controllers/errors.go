package controllers

import (
	"errors"
	"net/http"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/services"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/utils"
	"github.com/gin-gonic/gin"
)

const (
	MsgTableNotFound    = "Table not found"
	MsgTableMissing     = "Table does not exist"
	MsgSlotConflict     = "Reservation overlaps with an existing one"
	MsgDuplicateTable   = "Table with this id already exists"
	MsgInvalidInterval  = "Slot start time must be before slot end time"
	MsgBadCredentials   = "Invalid email or password"
	MsgStoreUnavailable = "Service temporarily unavailable, please retry"
	MsgInternal         = "Internal server error"
)

// statusFor maps a service error to its HTTP status and client message.
// notFound is the message used for ErrTableNotFound, which differs per route.
func statusFor(err error, notFound string) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidInterval):
		return http.StatusBadRequest, MsgInvalidInterval
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusBadRequest, MsgBadCredentials
	case errors.Is(err, services.ErrTableNotFound):
		return http.StatusNotFound, notFound
	case errors.Is(err, services.ErrSlotConflict):
		return http.StatusConflict, MsgSlotConflict
	case errors.Is(err, services.ErrDuplicateID):
		return http.StatusConflict, MsgDuplicateTable
	case errors.Is(err, services.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, MsgStoreUnavailable
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

func respondServiceError(c *gin.Context, err error, notFound string) {
	code, msg := statusFor(err, notFound)
	entry := utils.ErrorLogger.WithError(err).
		WithField("path", c.FullPath()).
		WithField("status", code)
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}
	utils.RespondMessage(c, code, msg)
}

func respondBadBody(c *gin.Context, err error) {
	utils.ErrorLogger.WithError(err).WithField("path", c.FullPath()).Warn("Invalid request body")
	utils.RespondMessage(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
}
