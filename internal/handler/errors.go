package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"storepos/internal/billing"
	"storepos/internal/repository"
	"storepos/internal/service"
	"storepos/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, billing.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAccountDisabled):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, billing.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, billing.ErrInsufficientStock),
		errors.Is(err, billing.ErrIntegrity),
		errors.Is(err, service.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, billing.ErrCancelled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with the standard envelope. Server faults are logged
// and their details kept out of the response.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		msg = "Internal server error"
	}
	c.JSON(status, response.Error(status, msg))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, msg))
}

// actor returns the authenticated user id set by the auth middleware.
func actor(c *gin.Context) *uuid.UUID {
	return service.ParseActor(c.GetString("userID"))
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

