package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "gatepass/internal/errors"
	"gatepass/internal/models"
	"gatepass/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// caller returns the authenticated account set by the auth middleware
func caller(c *gin.Context) (models.AccountID, bool) {
	account, ok := models.AccountFromContext(c.Request.Context())
	if !ok || account.IsZero() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return account, true
}

// statusFor maps a domain failure to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrInvalidEvent),
		errors.Is(err, apperrors.ErrUnknownTicket):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrSoldOut),
		errors.Is(err, apperrors.ErrAlreadyResold),
		errors.Is(err, apperrors.ErrTransfersDisabled),
		errors.Is(err, apperrors.ErrNothingToWithdraw),
		errors.Is(err, apperrors.ErrOwnershipMismatch),
		errors.Is(err, apperrors.ErrReentrantCall):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrPayoutFailed),
		errors.Is(err, apperrors.ErrRefundFailed):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// fail logs a domain failure and writes the mapped status
func (h *Handlers) fail(c *gin.Context, err error, msg string) {
	slog.Error(msg, "error", err, "path", c.Request.URL.Path)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
