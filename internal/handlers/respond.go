package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shipdesk/settlement-core/internal/apperrors"
)

// respondServiceError maps service-layer sentinel errors onto HTTP statuses.
// fallbackMsg is returned on unclassified errors so internals never leak.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		logger.Warn("Insufficient funds", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrAlreadyProcessed),
		errors.Is(err, apperrors.ErrInvalidStateTransition):
		logger.Warn("Conflicting request", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnavailable):
		logger.Warn("Storage busy", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMsg})
	}
}
