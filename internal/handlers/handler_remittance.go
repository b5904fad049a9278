package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/shipdesk/settlement-core/internal/core/ports/services"
	"github.com/shipdesk/settlement-core/internal/dto"
	"github.com/shipdesk/settlement-core/internal/middleware"
)

// remittanceHandler handles HTTP requests for COD payout batches.
type remittanceHandler struct {
	remittanceService portssvc.RemittanceSvcFacade
}

func newRemittanceHandler(rs portssvc.RemittanceSvcFacade) *remittanceHandler {
	return &remittanceHandler{remittanceService: rs}
}

// registerRemittanceRoutes registers remittance lifecycle routes.
func registerRemittanceRoutes(rg *gin.RouterGroup, remittanceService portssvc.RemittanceSvcFacade) {
	h := newRemittanceHandler(remittanceService)

	remittances := rg.Group("/remittances")
	{
		remittances.POST("/ingest", h.ingestShipment)
		remittances.GET("/:remittanceID", h.getRemittance)
		remittances.POST("/:remittanceID/processing", h.markProcessing)
		remittances.POST("/:remittanceID/settle", h.settle)
		remittances.DELETE("/:remittanceID/items/:awb", h.removeLineItem)
	}
}

func (h *remittanceHandler) ingestShipment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.IngestShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ingestShipment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rem, err := h.remittanceService.IngestEligibleShipment(c.Request.Context(), req.AWB, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to ingest shipment into remittance")
		return
	}

	c.JSON(http.StatusOK, dto.ToRemittanceResponse(rem))
}

func (h *remittanceHandler) getRemittance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	remittanceID := c.Param("remittanceID")

	rem, err := h.remittanceService.GetRemittanceByID(c.Request.Context(), remittanceID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve remittance")
		return
	}

	c.JSON(http.StatusOK, dto.ToRemittanceResponse(rem))
}

func (h *remittanceHandler) markProcessing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	remittanceID := c.Param("remittanceID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rem, err := h.remittanceService.MarkProcessing(c.Request.Context(), remittanceID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to mark remittance processing")
		return
	}

	c.JSON(http.StatusOK, dto.ToRemittanceResponse(rem))
}

func (h *remittanceHandler) settle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	remittanceID := c.Param("remittanceID")

	var req dto.SettleRemittanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for settle", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rem, err := h.remittanceService.Settle(c.Request.Context(), remittanceID, req.BankReference, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to settle remittance")
		return
	}

	c.JSON(http.StatusOK, dto.ToRemittanceResponse(rem))
}

func (h *remittanceHandler) removeLineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	remittanceID := c.Param("remittanceID")
	awb := c.Param("awb")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rem, deleted, err := h.remittanceService.RemoveLineItem(c.Request.Context(), remittanceID, awb, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to remove line item")
		return
	}

	if deleted {
		c.JSON(http.StatusOK, gin.H{"deleted": true})
		return
	}
	c.JSON(http.StatusOK, dto.ToRemittanceResponse(rem))
}
