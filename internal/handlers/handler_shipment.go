package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	portssvc "github.com/shipdesk/settlement-core/internal/core/ports/services"
	"github.com/shipdesk/settlement-core/internal/dto"
	"github.com/shipdesk/settlement-core/internal/middleware"
)

// shipmentHandler handles HTTP requests for shipment facts.
type shipmentHandler struct {
	shipmentService portssvc.ShipmentSvcFacade
}

func newShipmentHandler(ss portssvc.ShipmentSvcFacade) *shipmentHandler {
	return &shipmentHandler{shipmentService: ss}
}

// registerShipmentRoutes registers shipment fact routes.
func registerShipmentRoutes(rg *gin.RouterGroup, shipmentService portssvc.ShipmentSvcFacade) {
	h := newShipmentHandler(shipmentService)

	shipments := rg.Group("/shipments")
	{
		shipments.POST("", h.registerShipment)
		shipments.GET("/:awb", h.getShipment)
		shipments.POST("/:awb/delivered", h.markDelivered)
	}
}

func (h *shipmentHandler) registerShipment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for registerShipment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	shipment, err := h.shipmentService.RegisterShipment(c.Request.Context(), req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to register shipment")
		return
	}

	c.JSON(http.StatusCreated, dto.ToShipmentResponse(shipment))
}

func (h *shipmentHandler) getShipment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	awb := c.Param("awb")

	shipment, err := h.shipmentService.GetShipmentByAWB(c.Request.Context(), awb)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve shipment")
		return
	}

	c.JSON(http.StatusOK, dto.ToShipmentResponse(shipment))
}

func (h *shipmentHandler) markDelivered(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	awb := c.Param("awb")

	var req dto.MarkDeliveredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for markDelivered", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deliveredAt := time.Now().UTC()
	if req.DeliveredAt != nil {
		deliveredAt = *req.DeliveredAt
	}

	shipment, err := h.shipmentService.MarkDelivered(c.Request.Context(), awb, deliveredAt, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to mark shipment delivered")
		return
	}

	c.JSON(http.StatusOK, dto.ToShipmentResponse(shipment))
}
