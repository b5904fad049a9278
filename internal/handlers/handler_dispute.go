package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shipdesk/settlement-core/internal/core/domain"
	portssvc "github.com/shipdesk/settlement-core/internal/core/ports/services"
	"github.com/shipdesk/settlement-core/internal/dto"
	"github.com/shipdesk/settlement-core/internal/middleware"
)

// disputeHandler handles HTTP requests for weight discrepancies and disputes.
type disputeHandler struct {
	disputeService portssvc.DisputeSvcFacade
}

func newDisputeHandler(ds portssvc.DisputeSvcFacade) *disputeHandler {
	return &disputeHandler{disputeService: ds}
}

// registerDisputeRoutes registers discrepancy and dispute routes.
func registerDisputeRoutes(rg *gin.RouterGroup, disputeService portssvc.DisputeSvcFacade) {
	h := newDisputeHandler(disputeService)

	discrepancies := rg.Group("/discrepancies")
	{
		discrepancies.POST("/import", h.importWeightFacts)
		discrepancies.GET("/:discrepancyID", h.getDiscrepancy)
		discrepancies.POST("/:discrepancyID/dispute", h.raiseDispute)
		discrepancies.POST("/:discrepancyID/resolve", h.resolveDispute)
	}
}

func (h *disputeHandler) importWeightFacts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ImportWeightFactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for importWeightFacts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result := h.disputeService.ImportWeightFacts(c.Request.Context(), req.Rows, userID)

	logger.Info("Weight fact import completed",
		slog.Int("accepted", result.Accepted),
		slog.Int("rejected", len(result.Rejected)))
	c.JSON(http.StatusOK, result)
}

func (h *disputeHandler) getDiscrepancy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	discrepancyID := c.Param("discrepancyID")

	wd, err := h.disputeService.GetDiscrepancyByID(c.Request.Context(), discrepancyID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve discrepancy")
		return
	}

	c.JSON(http.StatusOK, dto.ToDiscrepancyResponse(wd))
}

func (h *disputeHandler) raiseDispute(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	discrepancyID := c.Param("discrepancyID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wd, err := h.disputeService.RaiseDispute(c.Request.Context(), discrepancyID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to raise dispute")
		return
	}

	c.JSON(http.StatusOK, dto.ToDiscrepancyResponse(wd))
}

func (h *disputeHandler) resolveDispute(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	discrepancyID := c.Param("discrepancyID")

	var req dto.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for resolveDispute", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	outcome := domain.ResolutionRejected
	if req.Outcome == "ACCEPT" {
		outcome = domain.ResolutionAccepted
	}

	wd, err := h.disputeService.ResolveDispute(c.Request.Context(), discrepancyID, outcome, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to resolve dispute")
		return
	}

	c.JSON(http.StatusOK, dto.ToDiscrepancyResponse(wd))
}
