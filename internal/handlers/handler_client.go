package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/shipdesk/settlement-core/internal/core/ports/services"
	"github.com/shipdesk/settlement-core/internal/dto"
	"github.com/shipdesk/settlement-core/internal/middleware"
)

// clientHandler serves client-scoped views: the wallet, remittance history and
// discrepancy history for one client.
type clientHandler struct {
	ledgerService     portssvc.LedgerSvcFacade
	remittanceService portssvc.RemittanceSvcFacade
	disputeService    portssvc.DisputeSvcFacade
}

// registerClientRoutes registers client-scoped listing routes.
func registerClientRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, remittanceService portssvc.RemittanceSvcFacade, disputeService portssvc.DisputeSvcFacade) {
	h := &clientHandler{
		ledgerService:     ledgerService,
		remittanceService: remittanceService,
		disputeService:    disputeService,
	}

	clients := rg.Group("/clients/:clientID")
	{
		clients.GET("/wallet", h.getWallet)
		clients.GET("/remittances", h.listRemittances)
		clients.GET("/discrepancies", h.listDiscrepancies)
	}
}

func (h *clientHandler) getWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("clientID")

	account, err := h.ledgerService.GetAccountByClientID(c.Request.Context(), clientID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve wallet")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *clientHandler) listRemittances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("clientID")

	var params dto.ListRemittancesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.remittanceService.ListRemittancesByClient(c.Request.Context(), clientID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list remittances")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *clientHandler) listDiscrepancies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("clientID")

	var params dto.ListDiscrepanciesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.disputeService.ListDiscrepanciesByClient(c.Request.Context(), clientID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list discrepancies")
		return
	}

	c.JSON(http.StatusOK, resp)
}
