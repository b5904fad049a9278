package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/shipdesk/settlement-core/internal/core/ports/services"
	"github.com/shipdesk/settlement-core/internal/dto"
	"github.com/shipdesk/settlement-core/internal/middleware"
)

// walletHandler handles HTTP requests for client wallets and the transaction log.
type walletHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newWalletHandler(ls portssvc.LedgerSvcFacade) *walletHandler {
	return &walletHandler{ledgerService: ls}
}

// registerWalletRoutes registers wallet and ledger routes.
func registerWalletRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newWalletHandler(ledgerService)

	wallets := rg.Group("/wallets")
	{
		wallets.POST("", h.createWallet)
		wallets.GET("/:accountID", h.getWallet)
		wallets.GET("/:accountID/transactions", h.listTransactions)
		wallets.POST("/transactions", h.applyTransaction)
	}
}

func (h *walletHandler) createWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createWallet", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.ledgerService.CreateAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create wallet")
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *walletHandler) getWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	account, err := h.ledgerService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve wallet")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *walletHandler) applyTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ApplyTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for applyTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.ledgerService.ApplyTransaction(c.Request.Context(), req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to apply transaction")
		return
	}

	// A replay returns the originally committed transaction, not a new one.
	status := http.StatusCreated
	if txn.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, dto.ToTransactionResponse(txn))
}

func (h *walletHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.ledgerService.ListTransactions(c.Request.Context(), accountID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, resp)
}
