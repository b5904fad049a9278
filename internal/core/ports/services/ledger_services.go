package services

import (
	"context"

	"github.com/shipdesk/settlement-core/internal/core/domain"
	"github.com/shipdesk/settlement-core/internal/dto"
)

// LedgerSvcFacade exposes wallet account and transaction operations.
type LedgerSvcFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	GetAccountByClientID(ctx context.Context, clientID string) (*domain.Account, error)

	// ApplyTransaction records one credit or debit. Duplicate submissions
	// (matched by idempotency key, or heuristically within the dedup window)
	// return the previously committed transaction flagged as a replay.
	ApplyTransaction(ctx context.Context, req dto.ApplyTransactionRequest, userID string) (*domain.Transaction, error)

	ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}
