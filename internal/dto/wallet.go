package dto

import (
	"time"

	"github.com/shipdesk/settlement-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to open a client wallet.
type CreateAccountRequest struct {
	ClientID string `json:"clientID" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// AccountResponse mirrors domain.Account.
type AccountResponse struct {
	AccountID      string          `json:"accountID"`
	ClientID       string          `json:"clientID"`
	Name           string          `json:"name"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      acc.AccountID,
		ClientID:       acc.ClientID,
		Name:           acc.Name,
		CurrentBalance: acc.CurrentBalance,
		IsActive:       acc.IsActive,
		CreatedAt:      acc.CreatedAt,
		LastUpdatedAt:  acc.LastUpdatedAt,
	}
}

// ApplyTransactionRequest defines a manual wallet mutation (operator recharge
// or adjustment). IdempotencyKey is optional but is the only hard guarantee
// against double application; callers that need exactly-once must supply it.
type ApplyTransactionRequest struct {
	AccountID        string                     `json:"accountID" binding:"required"`
	TransactionType  domain.TransactionType     `json:"transactionType" binding:"required,oneof=DEBIT CREDIT"`
	Category         domain.TransactionCategory `json:"category" binding:"required,oneof=RECHARGE MANUAL_ADJUSTMENT WEIGHT_DISCREPANCY_CHARGE WEIGHT_DISCREPANCY_REFUND"`
	Amount           decimal.Decimal            `json:"amount" binding:"required,dgt0"`
	IdempotencyKey   string                     `json:"idempotencyKey"`
	RelatedEntityRef string                     `json:"relatedEntityRef"`
}

// TransactionResponse mirrors domain.Transaction.
type TransactionResponse struct {
	TransactionID    string                     `json:"transactionID"`
	AccountID        string                     `json:"accountID"`
	TransactionType  domain.TransactionType     `json:"transactionType"`
	Category         domain.TransactionCategory `json:"category"`
	Amount           decimal.Decimal            `json:"amount"`
	OpeningBalance   decimal.Decimal            `json:"openingBalance"`
	ClosingBalance   decimal.Decimal            `json:"closingBalance"`
	IdempotencyKey   string                     `json:"idempotencyKey,omitempty"`
	RelatedEntityRef string                     `json:"relatedEntityRef,omitempty"`
	Status           domain.TransactionStatus   `json:"status"`
	CreatedAt        time.Time                  `json:"createdAt"`
	Replayed         bool                       `json:"replayed"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:    txn.TransactionID,
		AccountID:        txn.AccountID,
		TransactionType:  txn.TransactionType,
		Category:         txn.Category,
		Amount:           txn.Amount,
		OpeningBalance:   txn.OpeningBalance,
		ClosingBalance:   txn.ClosingBalance,
		IdempotencyKey:   txn.IdempotencyKey,
		RelatedEntityRef: txn.RelatedEntityRef,
		Status:           txn.Status,
		CreatedAt:        txn.CreatedAt,
		Replayed:         txn.Replayed,
	}
}

// ToTransactionResponses converts a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// ListTransactionsParams defines pagination for the wallet statement.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of the wallet statement.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
