package repositories

import (
	"context"
	"time"

	"github.com/shipdesk/settlement-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerRepository persists wallet accounts and their immutable transaction log.
//
// ApplyTransaction is the only write path for money: implementations must
// execute balance-read, balance-write and transaction-insert as a single atomic
// unit per account (row lock or equivalent), compute Opening/ClosingBalance
// inside that unit, and reject debits that would take the balance below zero
// with an apperrors.InsufficientFundsError.
type LedgerRepository interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	FindAccountByClientID(ctx context.Context, clientID string) (*domain.Account, error)

	// ApplyTransaction commits txn and updates the cached account balance
	// atomically. OpeningBalance/ClosingBalance on the input are ignored and
	// recomputed under the account lock.
	ApplyTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error)

	// FindTransactionByIdempotencyKey returns (nil, nil) when no committed
	// transaction carries the key for the account.
	FindTransactionByIdempotencyKey(ctx context.Context, accountID, key string) (*domain.Transaction, error)

	// FindRecentMatchingTransaction supports the best-effort fuzzy dedup
	// window: same account, rounded amount, type and category committed at or
	// after since. Returns (nil, nil) when there is no match.
	FindRecentMatchingTransaction(ctx context.Context, accountID string, amount decimal.Decimal, txnType domain.TransactionType, category domain.TransactionCategory, since time.Time) (*domain.Transaction, error)

	ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}
