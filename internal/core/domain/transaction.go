package domain

import (
	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a ledger entry is a Debit or a Credit.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// TransactionCategory classifies why money moved.
type TransactionCategory string

const (
	CategoryRecharge                TransactionCategory = "RECHARGE"
	CategoryManualAdjustment        TransactionCategory = "MANUAL_ADJUSTMENT"
	CategoryWeightDiscrepancyCharge TransactionCategory = "WEIGHT_DISCREPANCY_CHARGE"
	CategoryWeightDiscrepancyRefund TransactionCategory = "WEIGHT_DISCREPANCY_REFUND"
)

// TransactionStatus is the lifecycle status of a ledger entry. Entries are only
// ever written as COMMITTED; the column exists so the log can carry voided rows
// written by migrations or support tooling without breaking the chain contract.
type TransactionStatus string

const (
	TransactionCommitted TransactionStatus = "COMMITTED"
)

// Transaction is an immutable ledger entry. Once committed it is never mutated
// or deleted. OpeningBalance and ClosingBalance snapshot the account balance
// around this entry; for two consecutively-committed entries on one account,
// the earlier ClosingBalance equals the later OpeningBalance.
type Transaction struct {
	TransactionID    string              `json:"transactionID"` // Human-traceable ref (timestamp + random suffix)
	AccountID        string              `json:"accountID"`
	TransactionType  TransactionType     `json:"transactionType"`
	Category         TransactionCategory `json:"category"`
	Amount           decimal.Decimal     `json:"amount"` // Always positive, 2-decimal rounded
	OpeningBalance   decimal.Decimal     `json:"openingBalance"`
	ClosingBalance   decimal.Decimal     `json:"closingBalance"`
	IdempotencyKey   string              `json:"idempotencyKey,omitempty"` // Empty when caller supplied none
	RelatedEntityRef string              `json:"relatedEntityRef,omitempty"`
	Status           TransactionStatus   `json:"status"`
	AuditFields

	// Replayed is set when this result is a duplicate-submission replay rather
	// than a fresh application. Not persisted.
	Replayed bool `json:"replayed,omitempty"`
}

// SignedAmount returns the balance delta of this entry: positive for credits,
// negative for debits.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.TransactionType == Debit {
		return t.Amount.Neg()
	}
	return t.Amount
}
