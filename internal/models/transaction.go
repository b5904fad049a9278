package models

import "github.com/shopspring/decimal"

// Transaction represents one immutable ledger entry row. Rows are inserted
// COMMITTED and never updated or deleted.
type Transaction struct {
	TransactionID    string          `db:"transaction_id"`
	AccountID        string          `db:"account_id"`
	TransactionType  string          `db:"transaction_type"`
	Category         string          `db:"category"`
	Amount           decimal.Decimal `db:"amount"`
	OpeningBalance   decimal.Decimal `db:"opening_balance"`
	ClosingBalance   decimal.Decimal `db:"closing_balance"`
	IdempotencyKey   *string         `db:"idempotency_key"` // Nullable; partial unique index
	RelatedEntityRef *string         `db:"related_entity_ref"`
	Status           string          `db:"status"`
	AuditFields
}
