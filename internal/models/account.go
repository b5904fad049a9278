package models

import (
	"github.com/shopspring/decimal"
)

// Account represents a client wallet row.
type Account struct {
	AccountID      string          `db:"account_id"`
	ClientID       string          `db:"client_id"`
	Name           string          `db:"name"`
	CurrentBalance decimal.Decimal `db:"current_balance"`
	IsActive       bool            `db:"is_active"`
	AuditFields
}
