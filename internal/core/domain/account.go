package domain

import (
	"github.com/shopspring/decimal"
)

// Account is a client wallet. CurrentBalance is a cache: it must always equal
// the sum of committed transaction deltas for the account, and it is mutated
// only inside the same atomic unit that inserts the transaction row.
type Account struct {
	AccountID      string          `json:"accountID"` // Primary key (UUID)
	ClientID       string          `json:"clientID"`  // One wallet per client
	Name           string          `json:"name"`
	CurrentBalance decimal.Decimal `json:"currentBalance"` // 2-decimal precision
	IsActive       bool            `json:"isActive"`
	AuditFields
}
