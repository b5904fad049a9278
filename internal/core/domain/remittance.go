package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RemittanceStatus is the settlement lifecycle state of a COD payout batch.
type RemittanceStatus string

const (
	RemittanceUpcoming   RemittanceStatus = "UPCOMING"
	RemittanceProcessing RemittanceStatus = "PROCESSING"
	RemittanceSettled    RemittanceStatus = "SETTLED"
)

// remittanceTransitions is the single source of truth for legal state moves.
// All mutators validate against it instead of comparing status strings inline.
var remittanceTransitions = map[RemittanceStatus][]RemittanceStatus{
	RemittanceUpcoming:   {RemittanceProcessing},
	RemittanceProcessing: {RemittanceSettled},
	RemittanceSettled:    {},
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
func (s RemittanceStatus) CanTransitionTo(next RemittanceStatus) bool {
	for _, allowed := range remittanceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func (s RemittanceStatus) IsTerminal() bool {
	return len(remittanceTransitions[s]) == 0
}

// RemittanceLineItem is one delivered COD shipment inside a payout batch.
type RemittanceLineItem struct {
	AWB             string          `json:"awb"`
	AmountCollected decimal.Decimal `json:"amountCollected"`
	OrderRef        string          `json:"orderRef"`
}

// Remittance is a per (client, settlement date) batch of collected COD funds
// owed to the client. TotalAmount always equals the sum of line item amounts.
// An AWB belongs to at most one non-settled remittance at a time.
type Remittance struct {
	RemittanceID     string               `json:"remittanceID"`     // Primary key (UUID)
	RemittanceNumber string               `json:"remittanceNumber"` // Unique, human-readable
	ClientID         string               `json:"clientID"`
	SettlementDate   time.Time            `json:"settlementDate"` // Date-only, UTC
	Status           RemittanceStatus     `json:"status"`
	TotalAmount      decimal.Decimal      `json:"totalAmount"`
	LineItems        []RemittanceLineItem `json:"lineItems,omitempty"`
	BankReference    string               `json:"bankReference,omitempty"` // UTR recorded at settlement
	SettledBy        string               `json:"settledBy,omitempty"`
	SettledAt        *time.Time           `json:"settledAt,omitempty"`
	AuditFields
}
