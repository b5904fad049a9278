package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Remittance represents one COD payout batch row.
type Remittance struct {
	RemittanceID     string          `db:"remittance_id"`
	RemittanceNumber string          `db:"remittance_number"`
	ClientID         string          `db:"client_id"`
	SettlementDate   time.Time       `db:"settlement_date"`
	Status           string          `db:"status"`
	TotalAmount      decimal.Decimal `db:"total_amount"`
	BankReference    *string         `db:"bank_reference"`
	SettledBy        *string         `db:"settled_by"`
	SettledAt        *time.Time      `db:"settled_at"`
	AuditFields
}

// RemittanceItem represents one delivered COD shipment inside a batch. AWB is
// globally unique across items, so a shipment can never be queued twice.
type RemittanceItem struct {
	RemittanceID    string          `db:"remittance_id"`
	AWB             string          `db:"awb"`
	AmountCollected decimal.Decimal `db:"amount_collected"`
	OrderRef        string          `db:"order_ref"`
	CreatedAt       time.Time       `db:"created_at"`
	CreatedBy       string          `db:"created_by"`
}
