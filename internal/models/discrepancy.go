package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WeightDiscrepancy represents one carrier-reported weight mismatch row.
type WeightDiscrepancy struct {
	DiscrepancyID        string          `db:"discrepancy_id"`
	AWB                  string          `db:"awb"`
	ClientID             string          `db:"client_id"`
	OrderRef             string          `db:"order_ref"`
	ClaimedWeight        decimal.Decimal `db:"claimed_weight"`
	CarrierWeight        decimal.Decimal `db:"carrier_weight"`
	WeightDelta          decimal.Decimal `db:"weight_delta"`
	DeductionAmount      decimal.Decimal `db:"deduction_amount"`
	DisputeStatus        string          `db:"dispute_status"`
	DisputeRaisedAt      *time.Time      `db:"dispute_raised_at"`
	Resolution           string          `db:"resolution"`
	ChargeTransactionRef *string         `db:"charge_transaction_ref"`
	RefundTransactionRef *string         `db:"refund_transaction_ref"`
	AuditFields
}
