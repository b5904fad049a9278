package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shipment represents one carrier shipment fact row, keyed by AWB.
type Shipment struct {
	AWB                 string          `db:"awb"`
	ClientID            string          `db:"client_id"`
	OrderRef            string          `db:"order_ref"`
	PaymentMode         string          `db:"payment_mode"`
	Status              string          `db:"status"`
	DeliveredDate       *time.Time      `db:"delivered_date"`
	CODAmount           decimal.Decimal `db:"cod_amount"`
	CODRemitted         bool            `db:"cod_remitted"`
	RemittedAt          *time.Time      `db:"remitted_at"`
	RemittanceReference *string         `db:"remittance_reference"`
	AuditFields
}
