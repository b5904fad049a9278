package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMode is how the end customer pays for a shipment.
type PaymentMode string

const (
	PaymentCOD     PaymentMode = "COD"
	PaymentPrepaid PaymentMode = "PREPAID"
)

// ShipmentStatus is the carrier-reported delivery status.
type ShipmentStatus string

const (
	ShipmentInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentDelivered ShipmentStatus = "DELIVERED"
	ShipmentRTO       ShipmentStatus = "RTO"
)

// Shipment is the durable projection of carrier shipment facts consumed by the
// remittance batcher and the dispute resolver. The carrier integration itself
// lives outside this service; it only reports facts.
type Shipment struct {
	AWB                 string          `json:"awb"` // Carrier waybill, primary key
	ClientID            string          `json:"clientID"`
	OrderRef            string          `json:"orderRef"`
	PaymentMode         PaymentMode     `json:"paymentMode"`
	Status              ShipmentStatus  `json:"status"`
	DeliveredDate       *time.Time      `json:"deliveredDate,omitempty"`
	CODAmount           decimal.Decimal `json:"codAmount"`
	CODRemitted         bool            `json:"codRemitted"`
	RemittedAt          *time.Time      `json:"remittedAt,omitempty"`
	RemittanceReference string          `json:"remittanceReference,omitempty"` // Bank UTR stamped at settlement
	AuditFields
}
