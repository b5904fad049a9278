package dto

import (
	"time"

	"github.com/shipdesk/settlement-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RegisterShipmentRequest records a shipment fact from the carrier boundary.
type RegisterShipmentRequest struct {
	AWB         string                `json:"awb" binding:"required"`
	ClientID    string                `json:"clientID" binding:"required"`
	OrderRef    string                `json:"orderRef"`
	PaymentMode domain.PaymentMode    `json:"paymentMode" binding:"required,oneof=COD PREPAID"`
	Status      domain.ShipmentStatus `json:"status" binding:"omitempty,oneof=IN_TRANSIT DELIVERED RTO"`
	CODAmount   decimal.Decimal       `json:"codAmount"`
	DeliveredAt *time.Time            `json:"deliveredAt"`
}

// MarkDeliveredRequest stamps a carrier-reported delivery.
type MarkDeliveredRequest struct {
	DeliveredAt *time.Time `json:"deliveredAt"`
}

// ShipmentResponse mirrors domain.Shipment.
type ShipmentResponse struct {
	AWB                 string                `json:"awb"`
	ClientID            string                `json:"clientID"`
	OrderRef            string                `json:"orderRef"`
	PaymentMode         domain.PaymentMode    `json:"paymentMode"`
	Status              domain.ShipmentStatus `json:"status"`
	DeliveredDate       *time.Time            `json:"deliveredDate,omitempty"`
	CODAmount           decimal.Decimal       `json:"codAmount"`
	CODRemitted         bool                  `json:"codRemitted"`
	RemittedAt          *time.Time            `json:"remittedAt,omitempty"`
	RemittanceReference string                `json:"remittanceReference,omitempty"`
}

// ToShipmentResponse converts a domain.Shipment to ShipmentResponse.
func ToShipmentResponse(s *domain.Shipment) ShipmentResponse {
	return ShipmentResponse{
		AWB:                 s.AWB,
		ClientID:            s.ClientID,
		OrderRef:            s.OrderRef,
		PaymentMode:         s.PaymentMode,
		Status:              s.Status,
		DeliveredDate:       s.DeliveredDate,
		CODAmount:           s.CODAmount,
		CODRemitted:         s.CODRemitted,
		RemittedAt:          s.RemittedAt,
		RemittanceReference: s.RemittanceReference,
	}
}
