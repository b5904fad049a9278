package mapping

import (
	"github.com/shipdesk/settlement-core/internal/core/domain"
	"github.com/shipdesk/settlement-core/internal/models"
)

// ToModelShipment converts a domain Shipment to a model Shipment
func ToModelShipment(d domain.Shipment) models.Shipment {
	m := models.Shipment{
		AWB:           d.AWB,
		ClientID:      d.ClientID,
		OrderRef:      d.OrderRef,
		PaymentMode:   string(d.PaymentMode),
		Status:        string(d.Status),
		DeliveredDate: d.DeliveredDate,
		CODAmount:     d.CODAmount,
		CODRemitted:   d.CODRemitted,
		RemittedAt:    d.RemittedAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
	if d.RemittanceReference != "" {
		m.RemittanceReference = &d.RemittanceReference
	}
	return m
}

// ToDomainShipment converts a model Shipment to a domain Shipment
func ToDomainShipment(m models.Shipment) domain.Shipment {
	d := domain.Shipment{
		AWB:           m.AWB,
		ClientID:      m.ClientID,
		OrderRef:      m.OrderRef,
		PaymentMode:   domain.PaymentMode(m.PaymentMode),
		Status:        domain.ShipmentStatus(m.Status),
		DeliveredDate: m.DeliveredDate,
		CODAmount:     m.CODAmount,
		CODRemitted:   m.CODRemitted,
		RemittedAt:    m.RemittedAt,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
	if m.RemittanceReference != nil {
		d.RemittanceReference = *m.RemittanceReference
	}
	return d
}
