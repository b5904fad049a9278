package mapping

import (
	"github.com/shipdesk/settlement-core/internal/core/domain"
	"github.com/shipdesk/settlement-core/internal/models"
)

// ToModelRemittance converts a domain Remittance to a model Remittance.
// Line items travel separately as RemittanceItem rows.
func ToModelRemittance(d domain.Remittance) models.Remittance {
	m := models.Remittance{
		RemittanceID:     d.RemittanceID,
		RemittanceNumber: d.RemittanceNumber,
		ClientID:         d.ClientID,
		SettlementDate:   d.SettlementDate,
		Status:           string(d.Status),
		TotalAmount:      d.TotalAmount,
		SettledAt:        d.SettledAt,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
	if d.BankReference != "" {
		m.BankReference = &d.BankReference
	}
	if d.SettledBy != "" {
		m.SettledBy = &d.SettledBy
	}
	return m
}

// ToDomainRemittance converts a model Remittance to a domain Remittance
func ToDomainRemittance(m models.Remittance) domain.Remittance {
	d := domain.Remittance{
		RemittanceID:     m.RemittanceID,
		RemittanceNumber: m.RemittanceNumber,
		ClientID:         m.ClientID,
		SettlementDate:   m.SettlementDate,
		Status:           domain.RemittanceStatus(m.Status),
		TotalAmount:      m.TotalAmount,
		SettledAt:        m.SettledAt,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
	if m.BankReference != nil {
		d.BankReference = *m.BankReference
	}
	if m.SettledBy != nil {
		d.SettledBy = *m.SettledBy
	}
	return d
}

// ToDomainRemittanceLineItem converts a model RemittanceItem to a domain line item
func ToDomainRemittanceLineItem(m models.RemittanceItem) domain.RemittanceLineItem {
	return domain.RemittanceLineItem{
		AWB:             m.AWB,
		AmountCollected: m.AmountCollected,
		OrderRef:        m.OrderRef,
	}
}
