package mapping

import (
	"github.com/shipdesk/settlement-core/internal/core/domain"
	"github.com/shipdesk/settlement-core/internal/models"
)

// ToModelWeightDiscrepancy converts a domain WeightDiscrepancy to a model WeightDiscrepancy
func ToModelWeightDiscrepancy(d domain.WeightDiscrepancy) models.WeightDiscrepancy {
	m := models.WeightDiscrepancy{
		DiscrepancyID:   d.DiscrepancyID,
		AWB:             d.AWB,
		ClientID:        d.ClientID,
		OrderRef:        d.OrderRef,
		ClaimedWeight:   d.ClaimedWeight,
		CarrierWeight:   d.CarrierWeight,
		WeightDelta:     d.WeightDelta,
		DeductionAmount: d.DeductionAmount,
		DisputeStatus:   string(d.DisputeStatus),
		DisputeRaisedAt: d.DisputeRaisedAt,
		Resolution:      string(d.Resolution),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
	if d.ChargeTransactionRef != "" {
		m.ChargeTransactionRef = &d.ChargeTransactionRef
	}
	if d.RefundTransactionRef != "" {
		m.RefundTransactionRef = &d.RefundTransactionRef
	}
	return m
}

// ToDomainWeightDiscrepancy converts a model WeightDiscrepancy to a domain WeightDiscrepancy
func ToDomainWeightDiscrepancy(m models.WeightDiscrepancy) domain.WeightDiscrepancy {
	d := domain.WeightDiscrepancy{
		DiscrepancyID:   m.DiscrepancyID,
		AWB:             m.AWB,
		ClientID:        m.ClientID,
		OrderRef:        m.OrderRef,
		ClaimedWeight:   m.ClaimedWeight,
		CarrierWeight:   m.CarrierWeight,
		WeightDelta:     m.WeightDelta,
		DeductionAmount: m.DeductionAmount,
		DisputeStatus:   domain.DisputeStatus(m.DisputeStatus),
		DisputeRaisedAt: m.DisputeRaisedAt,
		Resolution:      domain.DisputeResolution(m.Resolution),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
	if m.ChargeTransactionRef != nil {
		d.ChargeTransactionRef = *m.ChargeTransactionRef
	}
	if m.RefundTransactionRef != nil {
		d.RefundTransactionRef = *m.RefundTransactionRef
	}
	return d
}
