package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisputeStatus is the dispute lifecycle state of a weight discrepancy.
type DisputeStatus string

const (
	DisputeNew       DisputeStatus = "NEW"
	DisputeDisputed  DisputeStatus = "DISPUTED"
	DisputeFinalized DisputeStatus = "FINALIZED"
)

// DisputeResolution records how a finalized discrepancy was closed.
type DisputeResolution string

const (
	ResolutionNone     DisputeResolution = "NONE"
	ResolutionAccepted DisputeResolution = "ACCEPTED"
	ResolutionRejected DisputeResolution = "REJECTED"
	ResolutionExpired  DisputeResolution = "EXPIRED"
)

// disputeTransitions is the single source of truth for legal state moves.
var disputeTransitions = map[DisputeStatus][]DisputeStatus{
	DisputeNew:       {DisputeDisputed, DisputeFinalized},
	DisputeDisputed:  {DisputeFinalized},
	DisputeFinalized: {},
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
func (s DisputeStatus) CanTransitionTo(next DisputeStatus) bool {
	for _, allowed := range disputeTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func (s DisputeStatus) IsTerminal() bool {
	return len(disputeTransitions[s]) == 0
}

// WeightDiscrepancy is a carrier-reported mismatch between the client-declared
// and carrier-measured chargeable weight for one AWB. At most one exists per
// AWB. The deduction is charged via exactly one ledger transaction at creation;
// an accepted dispute refunds it via exactly one additional transaction. Once
// finalized the record is immutable.
type WeightDiscrepancy struct {
	DiscrepancyID        string            `json:"discrepancyID"` // Primary key (UUID)
	AWB                  string            `json:"awb"`
	ClientID             string            `json:"clientID"`
	OrderRef             string            `json:"orderRef"`
	ClaimedWeight        decimal.Decimal   `json:"claimedWeight"` // kg, client-declared
	CarrierWeight        decimal.Decimal   `json:"carrierWeight"` // kg, carrier-measured
	WeightDelta          decimal.Decimal   `json:"weightDelta"`
	DeductionAmount      decimal.Decimal   `json:"deductionAmount"`
	DisputeStatus        DisputeStatus     `json:"disputeStatus"`
	DisputeRaisedAt      *time.Time        `json:"disputeRaisedAt,omitempty"`
	Resolution           DisputeResolution `json:"resolution"`
	ChargeTransactionRef string            `json:"chargeTransactionRef,omitempty"`
	RefundTransactionRef string            `json:"refundTransactionRef,omitempty"`
	AuditFields
}
