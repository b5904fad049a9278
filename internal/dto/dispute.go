package dto

import (
	"time"

	"github.com/shipdesk/settlement-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// WeightFactRow is one row of the carrier reconciliation feed: the
// carrier-measured chargeable weight against the client declaration, and the
// resulting deduction. Rows arrive already parsed (spreadsheet import or the
// reconciliation topic).
type WeightFactRow struct {
	AWB             string          `json:"awb" binding:"required"`
	ClaimedWeight   decimal.Decimal `json:"claimedWeight" binding:"required"`
	CarrierWeight   decimal.Decimal `json:"carrierWeight" binding:"required"`
	DeductionAmount decimal.Decimal `json:"deductionAmount"`
	ReportDate      *time.Time      `json:"reportDate"`
}

// ImportWeightFactsRequest carries a batch of reconciliation rows.
type ImportWeightFactsRequest struct {
	Rows []WeightFactRow `json:"rows" binding:"required,min=1,dive"`
}

// WeightFactRejection explains why one row of a batch was not ingested.
type WeightFactRejection struct {
	AWB    string `json:"awb"`
	Reason string `json:"reason"`
}

// ImportWeightFactsResult summarizes a batch ingestion. Row-level failures do
// not abort the batch.
type ImportWeightFactsResult struct {
	Accepted   int                   `json:"accepted"`
	Rejected   []WeightFactRejection `json:"rejected,omitempty"`
	ChargedIDs []string              `json:"chargedIDs,omitempty"`
}

// ResolveDisputeRequest records an operator decision on a raised dispute.
type ResolveDisputeRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=ACCEPT REJECT"`
}

// DiscrepancyResponse mirrors domain.WeightDiscrepancy.
type DiscrepancyResponse struct {
	DiscrepancyID        string                   `json:"discrepancyID"`
	AWB                  string                   `json:"awb"`
	ClientID             string                   `json:"clientID"`
	OrderRef             string                   `json:"orderRef"`
	ClaimedWeight        decimal.Decimal          `json:"claimedWeight"`
	CarrierWeight        decimal.Decimal          `json:"carrierWeight"`
	WeightDelta          decimal.Decimal          `json:"weightDelta"`
	DeductionAmount      decimal.Decimal          `json:"deductionAmount"`
	DisputeStatus        domain.DisputeStatus     `json:"disputeStatus"`
	DisputeRaisedAt      *time.Time               `json:"disputeRaisedAt,omitempty"`
	Resolution           domain.DisputeResolution `json:"resolution"`
	ChargeTransactionRef string                   `json:"chargeTransactionRef,omitempty"`
	RefundTransactionRef string                   `json:"refundTransactionRef,omitempty"`
	CreatedAt            time.Time                `json:"createdAt"`
}

// ToDiscrepancyResponse converts a domain.WeightDiscrepancy to DiscrepancyResponse.
func ToDiscrepancyResponse(wd *domain.WeightDiscrepancy) DiscrepancyResponse {
	return DiscrepancyResponse{
		DiscrepancyID:        wd.DiscrepancyID,
		AWB:                  wd.AWB,
		ClientID:             wd.ClientID,
		OrderRef:             wd.OrderRef,
		ClaimedWeight:        wd.ClaimedWeight,
		CarrierWeight:        wd.CarrierWeight,
		WeightDelta:          wd.WeightDelta,
		DeductionAmount:      wd.DeductionAmount,
		DisputeStatus:        wd.DisputeStatus,
		DisputeRaisedAt:      wd.DisputeRaisedAt,
		Resolution:           wd.Resolution,
		ChargeTransactionRef: wd.ChargeTransactionRef,
		RefundTransactionRef: wd.RefundTransactionRef,
		CreatedAt:            wd.CreatedAt,
	}
}

// ListDiscrepanciesParams defines pagination for discrepancy listings.
type ListDiscrepanciesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListDiscrepanciesResponse wraps a page of discrepancies.
type ListDiscrepanciesResponse struct {
	Discrepancies []DiscrepancyResponse `json:"discrepancies"`
	NextToken     *string               `json:"nextToken,omitempty"`
}
