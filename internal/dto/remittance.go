package dto

import (
	"time"

	"github.com/shipdesk/settlement-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// IngestShipmentRequest asks the batcher to pull one delivered COD shipment
// into its settlement batch.
type IngestShipmentRequest struct {
	AWB string `json:"awb" binding:"required"`
}

// SettleRemittanceRequest records the bank transfer that paid out a batch.
type SettleRemittanceRequest struct {
	BankReference string `json:"bankReference" binding:"required"`
}

// RemittanceLineItemResponse mirrors domain.RemittanceLineItem.
type RemittanceLineItemResponse struct {
	AWB             string          `json:"awb"`
	AmountCollected decimal.Decimal `json:"amountCollected"`
	OrderRef        string          `json:"orderRef"`
}

// RemittanceResponse mirrors domain.Remittance.
type RemittanceResponse struct {
	RemittanceID     string                       `json:"remittanceID"`
	RemittanceNumber string                       `json:"remittanceNumber"`
	ClientID         string                       `json:"clientID"`
	SettlementDate   time.Time                    `json:"settlementDate"`
	Status           domain.RemittanceStatus      `json:"status"`
	TotalAmount      decimal.Decimal              `json:"totalAmount"`
	LineItems        []RemittanceLineItemResponse `json:"lineItems,omitempty"`
	BankReference    string                       `json:"bankReference,omitempty"`
	SettledBy        string                       `json:"settledBy,omitempty"`
	SettledAt        *time.Time                   `json:"settledAt,omitempty"`
	CreatedAt        time.Time                    `json:"createdAt"`
}

// ToRemittanceResponse converts a domain.Remittance to RemittanceResponse.
func ToRemittanceResponse(rem *domain.Remittance) RemittanceResponse {
	items := make([]RemittanceLineItemResponse, len(rem.LineItems))
	for i, it := range rem.LineItems {
		items[i] = RemittanceLineItemResponse{
			AWB:             it.AWB,
			AmountCollected: it.AmountCollected,
			OrderRef:        it.OrderRef,
		}
	}
	return RemittanceResponse{
		RemittanceID:     rem.RemittanceID,
		RemittanceNumber: rem.RemittanceNumber,
		ClientID:         rem.ClientID,
		SettlementDate:   rem.SettlementDate,
		Status:           rem.Status,
		TotalAmount:      rem.TotalAmount,
		LineItems:        items,
		BankReference:    rem.BankReference,
		SettledBy:        rem.SettledBy,
		SettledAt:        rem.SettledAt,
		CreatedAt:        rem.CreatedAt,
	}
}

// ListRemittancesParams defines pagination for remittance listings.
type ListRemittancesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListRemittancesResponse wraps a page of remittances.
type ListRemittancesResponse struct {
	Remittances []RemittanceResponse `json:"remittances"`
	NextToken   *string              `json:"nextToken,omitempty"`
}
