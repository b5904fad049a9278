package repositories

import (
	"context"
	"time"

	"github.com/shipdesk/settlement-core/internal/core/domain"
)

// RemittanceRepository persists COD payout batches and their line items.
//
// Line-item mutation for a given (client, settlement date) key must be
// mutually exclusive per batch (row lock on the open batch row) so concurrent
// ingestions can neither create duplicate batches nor double-count totals.
// TotalAmount is maintained transactionally with the item rows.
type RemittanceRepository interface {
	// AddLineItem appends item to the open batch for candidate's
	// (ClientID, SettlementDate) key, creating the batch from candidate when
	// none exists. Returns apperrors.ErrAlreadyProcessed when the AWB is
	// already a line item somewhere, and apperrors.ErrDuplicate when the
	// candidate remittance number collides.
	AddLineItem(ctx context.Context, candidate domain.Remittance, item domain.RemittanceLineItem) (*domain.Remittance, error)

	// RemoveLineItem removes one AWB from a non-settled batch and returns the
	// updated batch. deleted is true when the last line item was removed and
	// the batch itself was deleted.
	RemoveLineItem(ctx context.Context, remittanceID, awb, userID string, at time.Time) (rem *domain.Remittance, deleted bool, err error)

	FindRemittanceByID(ctx context.Context, remittanceID string) (*domain.Remittance, error)

	// FindOpenRemittanceByKey returns (nil, nil) when no non-settled batch
	// exists for the key.
	FindOpenRemittanceByKey(ctx context.Context, clientID string, settlementDate time.Time) (*domain.Remittance, error)

	// UpdateRemittanceStatus performs a compare-and-set transition and reports
	// whether a row moved. A false return means the batch was not in `from`.
	UpdateRemittanceStatus(ctx context.Context, remittanceID string, from, to domain.RemittanceStatus, userID string, at time.Time) (bool, error)

	// SettleRemittance moves a PROCESSING batch to SETTLED, records the bank
	// reference, and marks every line-item shipment's payment record remitted,
	// all in one storage transaction. Reports false when the batch was not in
	// PROCESSING.
	SettleRemittance(ctx context.Context, remittanceID, bankReference, userID string, at time.Time) (bool, error)

	ListRemittancesByClient(ctx context.Context, clientID string, limit int, nextToken *string) ([]domain.Remittance, *string, error)

	// ListOverdueUpcoming returns UPCOMING batches whose settlement date is
	// strictly before the given day.
	ListOverdueUpcoming(ctx context.Context, before time.Time) ([]domain.Remittance, error)

	UpdateSettlementDate(ctx context.Context, remittanceID string, newDate time.Time, userID string, at time.Time) error
}
