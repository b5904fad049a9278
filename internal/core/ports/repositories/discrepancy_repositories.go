package repositories

import (
	"context"
	"time"

	"github.com/shipdesk/settlement-core/internal/core/domain"
)

// DiscrepancyRepository persists weight discrepancies. Operations on a given
// AWB's record are mutually exclusive (unique AWB constraint plus row lock),
// and the monetary side effects share one storage transaction with the record
// mutation so a discrepancy can never exist without its charge or an accepted
// resolution without its refund.
type DiscrepancyRepository interface {
	// SaveDiscrepancyWithCharge inserts wd and, when charge is non-nil,
	// commits the deduction through the ledger in the same storage
	// transaction. Returns apperrors.ErrAlreadyProcessed when the AWB already
	// has a discrepancy.
	SaveDiscrepancyWithCharge(ctx context.Context, wd domain.WeightDiscrepancy, charge *domain.Transaction) (*domain.Transaction, error)

	FindDiscrepancyByID(ctx context.Context, discrepancyID string) (*domain.WeightDiscrepancy, error)

	// FindDiscrepancyByAWB returns (nil, nil) when the AWB has no record.
	FindDiscrepancyByAWB(ctx context.Context, awb string) (*domain.WeightDiscrepancy, error)

	// MarkDisputed performs a compare-and-set NEW -> DISPUTED transition and
	// reports whether a row moved.
	MarkDisputed(ctx context.Context, discrepancyID string, raisedAt time.Time, userID string) (bool, error)

	// FinalizeDiscrepancy performs a compare-and-set DISPUTED -> FINALIZED
	// transition with the given resolution and, when refund is non-nil,
	// commits the refund through the ledger in the same storage transaction.
	// moved is false (and no money moves) when the record was not DISPUTED.
	FinalizeDiscrepancy(ctx context.Context, discrepancyID string, resolution domain.DisputeResolution, refund *domain.Transaction, userID string, at time.Time) (refunded *domain.Transaction, moved bool, err error)

	// ExpireStaleDisputes finalizes every DISPUTED record raised before cutoff
	// with resolution EXPIRED and returns the number of rows moved. The guard
	// predicate lives in storage, so repeated runs are no-ops.
	ExpireStaleDisputes(ctx context.Context, cutoff time.Time, userID string, at time.Time) (int64, error)

	ListDiscrepanciesByClient(ctx context.Context, clientID string, limit int, nextToken *string) ([]domain.WeightDiscrepancy, *string, error)
}
