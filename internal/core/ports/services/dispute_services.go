package services

import (
	"context"
	"time"

	"github.com/shipdesk/settlement-core/internal/core/domain"
	"github.com/shipdesk/settlement-core/internal/dto"
)

// DisputeSvcFacade ingests carrier weight facts and manages the dispute
// lifecycle of the resulting discrepancies.
type DisputeSvcFacade interface {
	// IngestWeightFact records one carrier-reported mismatch and atomically
	// debits the deduction from the client wallet.
	IngestWeightFact(ctx context.Context, row dto.WeightFactRow, userID string) (*domain.WeightDiscrepancy, error)

	// ImportWeightFacts ingests a batch of reconciliation rows; row failures
	// are collected, not fatal.
	ImportWeightFacts(ctx context.Context, rows []dto.WeightFactRow, userID string) *dto.ImportWeightFactsResult

	RaiseDispute(ctx context.Context, discrepancyID, userID string) (*domain.WeightDiscrepancy, error)
	ResolveDispute(ctx context.Context, discrepancyID string, outcome domain.DisputeResolution, userID string) (*domain.WeightDiscrepancy, error)

	// ExpireStaleDisputes finalizes disputes raised more than olderThan ago
	// with resolution EXPIRED; the charge stands. Idempotent.
	ExpireStaleDisputes(ctx context.Context, olderThan time.Duration, userID string) (int64, error)

	GetDiscrepancyByID(ctx context.Context, discrepancyID string) (*domain.WeightDiscrepancy, error)
	ListDiscrepanciesByClient(ctx context.Context, clientID string, params dto.ListDiscrepanciesParams) (*dto.ListDiscrepanciesResponse, error)
}
