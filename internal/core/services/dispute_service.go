package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shipdesk/settlement-core/internal/apperrors"
	"github.com/shipdesk/settlement-core/internal/core/domain"
	portsrepo "github.com/shipdesk/settlement-core/internal/core/ports/repositories"
	portssvc "github.com/shipdesk/settlement-core/internal/core/ports/services"
	"github.com/shipdesk/settlement-core/internal/dto"
	"github.com/shipdesk/settlement-core/internal/middleware"
	"github.com/shipdesk/settlement-core/internal/utils"
	"github.com/shopspring/decimal"
)

var (
	// ErrNoChargeableDiscrepancy enforces the business invariant that a
	// discrepancy charge is only valid when the carrier-measured chargeable
	// weight exceeds the client declaration.
	ErrNoChargeableDiscrepancy = fmt.Errorf("%w: carrier weight must exceed claimed weight", apperrors.ErrValidation)

	ErrAlreadyDisputed  = fmt.Errorf("%w: dispute already raised", apperrors.ErrInvalidStateTransition)
	ErrAlreadyFinalized = fmt.Errorf("%w: discrepancy already finalized", apperrors.ErrInvalidStateTransition)
	ErrUnknownOutcome   = fmt.Errorf("%w: outcome must be ACCEPTED or REJECTED", apperrors.ErrValidation)
)

// DefaultDisputeWindow is how long a raised dispute may stay open before the
// scheduler expires it with the charge standing.
const DefaultDisputeWindow = 7 * 24 * time.Hour

// disputeService ingests carrier weight facts, charges the deduction, and
// manages the dispute window and resolution of the resulting discrepancies.
type disputeService struct {
	discrepancyRepo portsrepo.DiscrepancyRepository
	shipmentRepo    portsrepo.ShipmentRepository
	ledgerRepo      portsrepo.LedgerRepository
}

// NewDisputeService creates a new dispute service.
func NewDisputeService(discrepancyRepo portsrepo.DiscrepancyRepository, shipmentRepo portsrepo.ShipmentRepository, ledgerRepo portsrepo.LedgerRepository) portssvc.DisputeSvcFacade {
	return &disputeService{
		discrepancyRepo: discrepancyRepo,
		shipmentRepo:    shipmentRepo,
		ledgerRepo:      ledgerRepo,
	}
}

var _ portssvc.DisputeSvcFacade = (*disputeService)(nil)

// IngestWeightFact records one carrier-reported weight mismatch. The record
// and its deduction debit commit in one atomic unit: an insufficient-funds
// rejection leaves no discrepancy behind. A non-positive deduction creates the
// record without a charge.
func (s *disputeService) IngestWeightFact(ctx context.Context, row dto.WeightFactRow, userID string) (*domain.WeightDiscrepancy, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if row.ClaimedWeight.LessThan(decimal.Zero) || row.CarrierWeight.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: weights must be positive for awb %s", apperrors.ErrValidation, row.AWB)
	}
	if row.CarrierWeight.LessThanOrEqual(row.ClaimedWeight) {
		return nil, fmt.Errorf("%w: awb %s (claimed %s, carrier %s)", ErrNoChargeableDiscrepancy, row.AWB, row.ClaimedWeight, row.CarrierWeight)
	}

	existing, err := s.discrepancyRepo.FindDiscrepancyByAWB(ctx, row.AWB)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing discrepancy for awb %s: %w", row.AWB, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: awb %s already has discrepancy %s", apperrors.ErrAlreadyProcessed, row.AWB, existing.DiscrepancyID)
	}

	shipment, err := s.shipmentRepo.FindShipmentByAWB(ctx, row.AWB)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w %s", ErrAWBNotFound, row.AWB)
		}
		return nil, fmt.Errorf("failed to look up shipment %s: %w", row.AWB, err)
	}

	account, err := s.ledgerRepo.FindAccountByClientID(ctx, shipment.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to find wallet for client %s: %w", shipment.ClientID, err)
	}

	now := time.Now().UTC()
	wd := domain.WeightDiscrepancy{
		DiscrepancyID:   uuid.NewString(),
		AWB:             row.AWB,
		ClientID:        shipment.ClientID,
		OrderRef:        shipment.OrderRef,
		ClaimedWeight:   row.ClaimedWeight,
		CarrierWeight:   row.CarrierWeight,
		WeightDelta:     row.CarrierWeight.Sub(row.ClaimedWeight),
		DeductionAmount: roundMoney(row.DeductionAmount),
		DisputeStatus:   domain.DisputeNew,
		Resolution:      domain.ResolutionNone,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	var charge *domain.Transaction
	if wd.DeductionAmount.GreaterThan(decimal.Zero) {
		charge = &domain.Transaction{
			TransactionID:    utils.NewTransactionRef(now),
			AccountID:        account.AccountID,
			TransactionType:  domain.Debit,
			Category:         domain.CategoryWeightDiscrepancyCharge,
			Amount:           wd.DeductionAmount,
			IdempotencyKey:   "wd-charge-" + row.AWB,
			RelatedEntityRef: wd.DiscrepancyID,
			Status:           domain.TransactionCommitted,
			AuditFields:      wd.AuditFields,
		}
		wd.ChargeTransactionRef = charge.TransactionID
	}

	if _, err := s.discrepancyRepo.SaveDiscrepancyWithCharge(ctx, wd, charge); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyProcessed) {
			return nil, fmt.Errorf("%w: awb %s", apperrors.ErrAlreadyProcessed, row.AWB)
		}
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Warn("Weight discrepancy charge rejected for insufficient funds",
				slog.String("awb", row.AWB),
				slog.String("client_id", shipment.ClientID))
			return nil, err
		}
		logger.Error("Failed to save weight discrepancy", slog.String("error", err.Error()), slog.String("awb", row.AWB))
		return nil, fmt.Errorf("failed to save discrepancy for awb %s: %w", row.AWB, err)
	}

	logger.Info("Weight discrepancy ingested",
		slog.String("discrepancy_id", wd.DiscrepancyID),
		slog.String("awb", wd.AWB),
		slog.String("deduction", wd.DeductionAmount.StringFixed(2)))
	return &wd, nil
}

// ImportWeightFacts ingests a batch of reconciliation rows. A failing row is
// recorded and skipped; the batch never aborts part-way.
func (s *disputeService) ImportWeightFacts(ctx context.Context, rows []dto.WeightFactRow, userID string) *dto.ImportWeightFactsResult {
	result := &dto.ImportWeightFactsResult{}
	for _, row := range rows {
		wd, err := s.IngestWeightFact(ctx, row, userID)
		if err != nil {
			result.Rejected = append(result.Rejected, dto.WeightFactRejection{AWB: row.AWB, Reason: err.Error()})
			continue
		}
		result.Accepted++
		result.ChargedIDs = append(result.ChargedIDs, wd.DiscrepancyID)
	}
	return result
}

// RaiseDispute opens the client dispute window on a fresh discrepancy.
func (s *disputeService) RaiseDispute(ctx context.Context, discrepancyID, userID string) (*domain.WeightDiscrepancy, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	wd, err := s.discrepancyRepo.FindDiscrepancyByID(ctx, discrepancyID)
	if err != nil {
		return nil, err
	}
	switch wd.DisputeStatus {
	case domain.DisputeDisputed:
		return nil, fmt.Errorf("%w: discrepancy %s", ErrAlreadyDisputed, discrepancyID)
	case domain.DisputeFinalized:
		return nil, fmt.Errorf("%w: discrepancy %s", ErrAlreadyFinalized, discrepancyID)
	}

	now := time.Now().UTC()
	moved, err := s.discrepancyRepo.MarkDisputed(ctx, discrepancyID, now, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark discrepancy %s disputed: %w", discrepancyID, err)
	}
	if !moved {
		// Lost a race to another mutator; classify against the current state.
		current, findErr := s.discrepancyRepo.FindDiscrepancyByID(ctx, discrepancyID)
		if findErr == nil && current.DisputeStatus == domain.DisputeDisputed {
			return nil, fmt.Errorf("%w: discrepancy %s", ErrAlreadyDisputed, discrepancyID)
		}
		return nil, fmt.Errorf("%w: discrepancy %s", ErrAlreadyFinalized, discrepancyID)
	}

	logger.Info("Dispute raised", slog.String("discrepancy_id", discrepancyID))
	return s.discrepancyRepo.FindDiscrepancyByID(ctx, discrepancyID)
}

// ResolveDispute closes a raised dispute. Accepting refunds the full deduction
// in the same atomic unit as the finalization; rejecting moves no money.
func (s *disputeService) ResolveDispute(ctx context.Context, discrepancyID string, outcome domain.DisputeResolution, userID string) (*domain.WeightDiscrepancy, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if outcome != domain.ResolutionAccepted && outcome != domain.ResolutionRejected {
		return nil, fmt.Errorf("%w: got %q", ErrUnknownOutcome, outcome)
	}

	wd, err := s.discrepancyRepo.FindDiscrepancyByID(ctx, discrepancyID)
	if err != nil {
		return nil, err
	}
	if wd.DisputeStatus != domain.DisputeDisputed {
		return nil, &apperrors.StateTransitionError{
			Entity:    "weight discrepancy",
			EntityID:  discrepancyID,
			FromState: string(wd.DisputeStatus),
			ToState:   string(domain.DisputeFinalized),
		}
	}

	now := time.Now().UTC()
	var refund *domain.Transaction
	if outcome == domain.ResolutionAccepted && wd.DeductionAmount.GreaterThan(decimal.Zero) {
		account, err := s.ledgerRepo.FindAccountByClientID(ctx, wd.ClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to find wallet for client %s: %w", wd.ClientID, err)
		}
		refund = &domain.Transaction{
			TransactionID:    utils.NewTransactionRef(now),
			AccountID:        account.AccountID,
			TransactionType:  domain.Credit,
			Category:         domain.CategoryWeightDiscrepancyRefund,
			Amount:           wd.DeductionAmount,
			IdempotencyKey:   "wd-refund-" + wd.DiscrepancyID,
			RelatedEntityRef: wd.DiscrepancyID,
			Status:           domain.TransactionCommitted,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	_, moved, err := s.discrepancyRepo.FinalizeDiscrepancy(ctx, discrepancyID, outcome, refund, userID, now)
	if err != nil {
		logger.Error("Failed to finalize discrepancy", slog.String("error", err.Error()), slog.String("discrepancy_id", discrepancyID))
		return nil, fmt.Errorf("failed to finalize discrepancy %s: %w", discrepancyID, err)
	}
	if !moved {
		current, findErr := s.discrepancyRepo.FindDiscrepancyByID(ctx, discrepancyID)
		fromState := string(domain.DisputeFinalized)
		if findErr == nil {
			fromState = string(current.DisputeStatus)
		}
		return nil, &apperrors.StateTransitionError{
			Entity:    "weight discrepancy",
			EntityID:  discrepancyID,
			FromState: fromState,
			ToState:   string(domain.DisputeFinalized),
		}
	}

	logger.Info("Dispute resolved",
		slog.String("discrepancy_id", discrepancyID),
		slog.String("resolution", string(outcome)))
	return s.discrepancyRepo.FindDiscrepancyByID(ctx, discrepancyID)
}

// ExpireStaleDisputes finalizes disputes raised more than olderThan ago with
// resolution EXPIRED; the charge stands and no transaction is written. The
// guard predicate lives in storage, so running this twice cannot re-finalize.
func (s *disputeService) ExpireStaleDisputes(ctx context.Context, olderThan time.Duration, userID string) (int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if olderThan <= 0 {
		olderThan = DefaultDisputeWindow
	}
	now := time.Now().UTC()
	cutoff := now.Add(-olderThan)

	expired, err := s.discrepancyRepo.ExpireStaleDisputes(ctx, cutoff, userID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale disputes: %w", err)
	}
	if expired > 0 {
		logger.Info("Stale disputes expired", slog.Int64("count", expired))
	}
	return expired, nil
}

func (s *disputeService) GetDiscrepancyByID(ctx context.Context, discrepancyID string) (*domain.WeightDiscrepancy, error) {
	return s.discrepancyRepo.FindDiscrepancyByID(ctx, discrepancyID)
}

func (s *disputeService) ListDiscrepanciesByClient(ctx context.Context, clientID string, params dto.ListDiscrepanciesParams) (*dto.ListDiscrepanciesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	discrepancies, nextToken, err := s.discrepancyRepo.ListDiscrepanciesByClient(ctx, clientID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve discrepancies: %w", err)
	}

	responses := make([]dto.DiscrepancyResponse, len(discrepancies))
	for i := range discrepancies {
		responses[i] = dto.ToDiscrepancyResponse(&discrepancies[i])
	}
	return &dto.ListDiscrepanciesResponse{Discrepancies: responses, NextToken: nextToken}, nil
}
