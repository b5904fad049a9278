package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shipdesk/settlement-core/internal/apperrors"
	"github.com/shipdesk/settlement-core/internal/core/domain"
	portsrepo "github.com/shipdesk/settlement-core/internal/core/ports/repositories"
	portssvc "github.com/shipdesk/settlement-core/internal/core/ports/services"
	"github.com/shipdesk/settlement-core/internal/dto"
	"github.com/shipdesk/settlement-core/internal/middleware"
	"github.com/shipdesk/settlement-core/internal/utils"
)

var (
	ErrAWBNotFound          = fmt.Errorf("%w: no shipment for awb", apperrors.ErrNotFound)
	ErrNotCOD               = fmt.Errorf("%w: shipment is not cash on delivery", apperrors.ErrValidation)
	ErrNotDelivered         = fmt.Errorf("%w: shipment is not delivered", apperrors.ErrValidation)
	ErrAlreadyRemitted      = fmt.Errorf("%w: awb already remitted or batched", apperrors.ErrAlreadyProcessed)
	ErrCannotModifySettled  = fmt.Errorf("%w: settled remittance cannot be modified", apperrors.ErrInvalidStateTransition)
	ErrBankReferenceMissing = fmt.Errorf("%w: bank reference is required to settle", apperrors.ErrValidation)
)

// DefaultSettlementCutoff is the weekly settlement cutoff weekday used when
// none is configured.
const DefaultSettlementCutoff = time.Friday

// NextSettlementDate returns the first occurrence of the cutoff weekday on or
// after the delivery date. Dates are normalized to midnight UTC.
func NextSettlementDate(deliveredAt time.Time, cutoff time.Weekday) time.Time {
	d := deliveredAt.UTC()
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(cutoff) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, offset)
}

// remittanceService batches delivered COD shipments into per-client,
// per-settlement-date payable remittances and runs their lifecycle.
type remittanceService struct {
	remittanceRepo portsrepo.RemittanceRepository
	shipmentRepo   portsrepo.ShipmentRepository
	cutoffWeekday  time.Weekday
}

// NewRemittanceService creates a new remittance service with the given weekly
// settlement cutoff weekday.
func NewRemittanceService(remittanceRepo portsrepo.RemittanceRepository, shipmentRepo portsrepo.ShipmentRepository, cutoffWeekday time.Weekday) portssvc.RemittanceSvcFacade {
	return &remittanceService{
		remittanceRepo: remittanceRepo,
		shipmentRepo:   shipmentRepo,
		cutoffWeekday:  cutoffWeekday,
	}
}

var _ portssvc.RemittanceSvcFacade = (*remittanceService)(nil)

// IngestEligibleShipment pulls one shipment into its settlement batch. The
// shipment must exist, be COD, be delivered, and not already sit in a
// non-settled batch or be remitted.
func (s *remittanceService) IngestEligibleShipment(ctx context.Context, awb, userID string) (*domain.Remittance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	shipment, err := s.shipmentRepo.FindShipmentByAWB(ctx, awb)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w %s", ErrAWBNotFound, awb)
		}
		return nil, fmt.Errorf("failed to look up shipment %s: %w", awb, err)
	}
	if shipment.PaymentMode != domain.PaymentCOD {
		return nil, fmt.Errorf("%w: awb %s", ErrNotCOD, awb)
	}
	if shipment.Status != domain.ShipmentDelivered || shipment.DeliveredDate == nil {
		return nil, fmt.Errorf("%w: awb %s is %s", ErrNotDelivered, awb, shipment.Status)
	}
	if shipment.CODRemitted {
		return nil, fmt.Errorf("%w: awb %s", ErrAlreadyRemitted, awb)
	}

	settlementDate := NextSettlementDate(*shipment.DeliveredDate, s.cutoffWeekday)
	item := domain.RemittanceLineItem{
		AWB:             shipment.AWB,
		AmountCollected: roundMoney(shipment.CODAmount),
		OrderRef:        shipment.OrderRef,
	}

	now := time.Now().UTC()
	candidate := domain.Remittance{
		RemittanceID:     uuid.NewString(),
		RemittanceNumber: utils.NewRemittanceNumber(shipment.ClientID, settlementDate),
		ClientID:         shipment.ClientID,
		SettlementDate:   settlementDate,
		Status:           domain.RemittanceUpcoming,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	rem, err := s.remittanceRepo.AddLineItem(ctx, candidate, item)
	// The deterministic number can collide with an older settled batch for the
	// same key; disambiguate with a random suffix and retry.
	for attempts := 0; err != nil && errors.Is(err, apperrors.ErrDuplicate) && attempts < 3; attempts++ {
		candidate.RemittanceID = uuid.NewString()
		candidate.RemittanceNumber = utils.NewRemittanceNumberWithSuffix(shipment.ClientID, settlementDate)
		rem, err = s.remittanceRepo.AddLineItem(ctx, candidate, item)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyProcessed) {
			return nil, fmt.Errorf("%w: awb %s", ErrAlreadyRemitted, awb)
		}
		logger.Error("Failed to add remittance line item", slog.String("error", err.Error()), slog.String("awb", awb))
		return nil, fmt.Errorf("failed to add line item for awb %s: %w", awb, err)
	}

	logger.Info("Shipment batched for remittance",
		slog.String("awb", awb),
		slog.String("remittance_id", rem.RemittanceID),
		slog.String("remittance_number", rem.RemittanceNumber),
		slog.String("settlement_date", settlementDate.Format("2006-01-02")),
		slog.String("total_amount", rem.TotalAmount.StringFixed(2)))
	return rem, nil
}

// MarkProcessing moves an upcoming batch into processing.
func (s *remittanceService) MarkProcessing(ctx context.Context, remittanceID, userID string) (*domain.Remittance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	rem, err := s.remittanceRepo.FindRemittanceByID(ctx, remittanceID)
	if err != nil {
		return nil, err
	}
	if !rem.Status.CanTransitionTo(domain.RemittanceProcessing) {
		return nil, &apperrors.StateTransitionError{
			Entity:    "remittance",
			EntityID:  remittanceID,
			FromState: string(rem.Status),
			ToState:   string(domain.RemittanceProcessing),
		}
	}

	now := time.Now().UTC()
	moved, err := s.remittanceRepo.UpdateRemittanceStatus(ctx, remittanceID, domain.RemittanceUpcoming, domain.RemittanceProcessing, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark remittance %s processing: %w", remittanceID, err)
	}
	if !moved {
		// Lost a race; report against the state it is in now.
		current, findErr := s.remittanceRepo.FindRemittanceByID(ctx, remittanceID)
		fromState := string(domain.RemittanceSettled)
		if findErr == nil {
			fromState = string(current.Status)
		}
		return nil, &apperrors.StateTransitionError{
			Entity:    "remittance",
			EntityID:  remittanceID,
			FromState: fromState,
			ToState:   string(domain.RemittanceProcessing),
		}
	}

	logger.Info("Remittance marked processing", slog.String("remittance_id", remittanceID))
	return s.remittanceRepo.FindRemittanceByID(ctx, remittanceID)
}

// Settle closes a processing batch against a bank transfer reference and marks
// every line-item shipment remitted. The payout itself is a bank transfer
// outside this ledger; no wallet transaction is written.
func (s *remittanceService) Settle(ctx context.Context, remittanceID, bankReference, userID string) (*domain.Remittance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if strings.TrimSpace(bankReference) == "" {
		return nil, ErrBankReferenceMissing
	}

	rem, err := s.remittanceRepo.FindRemittanceByID(ctx, remittanceID)
	if err != nil {
		return nil, err
	}
	if !rem.Status.CanTransitionTo(domain.RemittanceSettled) {
		return nil, &apperrors.StateTransitionError{
			Entity:    "remittance",
			EntityID:  remittanceID,
			FromState: string(rem.Status),
			ToState:   string(domain.RemittanceSettled),
		}
	}

	now := time.Now().UTC()
	moved, err := s.remittanceRepo.SettleRemittance(ctx, remittanceID, strings.TrimSpace(bankReference), userID, now)
	if err != nil {
		logger.Error("Failed to settle remittance", slog.String("error", err.Error()), slog.String("remittance_id", remittanceID))
		return nil, fmt.Errorf("failed to settle remittance %s: %w", remittanceID, err)
	}
	if !moved {
		current, findErr := s.remittanceRepo.FindRemittanceByID(ctx, remittanceID)
		fromState := string(domain.RemittanceSettled)
		if findErr == nil {
			fromState = string(current.Status)
		}
		return nil, &apperrors.StateTransitionError{
			Entity:    "remittance",
			EntityID:  remittanceID,
			FromState: fromState,
			ToState:   string(domain.RemittanceSettled),
		}
	}

	logger.Info("Remittance settled",
		slog.String("remittance_id", remittanceID),
		slog.String("bank_reference", bankReference),
		slog.String("total_amount", rem.TotalAmount.StringFixed(2)))
	return s.remittanceRepo.FindRemittanceByID(ctx, remittanceID)
}

// RemoveLineItem drops one AWB from a non-settled batch. Removing the last
// item deletes the batch.
func (s *remittanceService) RemoveLineItem(ctx context.Context, remittanceID, awb, userID string) (*domain.Remittance, bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	rem, err := s.remittanceRepo.FindRemittanceByID(ctx, remittanceID)
	if err != nil {
		return nil, false, err
	}
	if rem.Status == domain.RemittanceSettled {
		return nil, false, fmt.Errorf("%w: remittance %s", ErrCannotModifySettled, remittanceID)
	}

	now := time.Now().UTC()
	updated, deleted, err := s.remittanceRepo.RemoveLineItem(ctx, remittanceID, awb, userID, now)
	if err != nil {
		return nil, false, err
	}

	if deleted {
		logger.Info("Remittance deleted after last line item removed", slog.String("remittance_id", remittanceID), slog.String("awb", awb))
	} else {
		logger.Info("Remittance line item removed", slog.String("remittance_id", remittanceID), slog.String("awb", awb))
	}
	return updated, deleted, nil
}

func (s *remittanceService) GetRemittanceByID(ctx context.Context, remittanceID string) (*domain.Remittance, error) {
	return s.remittanceRepo.FindRemittanceByID(ctx, remittanceID)
}

func (s *remittanceService) ListRemittancesByClient(ctx context.Context, clientID string, params dto.ListRemittancesParams) (*dto.ListRemittancesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	rems, nextToken, err := s.remittanceRepo.ListRemittancesByClient(ctx, clientID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve remittances: %w", err)
	}

	responses := make([]dto.RemittanceResponse, len(rems))
	for i := range rems {
		responses[i] = dto.ToRemittanceResponse(&rems[i])
	}
	return &dto.ListRemittancesResponse{Remittances: responses, NextToken: nextToken}, nil
}

// RollForwardOverdue advances upcoming batches whose settlement date has
// passed to the next cutoff on or after today. Safe to run repeatedly: a batch
// already on a future cutoff is never selected.
func (s *remittanceService) RollForwardOverdue(ctx context.Context, now time.Time, userID string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	today := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	overdue, err := s.remittanceRepo.ListOverdueUpcoming(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue remittances: %w", err)
	}

	rolled := 0
	for _, rem := range overdue {
		newDate := NextSettlementDate(today, s.cutoffWeekday)
		if err := s.remittanceRepo.UpdateSettlementDate(ctx, rem.RemittanceID, newDate, userID, now.UTC()); err != nil {
			logger.Error("Failed to roll forward remittance",
				slog.String("error", err.Error()),
				slog.String("remittance_id", rem.RemittanceID))
			continue
		}
		rolled++
		logger.Info("Remittance settlement date rolled forward",
			slog.String("remittance_id", rem.RemittanceID),
			slog.String("old_date", rem.SettlementDate.Format("2006-01-02")),
			slog.String("new_date", newDate.Format("2006-01-02")))
	}
	return rolled, nil
}
