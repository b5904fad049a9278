package scheduler_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shipdesk/settlement-core/internal/core/domain"
	"github.com/shipdesk/settlement-core/internal/dto"
	"github.com/shipdesk/settlement-core/internal/platform/scheduler"
)

type stubRemittanceSvc struct {
	rollCalls atomic.Int64
	lastUser  atomic.Value
}

func (s *stubRemittanceSvc) IngestEligibleShipment(context.Context, string, string) (*domain.Remittance, error) {
	return nil, nil
}

func (s *stubRemittanceSvc) MarkProcessing(context.Context, string, string) (*domain.Remittance, error) {
	return nil, nil
}

func (s *stubRemittanceSvc) Settle(context.Context, string, string, string) (*domain.Remittance, error) {
	return nil, nil
}

func (s *stubRemittanceSvc) RemoveLineItem(context.Context, string, string, string) (*domain.Remittance, bool, error) {
	return nil, false, nil
}

func (s *stubRemittanceSvc) GetRemittanceByID(context.Context, string) (*domain.Remittance, error) {
	return nil, nil
}

func (s *stubRemittanceSvc) ListRemittancesByClient(context.Context, string, dto.ListRemittancesParams) (*dto.ListRemittancesResponse, error) {
	return nil, nil
}

func (s *stubRemittanceSvc) RollForwardOverdue(_ context.Context, _ time.Time, userID string) (int, error) {
	s.rollCalls.Add(1)
	s.lastUser.Store(userID)
	return 0, nil
}

type stubDisputeSvc struct {
	expireCalls atomic.Int64
}

func (s *stubDisputeSvc) IngestWeightFact(context.Context, dto.WeightFactRow, string) (*domain.WeightDiscrepancy, error) {
	return nil, nil
}

func (s *stubDisputeSvc) ImportWeightFacts(context.Context, []dto.WeightFactRow, string) *dto.ImportWeightFactsResult {
	return &dto.ImportWeightFactsResult{}
}

func (s *stubDisputeSvc) RaiseDispute(context.Context, string, string) (*domain.WeightDiscrepancy, error) {
	return nil, nil
}

func (s *stubDisputeSvc) ResolveDispute(context.Context, string, domain.DisputeResolution, string) (*domain.WeightDiscrepancy, error) {
	return nil, nil
}

func (s *stubDisputeSvc) ExpireStaleDisputes(context.Context, time.Duration, string) (int64, error) {
	s.expireCalls.Add(1)
	return 0, nil
}

func (s *stubDisputeSvc) GetDiscrepancyByID(context.Context, string) (*domain.WeightDiscrepancy, error) {
	return nil, nil
}

func (s *stubDisputeSvc) ListDiscrepanciesByClient(context.Context, string, dto.ListDiscrepanciesParams) (*dto.ListDiscrepanciesResponse, error) {
	return nil, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerRunsImmediateSweepOnStart(t *testing.T) {
	remSvc := &stubRemittanceSvc{}
	dispSvc := &stubDisputeSvc{}

	s := scheduler.NewSettlementScheduler(remSvc, dispSvc, discardLogger(), time.Hour, time.Hour)
	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for remSvc.rollCalls.Load() == 0 || dispSvc.expireCalls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("initial sweep never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}

	assert.Equal(t, scheduler.SystemUserID, remSvc.lastUser.Load())
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	remSvc := &stubRemittanceSvc{}
	dispSvc := &stubDisputeSvc{}

	s := scheduler.NewSettlementScheduler(remSvc, dispSvc, discardLogger(), time.Hour, time.Hour)
	s.Start()
	s.Start()
	s.Stop()

	// The immediate sweep must have run exactly once despite the double Start.
	assert.Equal(t, int64(1), remSvc.rollCalls.Load())
	assert.Equal(t, int64(1), dispSvc.expireCalls.Load())
}

func TestSchedulerRunNow(t *testing.T) {
	remSvc := &stubRemittanceSvc{}
	dispSvc := &stubDisputeSvc{}

	s := scheduler.NewSettlementScheduler(remSvc, dispSvc, discardLogger(), time.Hour, time.Hour)
	s.RunNow()
	s.RunNow()

	assert.Equal(t, int64(2), remSvc.rollCalls.Load())
	assert.Equal(t, int64(2), dispSvc.expireCalls.Load())
}
