package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	portssvc "github.com/shipdesk/settlement-core/internal/core/ports/services"
)

// SystemUserID is stamped into audit fields for mutations the scheduler makes
// on its own authority.
const SystemUserID = "system-scheduler"

// SettlementScheduler periodically expires stale disputes and rolls overdue
// UPCOMING remittance batches forward to the next settlement cutoff. Both
// sweeps guard their mutations in storage, so overlapping or repeated runs
// are safe.
type SettlementScheduler struct {
	remittanceSvc portssvc.RemittanceSvcFacade
	disputeSvc    portssvc.DisputeSvcFacade
	logger        *slog.Logger

	checkInterval time.Duration
	disputeWindow time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSettlementScheduler creates a new scheduler.
func NewSettlementScheduler(remittanceSvc portssvc.RemittanceSvcFacade, disputeSvc portssvc.DisputeSvcFacade, logger *slog.Logger, checkInterval, disputeWindow time.Duration) *SettlementScheduler {
	if checkInterval <= 0 {
		checkInterval = time.Hour
	}
	return &SettlementScheduler{
		remittanceSvc: remittanceSvc,
		disputeSvc:    disputeSvc,
		logger:        logger,
		checkInterval: checkInterval,
		disputeWindow: disputeWindow,
		stop:          make(chan struct{}),
	}
}

// Start begins the background sweep loop. The first sweep runs immediately.
func (s *SettlementScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		return
	}
	s.ticker = time.NewTicker(s.checkInterval)
	s.wg.Add(1)

	go s.run()

	s.logger.Info("Settlement scheduler started", slog.Duration("check_interval", s.checkInterval))
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
func (s *SettlementScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.logger.Info("Settlement scheduler stopped")
	}
}

func (s *SettlementScheduler) run() {
	defer s.wg.Done()

	s.sweep()

	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *SettlementScheduler) sweep() {
	ctx := context.Background()
	now := time.Now().UTC()

	expired, err := s.disputeSvc.ExpireStaleDisputes(ctx, s.disputeWindow, SystemUserID)
	if err != nil {
		s.logger.Error("Scheduler failed to expire stale disputes", slog.String("error", err.Error()))
	}

	rolled, err := s.remittanceSvc.RollForwardOverdue(ctx, now, SystemUserID)
	if err != nil {
		s.logger.Error("Scheduler failed to roll overdue remittances forward", slog.String("error", err.Error()))
	}

	if expired > 0 || rolled > 0 {
		s.logger.Info("Scheduler sweep completed",
			slog.Int64("disputes_expired", expired),
			slog.Int("remittances_rolled", rolled))
	}
}

// RunNow triggers an immediate sweep, outside the ticker cadence.
func (s *SettlementScheduler) RunNow() {
	s.sweep()
}
