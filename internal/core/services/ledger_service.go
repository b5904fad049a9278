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
	ErrAmountNotPositive = fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	ErrAccountInactive   = fmt.Errorf("%w: account is inactive", apperrors.ErrValidation)
	ErrUnknownCategory   = fmt.Errorf("%w: unknown transaction category", apperrors.ErrValidation)
)

// DefaultDedupWindow is the fuzzy duplicate-detection window applied when a
// caller supplies no idempotency key.
const DefaultDedupWindow = 60 * time.Second

// DefaultLockTimeout bounds how long a ledger write may wait on the
// per-account lock before surfacing a retryable error.
const DefaultLockTimeout = 3 * time.Second

// roundMoney applies the platform rounding rule: 2 decimal places, banker's
// rounding, on every monetary mutation. Computation and persistence both go
// through this, so cached balances cannot drift from the transaction log.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

var knownCategories = map[domain.TransactionCategory]struct{}{
	domain.CategoryRecharge:                {},
	domain.CategoryManualAdjustment:        {},
	domain.CategoryWeightDiscrepancyCharge: {},
	domain.CategoryWeightDiscrepancyRefund: {},
}

// ledgerService implements the wallet ledger: immutable transaction recording
// with balance snapshots and duplicate-submission protection.
type ledgerService struct {
	ledgerRepo  portsrepo.LedgerRepository
	dedupWindow time.Duration
	lockTimeout time.Duration
}

// NewLedgerService creates a new ledger service. Non-positive durations fall
// back to the defaults.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepository, dedupWindow, lockTimeout time.Duration) portssvc.LedgerSvcFacade {
	if dedupWindow <= 0 {
		dedupWindow = DefaultDedupWindow
	}
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &ledgerService{
		ledgerRepo:  ledgerRepo,
		dedupWindow: dedupWindow,
		lockTimeout: lockTimeout,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// CreateAccount opens a wallet for a client. One wallet exists per client.
func (s *ledgerService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.ledgerRepo.FindAccountByClientID(ctx, req.ClientID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check for existing wallet", slog.String("error", err.Error()), slog.String("client_id", req.ClientID))
		return nil, fmt.Errorf("failed to check for existing wallet: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: client %s already has wallet %s", apperrors.ErrDuplicate, req.ClientID, existing.AccountID)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:      uuid.NewString(),
		ClientID:       req.ClientID,
		Name:           req.Name,
		CurrentBalance: decimal.Zero,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.ledgerRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save wallet", slog.String("error", err.Error()), slog.String("client_id", req.ClientID))
		return nil, fmt.Errorf("failed to save wallet: %w", err)
	}

	logger.Info("Wallet created", slog.String("account_id", account.AccountID), slog.String("client_id", account.ClientID))
	return &account, nil
}

func (s *ledgerService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.ledgerRepo.FindAccountByID(ctx, accountID)
}

func (s *ledgerService) GetAccountByClientID(ctx context.Context, clientID string) (*domain.Account, error) {
	return s.ledgerRepo.FindAccountByClientID(ctx, clientID)
}

// ApplyTransaction records one credit or debit against a wallet.
//
// Duplicate protection has two layers. A supplied idempotency key is the hard
// guarantee: a key that matches a committed transaction short-circuits to that
// transaction. Without a key, a best-effort heuristic treats a submission as a
// duplicate when a transaction with the same account, rounded amount, type and
// category committed within the dedup window. That heuristic guards against
// double-clicks but is NOT a correctness guarantee; callers that need
// exactly-once semantics must supply a key.
//
// Replays are returned flagged as such but otherwise indistinguishable from a
// successful first application.
func (s *ledgerService) ApplyTransaction(ctx context.Context, req dto.ApplyTransactionRequest, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.TransactionType != domain.Debit && req.TransactionType != domain.Credit {
		return nil, fmt.Errorf("%w: transaction type must be DEBIT or CREDIT", apperrors.ErrValidation)
	}
	if _, ok := knownCategories[req.Category]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, req.Category)
	}
	amount := roundMoney(req.Amount)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrAmountNotPositive
	}

	account, err := s.ledgerRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %s", ErrAccountInactive, account.AccountID)
	}

	now := time.Now().UTC()

	if req.IdempotencyKey != "" {
		existing, err := s.ledgerRepo.FindTransactionByIdempotencyKey(ctx, req.AccountID, req.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if existing != nil {
			logger.Info("Idempotency key replay",
				slog.String("account_id", req.AccountID),
				slog.String("transaction_id", existing.TransactionID),
				slog.String("idempotency_key", req.IdempotencyKey))
			existing.Replayed = true
			return existing, nil
		}
	} else {
		since := now.Add(-s.dedupWindow)
		existing, err := s.ledgerRepo.FindRecentMatchingTransaction(ctx, req.AccountID, amount, req.TransactionType, req.Category, since)
		if err != nil {
			return nil, fmt.Errorf("failed to check dedup window: %w", err)
		}
		if existing != nil {
			logger.Info("Duplicate submission within dedup window",
				slog.String("account_id", req.AccountID),
				slog.String("transaction_id", existing.TransactionID))
			existing.Replayed = true
			return existing, nil
		}
	}

	txn := domain.Transaction{
		TransactionID:    utils.NewTransactionRef(now),
		AccountID:        req.AccountID,
		TransactionType:  req.TransactionType,
		Category:         req.Category,
		Amount:           amount,
		IdempotencyKey:   req.IdempotencyKey,
		RelatedEntityRef: req.RelatedEntityRef,
		Status:           domain.TransactionCommitted,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	applyCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	committed, err := s.ledgerRepo.ApplyTransaction(applyCtx, txn)
	if err != nil {
		// A concurrent submission with the same key can slip past the
		// pre-check and hit the unique index; that race resolves to a replay.
		if req.IdempotencyKey != "" && errors.Is(err, apperrors.ErrDuplicate) {
			existing, findErr := s.ledgerRepo.FindTransactionByIdempotencyKey(ctx, req.AccountID, req.IdempotencyKey)
			if findErr == nil && existing != nil {
				existing.Replayed = true
				return existing, nil
			}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("Ledger write timed out waiting for account lock", slog.String("account_id", req.AccountID))
			return nil, fmt.Errorf("%w: ledger busy for account %s, retry", apperrors.ErrUnavailable, req.AccountID)
		}
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Warn("Debit rejected for insufficient funds", slog.String("account_id", req.AccountID))
			return nil, err
		}
		logger.Error("Failed to apply transaction", slog.String("error", err.Error()), slog.String("account_id", req.AccountID))
		return nil, fmt.Errorf("failed to apply transaction: %w", err)
	}

	logger.Info("Transaction committed",
		slog.String("account_id", committed.AccountID),
		slog.String("transaction_id", committed.TransactionID),
		slog.String("type", string(committed.TransactionType)),
		slog.String("amount", committed.Amount.StringFixed(2)),
		slog.String("closing_balance", committed.ClosingBalance.StringFixed(2)))
	return committed, nil
}

// ListTransactions returns a page of the wallet statement, newest first.
func (s *ledgerService) ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	txns, nextToken, err := s.ledgerRepo.ListTransactionsByAccountID(ctx, accountID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}
