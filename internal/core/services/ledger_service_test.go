package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/shipdesk/settlement-core/internal/apperrors"
	"github.com/shipdesk/settlement-core/internal/core/domain"
	portssvc "github.com/shipdesk/settlement-core/internal/core/ports/services"
	"github.com/shipdesk/settlement-core/internal/core/services"
	"github.com/shipdesk/settlement-core/internal/dto"
)

// MockLedgerRepository is a mock implementation of portsrepo.LedgerRepository.
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	var acc *domain.Account
	if args.Get(0) != nil {
		acc = args.Get(0).(*domain.Account)
	}
	return acc, args.Error(1)
}

func (m *MockLedgerRepository) FindAccountByClientID(ctx context.Context, clientID string) (*domain.Account, error) {
	args := m.Called(ctx, clientID)
	var acc *domain.Account
	if args.Get(0) != nil {
		acc = args.Get(0).(*domain.Account)
	}
	return acc, args.Error(1)
}

func (m *MockLedgerRepository) ApplyTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	args := m.Called(ctx, txn)
	var committed *domain.Transaction
	if args.Get(0) != nil {
		committed = args.Get(0).(*domain.Transaction)
	}
	return committed, args.Error(1)
}

func (m *MockLedgerRepository) FindTransactionByIdempotencyKey(ctx context.Context, accountID, key string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, key)
	var txn *domain.Transaction
	if args.Get(0) != nil {
		txn = args.Get(0).(*domain.Transaction)
	}
	return txn, args.Error(1)
}

func (m *MockLedgerRepository) FindRecentMatchingTransaction(ctx context.Context, accountID string, amount decimal.Decimal, txnType domain.TransactionType, category domain.TransactionCategory, since time.Time) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, amount, txnType, category, since)
	var txn *domain.Transaction
	if args.Get(0) != nil {
		txn = args.Get(0).(*domain.Transaction)
	}
	return txn, args.Error(1)
}

func (m *MockLedgerRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

type LedgerServiceTestSuite struct {
	suite.Suite
	mockRepo *MockLedgerRepository
	service  portssvc.LedgerSvcFacade
	ctx      context.Context
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockLedgerRepository)
	suite.service = services.NewLedgerService(suite.mockRepo, time.Minute, 3*time.Second)
	suite.ctx = context.Background()
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (suite *LedgerServiceTestSuite) activeAccount() *domain.Account {
	return &domain.Account{
		AccountID:      "acc-1",
		ClientID:       "client-1",
		Name:           "Acme Retail",
		CurrentBalance: decimal.NewFromInt(500),
		IsActive:       true,
	}
}

func (suite *LedgerServiceTestSuite) TestCreateAccount_Success() {
	req := dto.CreateAccountRequest{ClientID: "client-1", Name: "Acme Retail"}

	suite.mockRepo.On("FindAccountByClientID", suite.ctx, "client-1").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", suite.ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.CreateAccount(suite.ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	assert.Equal(suite.T(), "client-1", account.ClientID)
	assert.Equal(suite.T(), "Acme Retail", account.Name)
	assert.True(suite.T(), account.CurrentBalance.IsZero())
	assert.True(suite.T(), account.IsActive)
	assert.NotEmpty(suite.T(), account.AccountID)
	assert.Equal(suite.T(), "user-1", account.CreatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateAccount_DuplicateClient() {
	req := dto.CreateAccountRequest{ClientID: "client-1", Name: "Acme Retail"}
	existing := suite.activeAccount()

	suite.mockRepo.On("FindAccountByClientID", suite.ctx, "client-1").Return(existing, nil).Once()

	account, err := suite.service.CreateAccount(suite.ctx, req, "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), account)
	assert.ErrorIs(suite.T(), err, apperrors.ErrDuplicate)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateAccount_SaveFails() {
	req := dto.CreateAccountRequest{ClientID: "client-1", Name: "Acme Retail"}

	suite.mockRepo.On("FindAccountByClientID", suite.ctx, "client-1").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", suite.ctx, mock.AnythingOfType("domain.Account")).Return(assert.AnError).Once()

	account, err := suite.service.CreateAccount(suite.ctx, req, "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), account)
	assert.ErrorIs(suite.T(), err, assert.AnError)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestApplyTransaction_RejectsUnknownType() {
	req := dto.ApplyTransactionRequest{
		AccountID:       "acc-1",
		TransactionType: "TRANSFER",
		Category:        domain.CategoryRecharge,
		Amount:          decimal.NewFromInt(10),
	}

	txn, err := suite.service.ApplyTransaction(suite.ctx, req, "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), txn)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestApplyTransaction_RejectsUnknownCategory() {
	req := dto.ApplyTransactionRequest{
		AccountID:       "acc-1",
		TransactionType: domain.Credit,
		Category:        "CASHBACK",
		Amount:          decimal.NewFromInt(10),
	}

	txn, err := suite.service.ApplyTransaction(suite.ctx, req, "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), txn)
	assert.ErrorIs(suite.T(), err, services.ErrUnknownCategory)
}

func (suite *LedgerServiceTestSuite) TestApplyTransaction_RejectsNonPositiveAmount() {
	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		req := dto.ApplyTransactionRequest{
			AccountID:       "acc-1",
			TransactionType: domain.Debit,
			Category:        domain.CategoryManualAdjustment,
			Amount:          amount,
		}

		txn, err := suite.service.ApplyTransaction(suite.ctx, req, "user-1")

		suite.Require().Error(err)
		assert.Nil(suite.T(), txn)
		assert.ErrorIs(suite.T(), err, services.ErrAmountNotPositive)
	}
}

func (suite *LedgerServiceTestSuite) TestApplyTransaction_AccountNotFound() {
	req := dto.ApplyTransactionRequest{
		AccountID:       "acc-missing",
		TransactionType: domain.Credit,
		Category:        domain.CategoryRecharge,
		Amount:          decimal.NewFromInt(10),
	}

	suite.mockRepo.On("FindAccountByID", suite.ctx, "acc-missing").Return(nil, apperrors.ErrNotFound).Once()

	txn, err := suite.service.ApplyTransaction(suite.ctx, req, "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), txn)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestApplyTransaction_InactiveAccount() {
	account := suite.activeAccount()
	account.IsActive = false
	req := dto.ApplyTransactionRequest{
		AccountID:       account.AccountID,
		TransactionType: domain.Credit,
		Category:        domain.CategoryRecharge,
		Amount:          decimal.NewFromInt(10),
	}

	suite.mockRepo.On("FindAccountByID", suite.ctx, account.AccountID).Return(account, nil).Once()

	txn, err := suite.service.ApplyTransaction(suite.ctx, req, "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), txn)
	assert.ErrorIs(suite.T(), err, services.ErrAccountInactive)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestApplyTransaction_IdempotencyKeyReplay() {
	account := suite.activeAccount()
	committed := &domain.Transaction{
		TransactionID:   "TXN-1",
		AccountID:       account.AccountID,
		TransactionType: domain.Credit,
		Category:        domain.CategoryRecharge,
		Amount:          decimal.NewFromInt(200),
		ClosingBalance:  decimal.NewFromInt(700),
		IdempotencyKey:  "op-recharge-42",
		Status:          domain.TransactionCommitted,
	}
	req := dto.ApplyTransactionRequest{
		AccountID:       account.AccountID,
		TransactionType: domain.Credit,
		Category:        domain.CategoryRecharge,
		Amount:          decimal.NewFromInt(200),
		IdempotencyKey:  "op-recharge-42",
	}

	suite.mockRepo.On("FindAccountByID", suite.ctx, account.AccountID).Return(account, nil).Once()
	suite.mockRepo.On("FindTransactionByIdempotencyKey", suite.ctx, account.AccountID, "op-recharge-42").Return(committed, nil).Once()

	txn, err := suite.service.ApplyTransaction(suite.ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	assert.True(suite.T(), txn.Replayed)
	assert.Equal(suite.T(), "TXN-1", txn.TransactionID)
	assert.True(suite.T(), txn.ClosingBalance.Equal(decimal.NewFromInt(700)))
	suite.mockRepo.AssertNotCalled(suite.T(), "ApplyTransaction", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestApplyTransaction_DedupWindowReplay() {
	account := suite.activeAccount()
	recent := &domain.Transaction{
		TransactionID:   "TXN-9",
		AccountID:       account.AccountID,
		TransactionType: domain.Debit,
		Category:        domain.CategoryManualAdjustment,
		Amount:          decimal.NewFromInt(50),
		Status:          domain.TransactionCommitted,
	}
	req := dto.ApplyTransactionRequest{
		AccountID:       account.AccountID,
		TransactionType: domain.Debit,
		Category:        domain.CategoryManualAdjustment,
		Amount:          decimal.NewFromInt(50),
	}

	suite.mockRepo.On("FindAccountByID", suite.ctx, account.AccountID).Return(account, nil).Once()
	suite.mockRepo.On("FindRecentMatchingTransaction", suite.ctx, account.AccountID,
		mock.AnythingOfType("decimal.Decimal"), domain.Debit, domain.CategoryManualAdjustment,
		mock.AnythingOfType("time.Time")).Return(recent, nil).Once()

	txn, err := suite.service.ApplyTransaction(suite.ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	assert.True(suite.T(), txn.Replayed)
	assert.Equal(suite.T(), "TXN-9", txn.TransactionID)
	suite.mockRepo.AssertNotCalled(suite.T(), "ApplyTransaction", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestApplyTransaction_Success() {
	account := suite.activeAccount()
	req := dto.ApplyTransactionRequest{
		AccountID:       account.AccountID,
		TransactionType: domain.Credit,
		Category:        domain.CategoryRecharge,
		Amount:          decimal.RequireFromString("200.005"),
		IdempotencyKey:  "op-recharge-42",
	}

	suite.mockRepo.On("FindAccountByID", suite.ctx, account.AccountID).Return(account, nil).Once()
	suite.mockRepo.On("FindTransactionByIdempotencyKey", suite.ctx, account.AccountID, "op-recharge-42").Return(nil, nil).Once()
	suite.mockRepo.On("ApplyTransaction", mock.Anything, mock.MatchedBy(func(txn domain.Transaction) bool {
		// Amount is rounded to 2 places with banker's rounding before persistence.
		return txn.AccountID == account.AccountID &&
			txn.TransactionType == domain.Credit &&
			txn.Category == domain.CategoryRecharge &&
			txn.Amount.Equal(decimal.RequireFromString("200.00")) &&
			txn.IdempotencyKey == "op-recharge-42" &&
			txn.Status == domain.TransactionCommitted
	})).Return(&domain.Transaction{
		TransactionID:   "TXN-2",
		AccountID:       account.AccountID,
		TransactionType: domain.Credit,
		Category:        domain.CategoryRecharge,
		Amount:          decimal.RequireFromString("200.00"),
		OpeningBalance:  decimal.NewFromInt(500),
		ClosingBalance:  decimal.NewFromInt(700),
		Status:          domain.TransactionCommitted,
	}, nil).Once()

	txn, err := suite.service.ApplyTransaction(suite.ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	assert.False(suite.T(), txn.Replayed)
	assert.True(suite.T(), txn.OpeningBalance.Equal(decimal.NewFromInt(500)))
	assert.True(suite.T(), txn.ClosingBalance.Equal(decimal.NewFromInt(700)))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestApplyTransaction_DuplicateRaceResolvesToReplay() {
	account := suite.activeAccount()
	committed := &domain.Transaction{
		TransactionID:  "TXN-3",
		AccountID:      account.AccountID,
		IdempotencyKey: "op-recharge-42",
		Status:         domain.TransactionCommitted,
	}
	req := dto.ApplyTransactionRequest{
		AccountID:       account.AccountID,
		TransactionType: domain.Credit,
		Category:        domain.CategoryRecharge,
		Amount:          decimal.NewFromInt(200),
		IdempotencyKey:  "op-recharge-42",
	}

	suite.mockRepo.On("FindAccountByID", suite.ctx, account.AccountID).Return(account, nil).Once()
	// Pre-check misses, the insert hits the unique index, the re-fetch finds
	// the transaction the concurrent request committed.
	suite.mockRepo.On("FindTransactionByIdempotencyKey", suite.ctx, account.AccountID, "op-recharge-42").Return(nil, nil).Once()
	suite.mockRepo.On("ApplyTransaction", mock.Anything, mock.AnythingOfType("domain.Transaction")).Return(nil, apperrors.ErrDuplicate).Once()
	suite.mockRepo.On("FindTransactionByIdempotencyKey", suite.ctx, account.AccountID, "op-recharge-42").Return(committed, nil).Once()

	txn, err := suite.service.ApplyTransaction(suite.ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	assert.True(suite.T(), txn.Replayed)
	assert.Equal(suite.T(), "TXN-3", txn.TransactionID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestApplyTransaction_LockTimeoutIsRetryable() {
	account := suite.activeAccount()
	req := dto.ApplyTransactionRequest{
		AccountID:       account.AccountID,
		TransactionType: domain.Credit,
		Category:        domain.CategoryRecharge,
		Amount:          decimal.NewFromInt(10),
	}

	suite.mockRepo.On("FindAccountByID", suite.ctx, account.AccountID).Return(account, nil).Once()
	suite.mockRepo.On("FindRecentMatchingTransaction", suite.ctx, account.AccountID,
		mock.AnythingOfType("decimal.Decimal"), domain.Credit, domain.CategoryRecharge,
		mock.AnythingOfType("time.Time")).Return(nil, nil).Once()
	suite.mockRepo.On("ApplyTransaction", mock.Anything, mock.AnythingOfType("domain.Transaction")).Return(nil, context.DeadlineExceeded).Once()

	txn, err := suite.service.ApplyTransaction(suite.ctx, req, "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), txn)
	assert.ErrorIs(suite.T(), err, apperrors.ErrUnavailable)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestApplyTransaction_InsufficientFunds() {
	account := suite.activeAccount()
	req := dto.ApplyTransactionRequest{
		AccountID:       account.AccountID,
		TransactionType: domain.Debit,
		Category:        domain.CategoryManualAdjustment,
		Amount:          decimal.NewFromInt(600),
	}
	fundsErr := &apperrors.InsufficientFundsError{
		AccountID: account.AccountID,
		Balance:   decimal.NewFromInt(500),
		Requested: decimal.NewFromInt(600),
	}

	suite.mockRepo.On("FindAccountByID", suite.ctx, account.AccountID).Return(account, nil).Once()
	suite.mockRepo.On("FindRecentMatchingTransaction", suite.ctx, account.AccountID,
		mock.AnythingOfType("decimal.Decimal"), domain.Debit, domain.CategoryManualAdjustment,
		mock.AnythingOfType("time.Time")).Return(nil, nil).Once()
	suite.mockRepo.On("ApplyTransaction", mock.Anything, mock.AnythingOfType("domain.Transaction")).Return(nil, fundsErr).Once()

	txn, err := suite.service.ApplyTransaction(suite.ctx, req, "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), txn)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInsufficientFunds)

	var typed *apperrors.InsufficientFundsError
	suite.Require().ErrorAs(err, &typed)
	assert.True(suite.T(), typed.Balance.Equal(decimal.NewFromInt(500)))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestListTransactions_DefaultsLimit() {
	txns := []domain.Transaction{{TransactionID: "TXN-1", AccountID: "acc-1"}}

	suite.mockRepo.On("ListTransactionsByAccountID", suite.ctx, "acc-1", 20, (*string)(nil)).Return(txns, nil, nil).Once()

	resp, err := suite.service.ListTransactions(suite.ctx, "acc-1", dto.ListTransactionsParams{})

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	assert.Len(suite.T(), resp.Transactions, 1)
	assert.Nil(suite.T(), resp.NextToken)
	suite.mockRepo.AssertExpectations(suite.T())
}

// stubLedgerRepo is a minimal in-memory ledger used to exercise the balance
// chain through the service without a database. It applies the same atomicity
// contract as the real repository: balance-read, compute, insert, balance-write
// under one lock.
type stubLedgerRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	txns     []domain.Transaction
}

func newStubLedgerRepo(accounts ...*domain.Account) *stubLedgerRepo {
	s := &stubLedgerRepo{accounts: make(map[string]*domain.Account)}
	for _, acc := range accounts {
		s.accounts[acc.AccountID] = acc
	}
	return s
}

func (s *stubLedgerRepo) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.AccountID] = &account
	return nil
}

func (s *stubLedgerRepo) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (s *stubLedgerRepo) FindAccountByClientID(_ context.Context, clientID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.ClientID == clientID {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *stubLedgerRepo) ApplyTransaction(_ context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[txn.AccountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	txn.OpeningBalance = acc.CurrentBalance
	if txn.TransactionType == domain.Debit {
		txn.ClosingBalance = acc.CurrentBalance.Sub(txn.Amount)
		if txn.ClosingBalance.IsNegative() {
			return nil, &apperrors.InsufficientFundsError{
				AccountID: txn.AccountID,
				Balance:   acc.CurrentBalance,
				Requested: txn.Amount,
			}
		}
	} else {
		txn.ClosingBalance = acc.CurrentBalance.Add(txn.Amount)
	}
	acc.CurrentBalance = txn.ClosingBalance
	s.txns = append(s.txns, txn)
	cp := txn
	return &cp, nil
}

func (s *stubLedgerRepo) FindTransactionByIdempotencyKey(_ context.Context, accountID, key string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txns {
		if s.txns[i].AccountID == accountID && s.txns[i].IdempotencyKey == key {
			cp := s.txns[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubLedgerRepo) FindRecentMatchingTransaction(_ context.Context, accountID string, amount decimal.Decimal, txnType domain.TransactionType, category domain.TransactionCategory, since time.Time) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.txns) - 1; i >= 0; i-- {
		t := s.txns[i]
		if t.AccountID == accountID && t.Amount.Equal(amount) && t.TransactionType == txnType && t.Category == category && !t.CreatedAt.Before(since) {
			cp := t
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubLedgerRepo) ListTransactionsByAccountID(_ context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for i := len(s.txns) - 1; i >= 0 && len(out) < limit; i-- {
		if s.txns[i].AccountID == accountID {
			out = append(out, s.txns[i])
		}
	}
	return out, nil, nil
}

// TestApplyTransaction_BalanceChain walks a wallet through a credit, a debit
// and a replayed credit, verifying the opening/closing chain at each step:
// 500 -> 700 -> 650, and the replay leaves the balance at 650.
func TestApplyTransaction_BalanceChain(t *testing.T) {
	ctx := context.Background()
	repo := newStubLedgerRepo(&domain.Account{
		AccountID:      "acc-1",
		ClientID:       "client-1",
		CurrentBalance: decimal.NewFromInt(500),
		IsActive:       true,
	})
	svc := services.NewLedgerService(repo, time.Minute, 3*time.Second)

	credit, err := svc.ApplyTransaction(ctx, dto.ApplyTransactionRequest{
		AccountID:       "acc-1",
		TransactionType: domain.Credit,
		Category:        domain.CategoryRecharge,
		Amount:          decimal.NewFromInt(200),
		IdempotencyKey:  "recharge-1",
	}, "user-1")
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if !credit.OpeningBalance.Equal(decimal.NewFromInt(500)) || !credit.ClosingBalance.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("credit chain wrong: opening %s closing %s", credit.OpeningBalance, credit.ClosingBalance)
	}

	debit, err := svc.ApplyTransaction(ctx, dto.ApplyTransactionRequest{
		AccountID:       "acc-1",
		TransactionType: domain.Debit,
		Category:        domain.CategoryWeightDiscrepancyCharge,
		Amount:          decimal.NewFromInt(50),
		IdempotencyKey:  "wd-charge-AWB1",
	}, "user-1")
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if !debit.OpeningBalance.Equal(decimal.NewFromInt(700)) || !debit.ClosingBalance.Equal(decimal.NewFromInt(650)) {
		t.Fatalf("debit chain wrong: opening %s closing %s", debit.OpeningBalance, debit.ClosingBalance)
	}

	// Re-submitting the first credit with the same key must replay, not
	// double-apply.
	replay, err := svc.ApplyTransaction(ctx, dto.ApplyTransactionRequest{
		AccountID:       "acc-1",
		TransactionType: domain.Credit,
		Category:        domain.CategoryRecharge,
		Amount:          decimal.NewFromInt(200),
		IdempotencyKey:  "recharge-1",
	}, "user-1")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !replay.Replayed {
		t.Fatal("expected replayed transaction")
	}
	if replay.TransactionID != credit.TransactionID {
		t.Fatalf("replay returned a different transaction: %s vs %s", replay.TransactionID, credit.TransactionID)
	}

	account, err := repo.FindAccountByID(ctx, "acc-1")
	if err != nil {
		t.Fatalf("account lookup failed: %v", err)
	}
	if !account.CurrentBalance.Equal(decimal.NewFromInt(650)) {
		t.Fatalf("cached balance drifted: %s", account.CurrentBalance)
	}

	// An overdrawing debit is rejected and moves nothing.
	_, err = svc.ApplyTransaction(ctx, dto.ApplyTransactionRequest{
		AccountID:       "acc-1",
		TransactionType: domain.Debit,
		Category:        domain.CategoryManualAdjustment,
		Amount:          decimal.NewFromInt(651),
		IdempotencyKey:  "adjust-1",
	}, "user-1")
	if err == nil {
		t.Fatal("expected insufficient funds error")
	}
	var fundsErr *apperrors.InsufficientFundsError
	if !assert.ErrorAs(t, err, &fundsErr) {
		t.FailNow()
	}
	account, _ = repo.FindAccountByID(ctx, "acc-1")
	if !account.CurrentBalance.Equal(decimal.NewFromInt(650)) {
		t.Fatalf("failed debit moved money: %s", account.CurrentBalance)
	}
}
