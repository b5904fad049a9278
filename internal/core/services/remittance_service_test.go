package services_test

import (
	"context"
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
)

// MockRemittanceRepository is a mock implementation of portsrepo.RemittanceRepository.
type MockRemittanceRepository struct {
	mock.Mock
}

func (m *MockRemittanceRepository) AddLineItem(ctx context.Context, candidate domain.Remittance, item domain.RemittanceLineItem) (*domain.Remittance, error) {
	args := m.Called(ctx, candidate, item)
	var rem *domain.Remittance
	if args.Get(0) != nil {
		rem = args.Get(0).(*domain.Remittance)
	}
	return rem, args.Error(1)
}

func (m *MockRemittanceRepository) RemoveLineItem(ctx context.Context, remittanceID, awb, userID string, at time.Time) (*domain.Remittance, bool, error) {
	args := m.Called(ctx, remittanceID, awb, userID, at)
	var rem *domain.Remittance
	if args.Get(0) != nil {
		rem = args.Get(0).(*domain.Remittance)
	}
	return rem, args.Bool(1), args.Error(2)
}

func (m *MockRemittanceRepository) FindRemittanceByID(ctx context.Context, remittanceID string) (*domain.Remittance, error) {
	args := m.Called(ctx, remittanceID)
	var rem *domain.Remittance
	if args.Get(0) != nil {
		rem = args.Get(0).(*domain.Remittance)
	}
	return rem, args.Error(1)
}

func (m *MockRemittanceRepository) FindOpenRemittanceByKey(ctx context.Context, clientID string, settlementDate time.Time) (*domain.Remittance, error) {
	args := m.Called(ctx, clientID, settlementDate)
	var rem *domain.Remittance
	if args.Get(0) != nil {
		rem = args.Get(0).(*domain.Remittance)
	}
	return rem, args.Error(1)
}

func (m *MockRemittanceRepository) UpdateRemittanceStatus(ctx context.Context, remittanceID string, from, to domain.RemittanceStatus, userID string, at time.Time) (bool, error) {
	args := m.Called(ctx, remittanceID, from, to, userID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockRemittanceRepository) SettleRemittance(ctx context.Context, remittanceID, bankReference, userID string, at time.Time) (bool, error) {
	args := m.Called(ctx, remittanceID, bankReference, userID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockRemittanceRepository) ListRemittancesByClient(ctx context.Context, clientID string, limit int, nextToken *string) ([]domain.Remittance, *string, error) {
	args := m.Called(ctx, clientID, limit, nextToken)
	var rems []domain.Remittance
	if args.Get(0) != nil {
		rems = args.Get(0).([]domain.Remittance)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return rems, token, args.Error(2)
}

func (m *MockRemittanceRepository) ListOverdueUpcoming(ctx context.Context, before time.Time) ([]domain.Remittance, error) {
	args := m.Called(ctx, before)
	var rems []domain.Remittance
	if args.Get(0) != nil {
		rems = args.Get(0).([]domain.Remittance)
	}
	return rems, args.Error(1)
}

func (m *MockRemittanceRepository) UpdateSettlementDate(ctx context.Context, remittanceID string, newDate time.Time, userID string, at time.Time) error {
	args := m.Called(ctx, remittanceID, newDate, userID, at)
	return args.Error(0)
}

// MockShipmentRepository is a mock implementation of portsrepo.ShipmentRepository.
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) SaveShipment(ctx context.Context, shipment domain.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

func (m *MockShipmentRepository) FindShipmentByAWB(ctx context.Context, awb string) (*domain.Shipment, error) {
	args := m.Called(ctx, awb)
	var s *domain.Shipment
	if args.Get(0) != nil {
		s = args.Get(0).(*domain.Shipment)
	}
	return s, args.Error(1)
}

func (m *MockShipmentRepository) MarkDelivered(ctx context.Context, awb string, deliveredAt time.Time, userID string) error {
	args := m.Called(ctx, awb, deliveredAt, userID)
	return args.Error(0)
}

func TestNextSettlementDate(t *testing.T) {
	tests := []struct {
		name      string
		delivered time.Time
		cutoff    time.Weekday
		want      time.Time
	}{
		{
			name:      "midweek delivery rolls to same-week Friday",
			delivered: time.Date(2025, 6, 4, 14, 30, 0, 0, time.UTC), // Wednesday
			cutoff:    time.Friday,
			want:      time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "delivery on the cutoff day settles that day",
			delivered: time.Date(2025, 6, 6, 9, 0, 0, 0, time.UTC), // Friday
			cutoff:    time.Friday,
			want:      time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "saturday delivery waits for the next Friday",
			delivered: time.Date(2025, 6, 7, 23, 59, 0, 0, time.UTC), // Saturday
			cutoff:    time.Friday,
			want:      time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monday cutoff",
			delivered: time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), // Wednesday
			cutoff:    time.Monday,
			want:      time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "non-UTC timestamps normalize to UTC days",
			delivered: time.Date(2025, 6, 5, 1, 0, 0, 0, time.FixedZone("IST", 5*3600+1800)), // Wed 19:30 UTC
			cutoff:    time.Friday,
			want:      time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.NextSettlementDate(tt.delivered, tt.cutoff)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

type RemittanceServiceTestSuite struct {
	suite.Suite
	mockRepo         *MockRemittanceRepository
	mockShipmentRepo *MockShipmentRepository
	service          portssvc.RemittanceSvcFacade
	ctx              context.Context
}

func (suite *RemittanceServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockRemittanceRepository)
	suite.mockShipmentRepo = new(MockShipmentRepository)
	suite.service = services.NewRemittanceService(suite.mockRepo, suite.mockShipmentRepo, time.Friday)
	suite.ctx = context.Background()
}

func TestRemittanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RemittanceServiceTestSuite))
}

func deliveredCODShipment(awb string) *domain.Shipment {
	deliveredAt := time.Date(2025, 6, 4, 11, 0, 0, 0, time.UTC)
	return &domain.Shipment{
		AWB:           awb,
		ClientID:      "client-1",
		OrderRef:      "ORD-1001",
		PaymentMode:   domain.PaymentCOD,
		Status:        domain.ShipmentDelivered,
		DeliveredDate: &deliveredAt,
		CODAmount:     decimal.RequireFromString("1499.50"),
	}
}

func (suite *RemittanceServiceTestSuite) TestIngestEligibleShipment_Success() {
	shipment := deliveredCODShipment("AWB123")
	batched := &domain.Remittance{
		RemittanceID:     "rem-1",
		RemittanceNumber: "REM-client-1-20250606",
		ClientID:         "client-1",
		SettlementDate:   time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC),
		Status:           domain.RemittanceUpcoming,
		TotalAmount:      decimal.RequireFromString("1499.50"),
	}

	suite.mockShipmentRepo.On("FindShipmentByAWB", suite.ctx, "AWB123").Return(shipment, nil).Once()
	suite.mockRepo.On("AddLineItem", suite.ctx,
		mock.MatchedBy(func(candidate domain.Remittance) bool {
			return candidate.ClientID == "client-1" &&
				candidate.Status == domain.RemittanceUpcoming &&
				candidate.SettlementDate.Equal(time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC))
		}),
		mock.MatchedBy(func(item domain.RemittanceLineItem) bool {
			return item.AWB == "AWB123" && item.AmountCollected.Equal(decimal.RequireFromString("1499.50"))
		}),
	).Return(batched, nil).Once()

	rem, err := suite.service.IngestEligibleShipment(suite.ctx, "AWB123", "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(rem)
	assert.Equal(suite.T(), "rem-1", rem.RemittanceID)
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockShipmentRepo.AssertExpectations(suite.T())
}

func (suite *RemittanceServiceTestSuite) TestIngestEligibleShipment_UnknownAWB() {
	suite.mockShipmentRepo.On("FindShipmentByAWB", suite.ctx, "AWB404").Return(nil, apperrors.ErrNotFound).Once()

	rem, err := suite.service.IngestEligibleShipment(suite.ctx, "AWB404", "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), rem)
	assert.ErrorIs(suite.T(), err, services.ErrAWBNotFound)
	suite.mockShipmentRepo.AssertExpectations(suite.T())
}

func (suite *RemittanceServiceTestSuite) TestIngestEligibleShipment_RejectsPrepaid() {
	shipment := deliveredCODShipment("AWB123")
	shipment.PaymentMode = domain.PaymentPrepaid

	suite.mockShipmentRepo.On("FindShipmentByAWB", suite.ctx, "AWB123").Return(shipment, nil).Once()

	rem, err := suite.service.IngestEligibleShipment(suite.ctx, "AWB123", "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), rem)
	assert.ErrorIs(suite.T(), err, services.ErrNotCOD)
	suite.mockRepo.AssertNotCalled(suite.T(), "AddLineItem", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RemittanceServiceTestSuite) TestIngestEligibleShipment_RejectsUndelivered() {
	shipment := deliveredCODShipment("AWB123")
	shipment.Status = domain.ShipmentInTransit
	shipment.DeliveredDate = nil

	suite.mockShipmentRepo.On("FindShipmentByAWB", suite.ctx, "AWB123").Return(shipment, nil).Once()

	rem, err := suite.service.IngestEligibleShipment(suite.ctx, "AWB123", "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), rem)
	assert.ErrorIs(suite.T(), err, services.ErrNotDelivered)
}

func (suite *RemittanceServiceTestSuite) TestIngestEligibleShipment_RejectsAlreadyRemitted() {
	shipment := deliveredCODShipment("AWB123")
	shipment.CODRemitted = true

	suite.mockShipmentRepo.On("FindShipmentByAWB", suite.ctx, "AWB123").Return(shipment, nil).Once()

	rem, err := suite.service.IngestEligibleShipment(suite.ctx, "AWB123", "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), rem)
	assert.ErrorIs(suite.T(), err, services.ErrAlreadyRemitted)
}

func (suite *RemittanceServiceTestSuite) TestIngestEligibleShipment_AlreadyBatched() {
	shipment := deliveredCODShipment("AWB123")

	suite.mockShipmentRepo.On("FindShipmentByAWB", suite.ctx, "AWB123").Return(shipment, nil).Once()
	suite.mockRepo.On("AddLineItem", suite.ctx, mock.AnythingOfType("domain.Remittance"),
		mock.AnythingOfType("domain.RemittanceLineItem")).Return(nil, apperrors.ErrAlreadyProcessed).Once()

	rem, err := suite.service.IngestEligibleShipment(suite.ctx, "AWB123", "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), rem)
	assert.ErrorIs(suite.T(), err, services.ErrAlreadyRemitted)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RemittanceServiceTestSuite) TestIngestEligibleShipment_RetriesNumberCollision() {
	shipment := deliveredCODShipment("AWB123")
	batched := &domain.Remittance{RemittanceID: "rem-2", ClientID: "client-1", Status: domain.RemittanceUpcoming}

	suite.mockShipmentRepo.On("FindShipmentByAWB", suite.ctx, "AWB123").Return(shipment, nil).Once()
	// The deterministic remittance number collides with an old settled batch;
	// the retry goes out with a suffixed number.
	suite.mockRepo.On("AddLineItem", suite.ctx, mock.AnythingOfType("domain.Remittance"),
		mock.AnythingOfType("domain.RemittanceLineItem")).Return(nil, apperrors.ErrDuplicate).Once()
	suite.mockRepo.On("AddLineItem", suite.ctx, mock.AnythingOfType("domain.Remittance"),
		mock.AnythingOfType("domain.RemittanceLineItem")).Return(batched, nil).Once()

	rem, err := suite.service.IngestEligibleShipment(suite.ctx, "AWB123", "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(rem)
	assert.Equal(suite.T(), "rem-2", rem.RemittanceID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RemittanceServiceTestSuite) TestMarkProcessing_Success() {
	upcoming := &domain.Remittance{RemittanceID: "rem-1", Status: domain.RemittanceUpcoming}
	processing := &domain.Remittance{RemittanceID: "rem-1", Status: domain.RemittanceProcessing}

	suite.mockRepo.On("FindRemittanceByID", suite.ctx, "rem-1").Return(upcoming, nil).Once()
	suite.mockRepo.On("UpdateRemittanceStatus", suite.ctx, "rem-1", domain.RemittanceUpcoming,
		domain.RemittanceProcessing, "user-1", mock.AnythingOfType("time.Time")).Return(true, nil).Once()
	suite.mockRepo.On("FindRemittanceByID", suite.ctx, "rem-1").Return(processing, nil).Once()

	rem, err := suite.service.MarkProcessing(suite.ctx, "rem-1", "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(rem)
	assert.Equal(suite.T(), domain.RemittanceProcessing, rem.Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RemittanceServiceTestSuite) TestMarkProcessing_RejectsSettled() {
	settled := &domain.Remittance{RemittanceID: "rem-1", Status: domain.RemittanceSettled}

	suite.mockRepo.On("FindRemittanceByID", suite.ctx, "rem-1").Return(settled, nil).Once()

	rem, err := suite.service.MarkProcessing(suite.ctx, "rem-1", "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), rem)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidStateTransition)

	var transitionErr *apperrors.StateTransitionError
	suite.Require().ErrorAs(err, &transitionErr)
	assert.Equal(suite.T(), string(domain.RemittanceSettled), transitionErr.FromState)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateRemittanceStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RemittanceServiceTestSuite) TestMarkProcessing_LostRace() {
	upcoming := &domain.Remittance{RemittanceID: "rem-1", Status: domain.RemittanceUpcoming}
	raced := &domain.Remittance{RemittanceID: "rem-1", Status: domain.RemittanceProcessing}

	suite.mockRepo.On("FindRemittanceByID", suite.ctx, "rem-1").Return(upcoming, nil).Once()
	suite.mockRepo.On("UpdateRemittanceStatus", suite.ctx, "rem-1", domain.RemittanceUpcoming,
		domain.RemittanceProcessing, "user-1", mock.AnythingOfType("time.Time")).Return(false, nil).Once()
	suite.mockRepo.On("FindRemittanceByID", suite.ctx, "rem-1").Return(raced, nil).Once()

	rem, err := suite.service.MarkProcessing(suite.ctx, "rem-1", "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), rem)

	var transitionErr *apperrors.StateTransitionError
	suite.Require().ErrorAs(err, &transitionErr)
	assert.Equal(suite.T(), string(domain.RemittanceProcessing), transitionErr.FromState)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RemittanceServiceTestSuite) TestSettle_RequiresBankReference() {
	rem, err := suite.service.Settle(suite.ctx, "rem-1", "   ", "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), rem)
	assert.ErrorIs(suite.T(), err, services.ErrBankReferenceMissing)
	suite.mockRepo.AssertNotCalled(suite.T(), "SettleRemittance",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RemittanceServiceTestSuite) TestSettle_RejectsUpcoming() {
	upcoming := &domain.Remittance{RemittanceID: "rem-1", Status: domain.RemittanceUpcoming}

	suite.mockRepo.On("FindRemittanceByID", suite.ctx, "rem-1").Return(upcoming, nil).Once()

	rem, err := suite.service.Settle(suite.ctx, "rem-1", "UTR-987", "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), rem)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidStateTransition)
}

func (suite *RemittanceServiceTestSuite) TestSettle_Success() {
	processing := &domain.Remittance{RemittanceID: "rem-1", Status: domain.RemittanceProcessing, TotalAmount: decimal.NewFromInt(1500)}
	settled := &domain.Remittance{RemittanceID: "rem-1", Status: domain.RemittanceSettled, BankReference: "UTR-987"}

	suite.mockRepo.On("FindRemittanceByID", suite.ctx, "rem-1").Return(processing, nil).Once()
	suite.mockRepo.On("SettleRemittance", suite.ctx, "rem-1", "UTR-987", "user-1",
		mock.AnythingOfType("time.Time")).Return(true, nil).Once()
	suite.mockRepo.On("FindRemittanceByID", suite.ctx, "rem-1").Return(settled, nil).Once()

	rem, err := suite.service.Settle(suite.ctx, "rem-1", " UTR-987 ", "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(rem)
	assert.Equal(suite.T(), domain.RemittanceSettled, rem.Status)
	assert.Equal(suite.T(), "UTR-987", rem.BankReference)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RemittanceServiceTestSuite) TestSettle_LostRace() {
	processing := &domain.Remittance{RemittanceID: "rem-1", Status: domain.RemittanceProcessing}
	raced := &domain.Remittance{RemittanceID: "rem-1", Status: domain.RemittanceSettled}

	suite.mockRepo.On("FindRemittanceByID", suite.ctx, "rem-1").Return(processing, nil).Once()
	suite.mockRepo.On("SettleRemittance", suite.ctx, "rem-1", "UTR-987", "user-1",
		mock.AnythingOfType("time.Time")).Return(false, nil).Once()
	suite.mockRepo.On("FindRemittanceByID", suite.ctx, "rem-1").Return(raced, nil).Once()

	rem, err := suite.service.Settle(suite.ctx, "rem-1", "UTR-987", "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), rem)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidStateTransition)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RemittanceServiceTestSuite) TestRemoveLineItem_RejectsSettled() {
	settled := &domain.Remittance{RemittanceID: "rem-1", Status: domain.RemittanceSettled}

	suite.mockRepo.On("FindRemittanceByID", suite.ctx, "rem-1").Return(settled, nil).Once()

	rem, deleted, err := suite.service.RemoveLineItem(suite.ctx, "rem-1", "AWB123", "user-1")

	suite.Require().Error(err)
	assert.Nil(suite.T(), rem)
	assert.False(suite.T(), deleted)
	assert.ErrorIs(suite.T(), err, services.ErrCannotModifySettled)
	suite.mockRepo.AssertNotCalled(suite.T(), "RemoveLineItem",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RemittanceServiceTestSuite) TestRemoveLineItem_Success() {
	upcoming := &domain.Remittance{RemittanceID: "rem-1", Status: domain.RemittanceUpcoming, TotalAmount: decimal.NewFromInt(2000)}
	updated := &domain.Remittance{RemittanceID: "rem-1", Status: domain.RemittanceUpcoming, TotalAmount: decimal.NewFromInt(500)}

	suite.mockRepo.On("FindRemittanceByID", suite.ctx, "rem-1").Return(upcoming, nil).Once()
	suite.mockRepo.On("RemoveLineItem", suite.ctx, "rem-1", "AWB123", "user-1",
		mock.AnythingOfType("time.Time")).Return(updated, false, nil).Once()

	rem, deleted, err := suite.service.RemoveLineItem(suite.ctx, "rem-1", "AWB123", "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(rem)
	assert.False(suite.T(), deleted)
	assert.True(suite.T(), rem.TotalAmount.Equal(decimal.NewFromInt(500)))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RemittanceServiceTestSuite) TestRemoveLineItem_LastItemDeletesBatch() {
	upcoming := &domain.Remittance{RemittanceID: "rem-1", Status: domain.RemittanceUpcoming}

	suite.mockRepo.On("FindRemittanceByID", suite.ctx, "rem-1").Return(upcoming, nil).Once()
	suite.mockRepo.On("RemoveLineItem", suite.ctx, "rem-1", "AWB123", "user-1",
		mock.AnythingOfType("time.Time")).Return(nil, true, nil).Once()

	rem, deleted, err := suite.service.RemoveLineItem(suite.ctx, "rem-1", "AWB123", "user-1")

	suite.Require().NoError(err)
	assert.Nil(suite.T(), rem)
	assert.True(suite.T(), deleted)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RemittanceServiceTestSuite) TestRollForwardOverdue() {
	now := time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC) // Monday
	today := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	nextFriday := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	overdue := []domain.Remittance{
		{RemittanceID: "rem-1", Status: domain.RemittanceUpcoming, SettlementDate: time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)},
		{RemittanceID: "rem-2", Status: domain.RemittanceUpcoming, SettlementDate: time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC)},
	}

	suite.mockRepo.On("ListOverdueUpcoming", suite.ctx, today).Return(overdue, nil).Once()
	suite.mockRepo.On("UpdateSettlementDate", suite.ctx, "rem-1", nextFriday, "system", now).Return(nil).Once()
	// One batch fails to move; the sweep continues and reports what it rolled.
	suite.mockRepo.On("UpdateSettlementDate", suite.ctx, "rem-2", nextFriday, "system", now).Return(assert.AnError).Once()

	rolled, err := suite.service.RollForwardOverdue(suite.ctx, now, "system")

	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, rolled)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RemittanceServiceTestSuite) TestRollForwardOverdue_NothingOverdue() {
	now := time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)
	today := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	suite.mockRepo.On("ListOverdueUpcoming", suite.ctx, today).Return([]domain.Remittance{}, nil).Once()

	rolled, err := suite.service.RollForwardOverdue(suite.ctx, now, "system")

	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, rolled)
	suite.mockRepo.AssertExpectations(suite.T())
}
