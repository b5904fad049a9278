package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shipdesk/settlement-core/internal/apperrors"
	"github.com/shipdesk/settlement-core/internal/core/domain"
	portsrepo "github.com/shipdesk/settlement-core/internal/core/ports/repositories"
	portssvc "github.com/shipdesk/settlement-core/internal/core/ports/services"
	"github.com/shipdesk/settlement-core/internal/dto"
	"github.com/shipdesk/settlement-core/internal/middleware"
	"github.com/shopspring/decimal"
)

// shipmentService maintains the shipment fact projection fed by the carrier
// boundary.
type shipmentService struct {
	shipmentRepo portsrepo.ShipmentRepository
}

// NewShipmentService creates a new shipment service.
func NewShipmentService(shipmentRepo portsrepo.ShipmentRepository) portssvc.ShipmentSvcFacade {
	return &shipmentService{shipmentRepo: shipmentRepo}
}

var _ portssvc.ShipmentSvcFacade = (*shipmentService)(nil)

func (s *shipmentService) RegisterShipment(ctx context.Context, req dto.RegisterShipmentRequest, userID string) (*domain.Shipment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.PaymentMode == domain.PaymentCOD && req.CODAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: cod amount must be positive for COD shipments", apperrors.ErrValidation)
	}

	status := req.Status
	if status == "" {
		status = domain.ShipmentInTransit
	}
	deliveredAt := req.DeliveredAt
	if status == domain.ShipmentDelivered && deliveredAt == nil {
		now := time.Now().UTC()
		deliveredAt = &now
	}

	now := time.Now().UTC()
	shipment := domain.Shipment{
		AWB:           req.AWB,
		ClientID:      req.ClientID,
		OrderRef:      req.OrderRef,
		PaymentMode:   req.PaymentMode,
		Status:        status,
		DeliveredDate: deliveredAt,
		CODAmount:     roundMoney(req.CODAmount),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.shipmentRepo.SaveShipment(ctx, shipment); err != nil {
		logger.Error("Failed to save shipment", slog.String("error", err.Error()), slog.String("awb", req.AWB))
		return nil, err
	}

	logger.Info("Shipment registered", slog.String("awb", shipment.AWB), slog.String("client_id", shipment.ClientID))
	return &shipment, nil
}

func (s *shipmentService) MarkDelivered(ctx context.Context, awb string, deliveredAt time.Time, userID string) (*domain.Shipment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.shipmentRepo.MarkDelivered(ctx, awb, deliveredAt.UTC(), userID); err != nil {
		return nil, err
	}

	logger.Info("Shipment marked delivered", slog.String("awb", awb))
	return s.shipmentRepo.FindShipmentByAWB(ctx, awb)
}

func (s *shipmentService) GetShipmentByAWB(ctx context.Context, awb string) (*domain.Shipment, error) {
	return s.shipmentRepo.FindShipmentByAWB(ctx, awb)
}
