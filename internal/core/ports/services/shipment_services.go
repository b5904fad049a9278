package services

import (
	"context"
	"time"

	"github.com/shipdesk/settlement-core/internal/core/domain"
	"github.com/shipdesk/settlement-core/internal/dto"
)

// ShipmentSvcFacade maintains the shipment fact projection.
type ShipmentSvcFacade interface {
	RegisterShipment(ctx context.Context, req dto.RegisterShipmentRequest, userID string) (*domain.Shipment, error)
	MarkDelivered(ctx context.Context, awb string, deliveredAt time.Time, userID string) (*domain.Shipment, error)
	GetShipmentByAWB(ctx context.Context, awb string) (*domain.Shipment, error)
}
