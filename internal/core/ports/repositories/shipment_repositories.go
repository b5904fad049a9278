package repositories

import (
	"context"
	"time"

	"github.com/shipdesk/settlement-core/internal/core/domain"
)

// ShipmentRepository persists the shipment fact projection fed by the carrier
// boundary. The remitted flag and reference are written by the remittance
// repository at settlement time, never here.
type ShipmentRepository interface {
	SaveShipment(ctx context.Context, shipment domain.Shipment) error
	FindShipmentByAWB(ctx context.Context, awb string) (*domain.Shipment, error)
	MarkDelivered(ctx context.Context, awb string, deliveredAt time.Time, userID string) error
}
