package services

import (
	"context"
	"time"

	"github.com/shipdesk/settlement-core/internal/core/domain"
	"github.com/shipdesk/settlement-core/internal/dto"
)

// RemittanceSvcFacade groups delivered COD shipments into payable batches and
// drives them through the settlement lifecycle.
type RemittanceSvcFacade interface {
	// IngestEligibleShipment pulls one delivered COD shipment into the open
	// batch for its (client, settlement date) key, creating the batch lazily.
	IngestEligibleShipment(ctx context.Context, awb, userID string) (*domain.Remittance, error)

	MarkProcessing(ctx context.Context, remittanceID, userID string) (*domain.Remittance, error)
	Settle(ctx context.Context, remittanceID, bankReference, userID string) (*domain.Remittance, error)

	// RemoveLineItem drops one AWB from a non-settled batch. deleted reports
	// that the last item was removed and the batch no longer exists.
	RemoveLineItem(ctx context.Context, remittanceID, awb, userID string) (rem *domain.Remittance, deleted bool, err error)

	GetRemittanceByID(ctx context.Context, remittanceID string) (*domain.Remittance, error)
	ListRemittancesByClient(ctx context.Context, clientID string, params dto.ListRemittancesParams) (*dto.ListRemittancesResponse, error)

	// RollForwardOverdue advances UPCOMING batches whose settlement date has
	// passed to the next cutoff. Invoked by the scheduler; re-entrant.
	RollForwardOverdue(ctx context.Context, now time.Time, userID string) (int, error)
}
