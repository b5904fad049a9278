package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shipdesk/settlement-core/internal/apperrors"
	"github.com/shipdesk/settlement-core/internal/core/domain"
	portsrepo "github.com/shipdesk/settlement-core/internal/core/ports/repositories"
	"github.com/shipdesk/settlement-core/internal/models"
	"github.com/shipdesk/settlement-core/internal/utils/mapping"
)

type PgxShipmentRepository struct {
	BaseRepository
}

// newPgxShipmentRepository creates a new repository for shipment facts.
func newPgxShipmentRepository(pool *pgxpool.Pool) portsrepo.ShipmentRepository {
	return &PgxShipmentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ShipmentRepository = (*PgxShipmentRepository)(nil)

// SaveShipment inserts a new shipment fact row keyed by AWB.
func (r *PgxShipmentRepository) SaveShipment(ctx context.Context, shipment domain.Shipment) error {
	m := mapping.ToModelShipment(shipment)
	query := `
		INSERT INTO shipments (
			awb, client_id, order_ref, payment_mode, status, delivered_date,
			cod_amount, cod_remitted, remitted_at, remittance_reference,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AWB,
		m.ClientID,
		m.OrderRef,
		m.PaymentMode,
		m.Status,
		m.DeliveredDate,
		m.CODAmount,
		m.CODRemitted,
		m.RemittedAt,
		m.RemittanceReference,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert shipment "+m.AWB, err)
	}
	return nil
}

// FindShipmentByAWB retrieves one shipment fact.
func (r *PgxShipmentRepository) FindShipmentByAWB(ctx context.Context, awb string) (*domain.Shipment, error) {
	query := `
		SELECT awb, client_id, order_ref, payment_mode, status, delivered_date,
		       cod_amount, cod_remitted, remitted_at, remittance_reference,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM shipments
		WHERE awb = $1;
	`
	var m models.Shipment
	err := r.Pool.QueryRow(ctx, query, awb).Scan(
		&m.AWB,
		&m.ClientID,
		&m.OrderRef,
		&m.PaymentMode,
		&m.Status,
		&m.DeliveredDate,
		&m.CODAmount,
		&m.CODRemitted,
		&m.RemittedAt,
		&m.RemittanceReference,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find shipment "+awb, err)
	}
	shipment := mapping.ToDomainShipment(m)
	return &shipment, nil
}

// MarkDelivered records the carrier delivery event for an AWB.
func (r *PgxShipmentRepository) MarkDelivered(ctx context.Context, awb string, deliveredAt time.Time, userID string) error {
	query := `
		UPDATE shipments
		SET status = 'DELIVERED', delivered_date = $2, last_updated_at = $3, last_updated_by = $4
		WHERE awb = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, awb, deliveredAt, time.Now().UTC(), userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark shipment delivered "+awb, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
