package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shipdesk/settlement-core/internal/apperrors"
	"github.com/shipdesk/settlement-core/internal/core/domain"
	portsrepo "github.com/shipdesk/settlement-core/internal/core/ports/repositories"
	"github.com/shipdesk/settlement-core/internal/models"
	"github.com/shipdesk/settlement-core/internal/utils/mapping"
	"github.com/shipdesk/settlement-core/internal/utils/pagination"
)

const discrepancyColumns = `discrepancy_id, awb, client_id, order_ref, claimed_weight, carrier_weight,
	       weight_delta, deduction_amount, dispute_status, dispute_raised_at, resolution,
	       charge_transaction_ref, refund_transaction_ref,
	       created_at, created_by, last_updated_at, last_updated_by`

type PgxDiscrepancyRepository struct {
	BaseRepository
}

// newPgxDiscrepancyRepository creates a new repository for weight discrepancies.
func newPgxDiscrepancyRepository(pool *pgxpool.Pool) portsrepo.DiscrepancyRepository {
	return &PgxDiscrepancyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.DiscrepancyRepository = (*PgxDiscrepancyRepository)(nil)

// SaveDiscrepancyWithCharge inserts the discrepancy and commits its deduction
// through the ledger in one database transaction. An insufficient-funds
// rejection rolls the record back with the charge.
func (r *PgxDiscrepancyRepository) SaveDiscrepancyWithCharge(ctx context.Context, wd domain.WeightDiscrepancy, charge *domain.Transaction) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelWeightDiscrepancy(wd)
	insertQuery := `
		INSERT INTO weight_discrepancies (
			discrepancy_id, awb, client_id, order_ref, claimed_weight, carrier_weight,
			weight_delta, deduction_amount, dispute_status, dispute_raised_at, resolution,
			charge_transaction_ref, refund_transaction_ref,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err = tx.Exec(ctx, insertQuery,
		m.DiscrepancyID,
		m.AWB,
		m.ClientID,
		m.OrderRef,
		m.ClaimedWeight,
		m.CarrierWeight,
		m.WeightDelta,
		m.DeductionAmount,
		m.DisputeStatus,
		m.DisputeRaisedAt,
		m.Resolution,
		m.ChargeTransactionRef,
		m.RefundTransactionRef,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return nil, apperrors.ErrAlreadyProcessed
		}
		return nil, apperrors.NewAppError(500, "failed to insert discrepancy "+m.DiscrepancyID, err)
	}

	var committed *domain.Transaction
	if charge != nil {
		committed, err = applyTransactionTx(ctx, tx, *charge)
		if err != nil {
			return nil, err
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return committed, nil
}

// FindDiscrepancyByID retrieves a discrepancy by its primary key.
func (r *PgxDiscrepancyRepository) FindDiscrepancyByID(ctx context.Context, discrepancyID string) (*domain.WeightDiscrepancy, error) {
	wd, err := r.findOne(ctx, "discrepancy_id", discrepancyID)
	if err != nil {
		return nil, err
	}
	if wd == nil {
		return nil, apperrors.ErrNotFound
	}
	return wd, nil
}

// FindDiscrepancyByAWB returns (nil, nil) when the AWB carries no record.
func (r *PgxDiscrepancyRepository) FindDiscrepancyByAWB(ctx context.Context, awb string) (*domain.WeightDiscrepancy, error) {
	return r.findOne(ctx, "awb", awb)
}

func (r *PgxDiscrepancyRepository) findOne(ctx context.Context, column, value string) (*domain.WeightDiscrepancy, error) {
	query := `
		SELECT ` + discrepancyColumns + `
		FROM weight_discrepancies
		WHERE ` + column + ` = $1;
	`
	m, err := scanDiscrepancy(r.Pool.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewAppError(500, "failed to find discrepancy by "+column, err)
	}
	wd := mapping.ToDomainWeightDiscrepancy(*m)
	return &wd, nil
}

func scanDiscrepancy(row pgx.Row) (*models.WeightDiscrepancy, error) {
	var m models.WeightDiscrepancy
	err := row.Scan(
		&m.DiscrepancyID,
		&m.AWB,
		&m.ClientID,
		&m.OrderRef,
		&m.ClaimedWeight,
		&m.CarrierWeight,
		&m.WeightDelta,
		&m.DeductionAmount,
		&m.DisputeStatus,
		&m.DisputeRaisedAt,
		&m.Resolution,
		&m.ChargeTransactionRef,
		&m.RefundTransactionRef,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkDisputed performs the NEW to DISPUTED compare-and-set.
func (r *PgxDiscrepancyRepository) MarkDisputed(ctx context.Context, discrepancyID string, raisedAt time.Time, userID string) (bool, error) {
	query := `
		UPDATE weight_discrepancies
		SET dispute_status = 'DISPUTED', dispute_raised_at = $2, last_updated_at = $2, last_updated_by = $3
		WHERE discrepancy_id = $1 AND dispute_status = 'NEW';
	`
	cmdTag, err := r.Pool.Exec(ctx, query, discrepancyID, raisedAt, userID)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to mark discrepancy disputed "+discrepancyID, err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// FinalizeDiscrepancy performs the DISPUTED to FINALIZED compare-and-set and,
// when a refund is supplied, commits it through the ledger in the same
// database transaction. No money moves on a lost compare-and-set.
func (r *PgxDiscrepancyRepository) FinalizeDiscrepancy(ctx context.Context, discrepancyID string, resolution domain.DisputeResolution, refund *domain.Transaction, userID string, at time.Time) (*domain.Transaction, bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer r.Rollback(ctx, tx)

	casQuery := `
		UPDATE weight_discrepancies
		SET dispute_status = 'FINALIZED', resolution = $2, last_updated_at = $3, last_updated_by = $4
		WHERE discrepancy_id = $1 AND dispute_status = 'DISPUTED';
	`
	cmdTag, err := tx.Exec(ctx, casQuery, discrepancyID, string(resolution), at, userID)
	if err != nil {
		return nil, false, apperrors.NewAppError(500, "failed to finalize discrepancy "+discrepancyID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, false, nil
	}

	var refunded *domain.Transaction
	if refund != nil {
		refunded, err = applyTransactionTx(ctx, tx, *refund)
		if err != nil {
			return nil, false, err
		}
		refQuery := `
			UPDATE weight_discrepancies
			SET refund_transaction_ref = $2
			WHERE discrepancy_id = $1;
		`
		if _, err := tx.Exec(ctx, refQuery, discrepancyID, refunded.TransactionID); err != nil {
			return nil, false, apperrors.NewAppError(500, "failed to record refund ref on discrepancy "+discrepancyID, err)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, false, err
	}
	return refunded, true, nil
}

// ExpireStaleDisputes finalizes every dispute raised before cutoff with
// resolution EXPIRED. The WHERE clause is the re-entrancy guard.
func (r *PgxDiscrepancyRepository) ExpireStaleDisputes(ctx context.Context, cutoff time.Time, userID string, at time.Time) (int64, error) {
	query := `
		UPDATE weight_discrepancies
		SET dispute_status = 'FINALIZED', resolution = 'EXPIRED', last_updated_at = $2, last_updated_by = $3
		WHERE dispute_status = 'DISPUTED' AND dispute_raised_at < $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, cutoff, at, userID)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to expire stale disputes", err)
	}
	return cmdTag.RowsAffected(), nil
}

// ListDiscrepanciesByClient retrieves a paginated list of a client's
// discrepancies, newest first.
func (r *PgxDiscrepancyRepository) ListDiscrepanciesByClient(ctx context.Context, clientID string, limit int, nextToken *string) ([]domain.WeightDiscrepancy, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + discrepancyColumns + `
		FROM weight_discrepancies
		WHERE client_id = $1
	`
	orderByClause := `ORDER BY created_at DESC, discrepancy_id DESC`

	args := []interface{}{clientID}
	query := baseQuery

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (created_at, discrepancy_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastID)
	}

	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query discrepancies for client "+clientID, err)
	}
	defer rows.Close()

	modelWds := make([]models.WeightDiscrepancy, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanDiscrepancy(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan discrepancy row for client "+clientID, scanErr)
		}
		modelWds = append(modelWds, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating discrepancy rows for client "+clientID, err)
	}

	var nextTokenVal *string
	results := modelWds
	if len(modelWds) > limit {
		last := modelWds[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.DiscrepancyID)
		nextTokenVal = &token
		results = modelWds[:limit]
	}

	domainWds := make([]domain.WeightDiscrepancy, len(results))
	for i, m := range results {
		domainWds[i] = mapping.ToDomainWeightDiscrepancy(m)
	}
	return domainWds, nextTokenVal, nil
}
