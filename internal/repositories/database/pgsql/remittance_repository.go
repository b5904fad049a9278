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
	"github.com/shopspring/decimal"
)

const remittanceColumns = `remittance_id, remittance_number, client_id, settlement_date, status,
	       total_amount, bank_reference, settled_by, settled_at,
	       created_at, created_by, last_updated_at, last_updated_by`

type PgxRemittanceRepository struct {
	BaseRepository
}

// newPgxRemittanceRepository creates a new repository for COD payout batches.
func newPgxRemittanceRepository(pool *pgxpool.Pool) portsrepo.RemittanceRepository {
	return &PgxRemittanceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.RemittanceRepository = (*PgxRemittanceRepository)(nil)

// AddLineItem appends one delivered COD shipment to the open batch for the
// candidate's (client, settlement date) key, creating the batch when none
// exists. The open batch row is locked for the duration so concurrent
// ingestions for the same key serialize and the running total stays exact.
func (r *PgxRemittanceRepository) AddLineItem(ctx context.Context, candidate domain.Remittance, item domain.RemittanceLineItem) (*domain.Remittance, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	var remittanceID string
	lockQuery := `
		SELECT remittance_id
		FROM remittances
		WHERE client_id = $1 AND settlement_date = $2 AND status != 'SETTLED'
		FOR UPDATE;
	`
	err = tx.QueryRow(ctx, lockQuery, candidate.ClientID, candidate.SettlementDate).Scan(&remittanceID)
	if errors.Is(err, pgx.ErrNoRows) {
		modelRem := mapping.ToModelRemittance(candidate)
		insertQuery := `
			INSERT INTO remittances (
				remittance_id, remittance_number, client_id, settlement_date, status,
				total_amount, created_at, created_by, last_updated_at, last_updated_by
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
		`
		_, err = tx.Exec(ctx, insertQuery,
			modelRem.RemittanceID,
			modelRem.RemittanceNumber,
			modelRem.ClientID,
			modelRem.SettlementDate,
			modelRem.Status,
			modelRem.TotalAmount,
			modelRem.CreatedAt,
			modelRem.CreatedBy,
			modelRem.LastUpdatedAt,
			modelRem.LastUpdatedBy,
		)
		if err != nil {
			// Either the deterministic number collides with an older settled
			// batch, or a concurrent creator won the open-batch key. The
			// caller retries both the same way.
			if _, ok := isUniqueViolation(err); ok {
				return nil, apperrors.ErrDuplicate
			}
			return nil, apperrors.NewAppError(500, "failed to insert remittance "+modelRem.RemittanceID, err)
		}
		remittanceID = modelRem.RemittanceID
	} else if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock open remittance for client "+candidate.ClientID, err)
	}

	itemQuery := `
		INSERT INTO remittance_items (remittance_id, awb, amount_collected, order_ref, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err = tx.Exec(ctx, itemQuery,
		remittanceID,
		item.AWB,
		item.AmountCollected,
		item.OrderRef,
		candidate.CreatedAt,
		candidate.CreatedBy,
	)
	if err != nil {
		// The AWB already sits in some batch (global unique) or in this one (PK).
		if _, ok := isUniqueViolation(err); ok {
			return nil, apperrors.ErrAlreadyProcessed
		}
		return nil, apperrors.NewAppError(500, "failed to insert remittance item "+item.AWB, err)
	}

	totalQuery := `
		UPDATE remittances
		SET total_amount = total_amount + $2, last_updated_at = $3, last_updated_by = $4
		WHERE remittance_id = $1;
	`
	if _, err := tx.Exec(ctx, totalQuery, remittanceID, item.AmountCollected, candidate.LastUpdatedAt, candidate.LastUpdatedBy); err != nil {
		return nil, apperrors.NewAppError(500, "failed to update remittance total "+remittanceID, err)
	}

	rem, err := findRemittanceByIDTx(ctx, tx, remittanceID)
	if err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return rem, nil
}

// RemoveLineItem removes one AWB from a non-settled batch. When the last item
// goes, the batch row goes with it.
func (r *PgxRemittanceRepository) RemoveLineItem(ctx context.Context, remittanceID, awb, userID string, at time.Time) (*domain.Remittance, bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer r.Rollback(ctx, tx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM remittances WHERE remittance_id = $1 FOR UPDATE;`, remittanceID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, apperrors.ErrNotFound
		}
		return nil, false, apperrors.NewAppError(500, "failed to lock remittance "+remittanceID, err)
	}
	if domain.RemittanceStatus(status) == domain.RemittanceSettled {
		return nil, false, &apperrors.StateTransitionError{
			Entity:    "remittance",
			EntityID:  remittanceID,
			FromState: status,
			ToState:   status,
		}
	}

	var amount decimal.Decimal
	deleteQuery := `
		DELETE FROM remittance_items
		WHERE remittance_id = $1 AND awb = $2
		RETURNING amount_collected;
	`
	if err := tx.QueryRow(ctx, deleteQuery, remittanceID, awb).Scan(&amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, apperrors.ErrNotFound
		}
		return nil, false, apperrors.NewAppError(500, "failed to delete remittance item "+awb, err)
	}

	var remaining int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM remittance_items WHERE remittance_id = $1;`, remittanceID).Scan(&remaining); err != nil {
		return nil, false, apperrors.NewAppError(500, "failed to count remittance items "+remittanceID, err)
	}

	if remaining == 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM remittances WHERE remittance_id = $1;`, remittanceID); err != nil {
			return nil, false, apperrors.NewAppError(500, "failed to delete empty remittance "+remittanceID, err)
		}
		if err := r.Commit(ctx, tx); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}

	totalQuery := `
		UPDATE remittances
		SET total_amount = total_amount - $2, last_updated_at = $3, last_updated_by = $4
		WHERE remittance_id = $1;
	`
	if _, err := tx.Exec(ctx, totalQuery, remittanceID, amount, at, userID); err != nil {
		return nil, false, apperrors.NewAppError(500, "failed to update remittance total "+remittanceID, err)
	}

	rem, err := findRemittanceByIDTx(ctx, tx, remittanceID)
	if err != nil {
		return nil, false, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, false, err
	}
	return rem, false, nil
}

type remittanceQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func scanRemittance(row pgx.Row) (*models.Remittance, error) {
	var m models.Remittance
	err := row.Scan(
		&m.RemittanceID,
		&m.RemittanceNumber,
		&m.ClientID,
		&m.SettlementDate,
		&m.Status,
		&m.TotalAmount,
		&m.BankReference,
		&m.SettledBy,
		&m.SettledAt,
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

func loadRemittance(ctx context.Context, q remittanceQuerier, query string, args ...interface{}) (*domain.Remittance, error) {
	m, err := scanRemittance(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	itemsQuery := `
		SELECT remittance_id, awb, amount_collected, order_ref, created_at, created_by
		FROM remittance_items
		WHERE remittance_id = $1
		ORDER BY created_at, awb;
	`
	rows, err := q.Query(ctx, itemsQuery, m.RemittanceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query remittance items "+m.RemittanceID, err)
	}
	defer rows.Close()

	rem := mapping.ToDomainRemittance(*m)
	for rows.Next() {
		var item models.RemittanceItem
		if err := rows.Scan(&item.RemittanceID, &item.AWB, &item.AmountCollected, &item.OrderRef, &item.CreatedAt, &item.CreatedBy); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan remittance item for "+m.RemittanceID, err)
		}
		rem.LineItems = append(rem.LineItems, mapping.ToDomainRemittanceLineItem(item))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating remittance items for "+m.RemittanceID, err)
	}
	return &rem, nil
}

func findRemittanceByIDTx(ctx context.Context, tx pgx.Tx, remittanceID string) (*domain.Remittance, error) {
	query := `
		SELECT ` + remittanceColumns + `
		FROM remittances
		WHERE remittance_id = $1;
	`
	rem, err := loadRemittance(ctx, tx, query, remittanceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find remittance "+remittanceID, err)
	}
	return rem, nil
}

// FindRemittanceByID retrieves a batch with its line items.
func (r *PgxRemittanceRepository) FindRemittanceByID(ctx context.Context, remittanceID string) (*domain.Remittance, error) {
	query := `
		SELECT ` + remittanceColumns + `
		FROM remittances
		WHERE remittance_id = $1;
	`
	rem, err := loadRemittance(ctx, r.Pool, query, remittanceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find remittance "+remittanceID, err)
	}
	return rem, nil
}

// FindOpenRemittanceByKey returns the non-settled batch for the key, or
// (nil, nil) when there is none.
func (r *PgxRemittanceRepository) FindOpenRemittanceByKey(ctx context.Context, clientID string, settlementDate time.Time) (*domain.Remittance, error) {
	query := `
		SELECT ` + remittanceColumns + `
		FROM remittances
		WHERE client_id = $1 AND settlement_date = $2 AND status != 'SETTLED';
	`
	rem, err := loadRemittance(ctx, r.Pool, query, clientID, settlementDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewAppError(500, "failed to find open remittance for client "+clientID, err)
	}
	return rem, nil
}

// UpdateRemittanceStatus performs a compare-and-set transition and reports
// whether a row moved.
func (r *PgxRemittanceRepository) UpdateRemittanceStatus(ctx context.Context, remittanceID string, from, to domain.RemittanceStatus, userID string, at time.Time) (bool, error) {
	query := `
		UPDATE remittances
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE remittance_id = $1 AND status = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, remittanceID, string(from), string(to), at, userID)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to update remittance status "+remittanceID, err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// SettleRemittance moves a PROCESSING batch to SETTLED and stamps every
// line-item shipment remitted, all in one database transaction.
func (r *PgxRemittanceRepository) SettleRemittance(ctx context.Context, remittanceID, bankReference, userID string, at time.Time) (bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	settleQuery := `
		UPDATE remittances
		SET status = 'SETTLED', bank_reference = $2, settled_by = $3, settled_at = $4,
		    last_updated_at = $4, last_updated_by = $3
		WHERE remittance_id = $1 AND status = 'PROCESSING';
	`
	cmdTag, err := tx.Exec(ctx, settleQuery, remittanceID, bankReference, userID, at)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to settle remittance "+remittanceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM remittances WHERE remittance_id = $1);`, remittanceID).Scan(&exists); err != nil {
			return false, apperrors.NewAppError(500, "failed to check remittance "+remittanceID, err)
		}
		if !exists {
			return false, apperrors.ErrNotFound
		}
		return false, nil
	}

	markQuery := `
		UPDATE shipments
		SET cod_remitted = TRUE, remitted_at = $2, remittance_reference = $3,
		    last_updated_at = $2, last_updated_by = $4
		WHERE awb IN (SELECT awb FROM remittance_items WHERE remittance_id = $1);
	`
	if _, err := tx.Exec(ctx, markQuery, remittanceID, at, bankReference, userID); err != nil {
		return false, apperrors.NewAppError(500, "failed to mark shipments remitted for "+remittanceID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return true, nil
}

// ListRemittancesByClient retrieves a paginated list of batches for a client,
// newest settlement date first, without line items.
func (r *PgxRemittanceRepository) ListRemittancesByClient(ctx context.Context, clientID string, limit int, nextToken *string) ([]domain.Remittance, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + remittanceColumns + `
		FROM remittances
		WHERE client_id = $1
	`
	orderByClause := `ORDER BY created_at DESC, remittance_id DESC`

	args := []interface{}{clientID}
	query := baseQuery

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (created_at, remittance_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastID)
	}

	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query remittances for client "+clientID, err)
	}
	defer rows.Close()

	modelRems := make([]models.Remittance, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanRemittance(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan remittance row for client "+clientID, scanErr)
		}
		modelRems = append(modelRems, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating remittance rows for client "+clientID, err)
	}

	var nextTokenVal *string
	results := modelRems
	if len(modelRems) > limit {
		last := modelRems[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.RemittanceID)
		nextTokenVal = &token
		results = modelRems[:limit]
	}

	domainRems := make([]domain.Remittance, len(results))
	for i, m := range results {
		domainRems[i] = mapping.ToDomainRemittance(m)
	}
	return domainRems, nextTokenVal, nil
}

// ListOverdueUpcoming returns UPCOMING batches with a settlement date strictly
// before the given day.
func (r *PgxRemittanceRepository) ListOverdueUpcoming(ctx context.Context, before time.Time) ([]domain.Remittance, error) {
	query := `
		SELECT ` + remittanceColumns + `
		FROM remittances
		WHERE status = 'UPCOMING' AND settlement_date < $1
		ORDER BY settlement_date, remittance_id;
	`
	rows, err := r.Pool.Query(ctx, query, before)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query overdue remittances", err)
	}
	defer rows.Close()

	var domainRems []domain.Remittance
	for rows.Next() {
		m, scanErr := scanRemittance(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan overdue remittance row", scanErr)
		}
		domainRems = append(domainRems, mapping.ToDomainRemittance(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating overdue remittance rows", err)
	}
	return domainRems, nil
}

// UpdateSettlementDate moves a batch to a new settlement date. A unique
// violation means another open batch already occupies the target key.
func (r *PgxRemittanceRepository) UpdateSettlementDate(ctx context.Context, remittanceID string, newDate time.Time, userID string, at time.Time) error {
	query := `
		UPDATE remittances
		SET settlement_date = $2, last_updated_at = $3, last_updated_by = $4
		WHERE remittance_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, remittanceID, newDate, at, userID)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to update settlement date for "+remittanceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
