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

const transactionColumns = `transaction_id, account_id, transaction_type, category, amount,
	       opening_balance, closing_balance, idempotency_key, related_entity_ref, status,
	       created_at, created_by, last_updated_at, last_updated_by`

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for wallet accounts and the
// transaction log.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepository {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

// SaveAccount inserts a new wallet row.
func (r *PgxLedgerRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	modelAccount := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (
			account_id, client_id, name, current_balance, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelAccount.AccountID,
		modelAccount.ClientID,
		modelAccount.Name,
		modelAccount.CurrentBalance,
		modelAccount.IsActive,
		modelAccount.CreatedAt,
		modelAccount.CreatedBy,
		modelAccount.LastUpdatedAt,
		modelAccount.LastUpdatedBy,
	)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert account "+modelAccount.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves a wallet by its primary key.
func (r *PgxLedgerRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findAccount(ctx, "account_id", accountID)
}

// FindAccountByClientID retrieves a client's wallet. One wallet exists per client.
func (r *PgxLedgerRepository) FindAccountByClientID(ctx context.Context, clientID string) (*domain.Account, error) {
	return r.findAccount(ctx, "client_id", clientID)
}

func (r *PgxLedgerRepository) findAccount(ctx context.Context, column, value string) (*domain.Account, error) {
	query := `
		SELECT account_id, client_id, name, current_balance, is_active,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM accounts
		WHERE ` + column + ` = $1;
	`
	var m models.Account
	err := r.Pool.QueryRow(ctx, query, value).Scan(
		&m.AccountID,
		&m.ClientID,
		&m.Name,
		&m.CurrentBalance,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account by "+column, err)
	}
	domainAccount := mapping.ToDomainAccount(m)
	return &domainAccount, nil
}

// applyTransactionTx commits one ledger entry inside an existing database
// transaction. It locks the account row, recomputes the opening and closing
// balance under the lock, rejects overdrawing debits, inserts the entry and
// updates the cached balance. All money movement in the service funnels
// through this one function so the balance invariant cannot be bypassed.
func applyTransactionTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) (*domain.Transaction, error) {
	var opening decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT current_balance FROM accounts WHERE account_id = $1 FOR UPDATE;`, txn.AccountID).Scan(&opening)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock account "+txn.AccountID, err)
	}

	closing := opening.Add(txn.SignedAmount())
	if txn.TransactionType == domain.Debit && closing.IsNegative() {
		return nil, &apperrors.InsufficientFundsError{
			AccountID: txn.AccountID,
			Balance:   opening,
			Requested: txn.Amount,
		}
	}

	txn.OpeningBalance = opening
	txn.ClosingBalance = closing
	modelTxn := mapping.ToModelTransaction(txn)

	insertQuery := `
		INSERT INTO transactions (
			transaction_id, account_id, transaction_type, category, amount,
			opening_balance, closing_balance, idempotency_key, related_entity_ref, status,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = tx.Exec(ctx, insertQuery,
		modelTxn.TransactionID,
		modelTxn.AccountID,
		modelTxn.TransactionType,
		modelTxn.Category,
		modelTxn.Amount,
		modelTxn.OpeningBalance,
		modelTxn.ClosingBalance,
		modelTxn.IdempotencyKey,
		modelTxn.RelatedEntityRef,
		modelTxn.Status,
		modelTxn.CreatedAt,
		modelTxn.CreatedBy,
		modelTxn.LastUpdatedAt,
		modelTxn.LastUpdatedBy,
	)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return nil, apperrors.ErrDuplicate
		}
		return nil, apperrors.NewAppError(500, "failed to insert transaction "+modelTxn.TransactionID, err)
	}

	updateQuery := `
		UPDATE accounts
		SET current_balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, txn.AccountID, closing, txn.LastUpdatedAt, txn.LastUpdatedBy); err != nil {
		return nil, apperrors.NewAppError(500, "failed to update balance for account "+txn.AccountID, err)
	}

	return &txn, nil
}

// ApplyTransaction commits one ledger entry and the balance update atomically.
func (r *PgxLedgerRepository) ApplyTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	committed, err := applyTransactionTx(ctx, tx, txn)
	if err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return committed, nil
}

// FindTransactionByIdempotencyKey returns the committed transaction carrying
// the key for the account, or (nil, nil) when there is none.
func (r *PgxLedgerRepository) FindTransactionByIdempotencyKey(ctx context.Context, accountID, key string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 AND idempotency_key = $2;
	`
	return r.findOneTransaction(ctx, query, accountID, key)
}

// FindRecentMatchingTransaction finds the newest committed transaction with the
// same account, amount, type and category at or after since, or (nil, nil).
func (r *PgxLedgerRepository) FindRecentMatchingTransaction(ctx context.Context, accountID string, amount decimal.Decimal, txnType domain.TransactionType, category domain.TransactionCategory, since time.Time) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 AND amount = $2 AND transaction_type = $3 AND category = $4
		  AND created_at >= $5
		ORDER BY created_at DESC
		LIMIT 1;
	`
	return r.findOneTransaction(ctx, query, accountID, amount, string(txnType), string(category), since)
}

func (r *PgxLedgerRepository) findOneTransaction(ctx context.Context, query string, args ...interface{}) (*domain.Transaction, error) {
	var m models.Transaction
	err := r.Pool.QueryRow(ctx, query, args...).Scan(
		&m.TransactionID,
		&m.AccountID,
		&m.TransactionType,
		&m.Category,
		&m.Amount,
		&m.OpeningBalance,
		&m.ClosingBalance,
		&m.IdempotencyKey,
		&m.RelatedEntityRef,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewAppError(500, "failed to query transaction", err)
	}
	domainTxn := mapping.ToDomainTransaction(m)
	return &domainTxn, nil
}

// ListTransactionsByAccountID retrieves a paginated page of the account's
// transaction log, newest first, using token-based keyset pagination.
func (r *PgxLedgerRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to determine whether there is a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
	`
	orderByClause := `ORDER BY created_at DESC, transaction_id DESC`

	args := []interface{}{accountID}
	query := baseQuery

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (created_at, transaction_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastID)
	}

	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions for account "+accountID, err)
	}
	defer rows.Close()

	modelTxns := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		var m models.Transaction
		if err := rows.Scan(
			&m.TransactionID,
			&m.AccountID,
			&m.TransactionType,
			&m.Category,
			&m.Amount,
			&m.OpeningBalance,
			&m.ClosingBalance,
			&m.IdempotencyKey,
			&m.RelatedEntityRef,
			&m.Status,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row for account "+accountID, err)
		}
		modelTxns = append(modelTxns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows for account "+accountID, err)
	}

	var nextTokenVal *string
	results := modelTxns
	if len(modelTxns) > limit {
		last := modelTxns[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		nextTokenVal = &token
		results = modelTxns[:limit]
	}

	return mapping.ToDomainTransactionSlice(results), nextTokenVal, nil
}
