package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finacct/ledger_backend/internal/apperrors"
	"github.com/finacct/ledger_backend/internal/core/domain"
	portsrepo "github.com/finacct/ledger_backend/internal/core/ports/repositories"
	"github.com/finacct/ledger_backend/internal/models"
	"github.com/finacct/ledger_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PgxJournalRepository is the durable store of journal transactions and their
// line items. The reference_no unique index is the storage-level guarantee
// behind the engine's best-effort uniqueness pre-check.
type PgxJournalRepository struct {
	BaseRepository
}

func newPgxJournalRepository(db PGXQuerier) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{BaseRepository: BaseRepository{DB: db}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryWithTx
var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

const transactionColumns = `transaction_id, reference_no, date, description, status, is_deleted, created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row pgx.Row) (*models.JournalTransaction, error) {
	var m models.JournalTransaction
	err := row.Scan(
		&m.TransactionID,
		&m.ReferenceNo,
		&m.Date,
		&m.Description,
		&m.Status,
		&m.IsDeleted,
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

// SaveTransaction persists the transaction header and all line items within a
// single database transaction.
func (r *PgxJournalRepository) SaveTransaction(ctx context.Context, txn domain.JournalTransaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // No-op once committed

	m := mapping.ToModelTransaction(txn)
	headerQuery := `
		INSERT INTO journal_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, headerQuery,
		m.TransactionID,
		m.ReferenceNo,
		m.Date,
		m.Description,
		m.Status,
		m.IsDeleted,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("reference number %s: %w", txn.ReferenceNo, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", m.TransactionID, err)
	}

	if err := insertLineItems(ctx, tx, txn.Items); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func insertLineItems(ctx context.Context, tx pgx.Tx, items []domain.JournalLineItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	itemQuery := `
		INSERT INTO journal_line_items (line_item_id, transaction_id, account_id, debit, credit, remark, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, item := range items {
		mi := mapping.ToModelLineItem(item)
		batch.Queue(itemQuery,
			mi.LineItemID,
			mi.TransactionID,
			mi.AccountID,
			mi.Debit,
			mi.Credit,
			mi.Remark,
			mi.CreatedAt,
			mi.CreatedBy,
			mi.LastUpdatedAt,
			mi.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert line items: %w", err)
	}
	return nil
}

// FindTransactionByID retrieves a non-deleted transaction header by identifier.
func (r *PgxJournalRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.JournalTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM journal_transactions
		WHERE transaction_id = $1 AND NOT is_deleted;
	`
	m, err := scanTransaction(r.DB.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	txn := mapping.ToDomainTransaction(*m)
	return &txn, nil
}

// FindTransactionByReferenceNo retrieves a non-deleted transaction header by reference number.
func (r *PgxJournalRepository) FindTransactionByReferenceNo(ctx context.Context, referenceNo string) (*domain.JournalTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM journal_transactions
		WHERE reference_no = $1 AND NOT is_deleted;
	`
	m, err := scanTransaction(r.DB.QueryRow(ctx, query, referenceNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction with reference number %s: %w", referenceNo, err)
	}
	txn := mapping.ToDomainTransaction(*m)
	return &txn, nil
}

// ReferenceNoExists reports whether another non-deleted transaction uses the reference number.
func (r *PgxJournalRepository) ReferenceNoExists(ctx context.Context, referenceNo string, excludeTransactionID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM journal_transactions
			WHERE reference_no = $1 AND NOT is_deleted AND ($2 = '' OR transaction_id <> $2)
		);
	`
	var exists bool
	if err := r.DB.QueryRow(ctx, query, referenceNo, excludeTransactionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check reference number %s: %w", referenceNo, err)
	}
	return exists, nil
}

// ListTransactions retrieves one page of non-deleted transaction headers plus the total count.
func (r *PgxJournalRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionListFilter) ([]domain.JournalTransaction, int64, error) {
	where := `WHERE NOT is_deleted`
	args := []interface{}{}
	argPos := 1

	if filter.Keyword != "" {
		where += fmt.Sprintf(` AND (reference_no ILIKE $%d OR description ILIKE $%d)`, argPos, argPos)
		args = append(args, "%"+filter.Keyword+"%")
		argPos++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(` AND status = $%d`, argPos)
		args = append(args, string(*filter.Status))
		argPos++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM journal_transactions ` + where + `;`
	if err := r.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	// Order column is chosen from a fixed whitelist; the tie-break on
	// transaction_id keeps pagination deterministic.
	orderColumn := "date"
	if filter.OrderBy == "reference_no" {
		orderColumn = "reference_no"
	}
	direction := "ASC"
	if filter.Desc {
		direction = "DESC"
	}

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM journal_transactions
		%s
		ORDER BY %s %s, transaction_id ASC
		LIMIT $%d OFFSET $%d;
	`, transactionColumns, where, orderColumn, direction, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.DB.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.JournalTransaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, mapping.ToDomainTransaction(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read transaction rows: %w", err)
	}
	return txns, total, nil
}

// FindLineItemsByTransactionID retrieves all line items of a transaction in stored order.
func (r *PgxJournalRepository) FindLineItemsByTransactionID(ctx context.Context, transactionID string) ([]domain.JournalLineItem, error) {
	query := `
		SELECT line_item_id, transaction_id, account_id, debit, credit, remark, created_at, created_by, last_updated_at, last_updated_by
		FROM journal_line_items
		WHERE transaction_id = $1
		ORDER BY created_at, line_item_id;
	`
	rows, err := r.DB.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items for transaction %s: %w", transactionID, err)
	}
	defer rows.Close()

	return scanLineItems(rows)
}

func scanLineItems(rows pgx.Rows) ([]domain.JournalLineItem, error) {
	items := []domain.JournalLineItem{}
	for rows.Next() {
		var m models.JournalLineItem
		err := rows.Scan(
			&m.LineItemID,
			&m.TransactionID,
			&m.AccountID,
			&m.Debit,
			&m.Credit,
			&m.Remark,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item row: %w", err)
		}
		items = append(items, mapping.ToDomainLineItem(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read line item rows: %w", err)
	}
	return items, nil
}

// FindTransactionsByDateRange retrieves non-deleted transactions in [from, to)
// with their line items hydrated. Nil bounds are unbounded.
func (r *PgxJournalRepository) FindTransactionsByDateRange(ctx context.Context, from, to *time.Time) ([]domain.JournalTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM journal_transactions
		WHERE NOT is_deleted
		  AND ($1::timestamptz IS NULL OR date >= $1)
		  AND ($2::timestamptz IS NULL OR date < $2)
		ORDER BY date, reference_no, transaction_id;
	`
	rows, err := r.DB.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by date range: %w", err)
	}
	defer rows.Close()

	txns := []domain.JournalTransaction{}
	ids := []string{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, mapping.ToDomainTransaction(*m))
		ids = append(ids, m.TransactionID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transaction rows: %w", err)
	}
	if len(txns) == 0 {
		return txns, nil
	}

	itemQuery := `
		SELECT line_item_id, transaction_id, account_id, debit, credit, remark, created_at, created_by, last_updated_at, last_updated_by
		FROM journal_line_items
		WHERE transaction_id = ANY($1)
		ORDER BY created_at, line_item_id;
	`
	itemRows, err := r.DB.Query(ctx, itemQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items by date range: %w", err)
	}
	defer itemRows.Close()

	items, err := scanLineItems(itemRows)
	if err != nil {
		return nil, err
	}
	byTransaction := make(map[string][]domain.JournalLineItem, len(txns))
	for _, item := range items {
		byTransaction[item.TransactionID] = append(byTransaction[item.TransactionID], item)
	}
	for i := range txns {
		txns[i].Items = byTransaction[txns[i].TransactionID]
	}
	return txns, nil
}

// FindMovementsByAccountPeriod retrieves one account's movements within
// [periodStart, periodEnd), joined with the transaction header, in chronological order.
func (r *PgxJournalRepository) FindMovementsByAccountPeriod(ctx context.Context, accountID string, periodStart, periodEnd time.Time) ([]domain.AccountMovement, error) {
	query := `
		SELECT t.date, t.reference_no, t.description, i.remark, i.debit, i.credit
		FROM journal_line_items i
		JOIN journal_transactions t ON t.transaction_id = i.transaction_id
		WHERE i.account_id = $1 AND NOT t.is_deleted
		  AND t.date >= $2 AND t.date < $3
		ORDER BY t.date, t.reference_no, i.line_item_id;
	`
	rows, err := r.DB.Query(ctx, query, accountID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements for account %s: %w", accountID, err)
	}
	defer rows.Close()

	movements := []domain.AccountMovement{}
	for rows.Next() {
		var m domain.AccountMovement
		if err := rows.Scan(&m.Date, &m.ReferenceNo, &m.Description, &m.Remark, &m.Debit, &m.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan movement row: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read movement rows: %w", err)
	}
	return movements, nil
}

// SumAccountMovements returns the total debit and credit posted to an account
// strictly before the given time.
func (r *PgxJournalRepository) SumAccountMovements(ctx context.Context, accountID string, before time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(i.debit), 0), COALESCE(SUM(i.credit), 0)
		FROM journal_line_items i
		JOIN journal_transactions t ON t.transaction_id = i.transaction_id
		WHERE i.account_id = $1 AND NOT t.is_deleted AND t.date < $2;
	`
	var debit, credit decimal.Decimal
	if err := r.DB.QueryRow(ctx, query, accountID, before).Scan(&debit, &credit); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum movements for account %s: %w", accountID, err)
	}
	return debit, credit, nil
}

// UpdateTransaction updates the header and replaces the line item set wholesale
// within a single database transaction.
func (r *PgxJournalRepository) UpdateTransaction(ctx context.Context, txn domain.JournalTransaction) (int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelTransaction(txn)
	headerQuery := `
		UPDATE journal_transactions
		SET reference_no = $2, date = $3, description = $4, last_updated_at = $5, last_updated_by = $6
		WHERE transaction_id = $1 AND NOT is_deleted;
	`
	tag, err := tx.Exec(ctx, headerQuery,
		m.TransactionID,
		m.ReferenceNo,
		m.Date,
		m.Description,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("reference number %s: %w", txn.ReferenceNo, apperrors.ErrDuplicate)
		}
		return 0, fmt.Errorf("failed to update transaction %s: %w", m.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return 0, apperrors.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_line_items WHERE transaction_id = $1;`, m.TransactionID); err != nil {
		return 0, fmt.Errorf("failed to clear line items for transaction %s: %w", m.TransactionID, err)
	}
	if err := insertLineItems(ctx, tx, txn.Items); err != nil {
		return 0, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteTransaction soft-deletes a transaction. Line items stay in place under
// the deleted header and are excluded by the is_deleted join filters.
func (r *PgxJournalRepository) DeleteTransaction(ctx context.Context, transactionID string, deletedBy string, deletedAt time.Time) (int64, error) {
	query := `
		UPDATE journal_transactions
		SET is_deleted = TRUE, last_updated_at = $2, last_updated_by = $3
		WHERE transaction_id = $1 AND NOT is_deleted;
	`
	tag, err := r.DB.Exec(ctx, query, transactionID, deletedAt, deletedBy)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return 0, apperrors.ErrNotFound
	}
	return tag.RowsAffected(), nil
}

// MarkTransactionPosted transitions a transaction to POSTED.
func (r *PgxJournalRepository) MarkTransactionPosted(ctx context.Context, transactionID string, postedBy string, postedAt time.Time) (int64, error) {
	query := `
		UPDATE journal_transactions
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1 AND NOT is_deleted;
	`
	tag, err := r.DB.Exec(ctx, query, transactionID, string(domain.Posted), postedAt, postedBy)
	if err != nil {
		return 0, fmt.Errorf("failed to post transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return 0, apperrors.ErrNotFound
	}
	return tag.RowsAffected(), nil
}
