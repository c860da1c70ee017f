package pgsql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/finacct/ledger_backend/internal/apperrors"
	"github.com/finacct/ledger_backend/internal/core/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transactionRowColumns = []string{
	"transaction_id", "reference_no", "date", "description", "status",
	"is_deleted", "created_at", "created_by", "last_updated_at", "last_updated_by",
}

func newJournalRepoMock(t *testing.T) (pgxmock.PgxPoolIface, *PgxJournalRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, &PgxJournalRepository{BaseRepository: BaseRepository{DB: mock}}
}

func TestFindTransactionByID(t *testing.T) {
	ctx := context.Background()
	mock, repo := newJournalRepoMock(t)

	transactionID := uuid.NewString()
	now := time.Now().UTC()
	query := regexp.QuoteMeta(`
		SELECT ` + transactionColumns + `
		FROM journal_transactions
		WHERE transaction_id = $1 AND NOT is_deleted;
	`)

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows(transactionRowColumns).
			AddRow(transactionID, "INV-001", now, "Cash sale", "DRAFT", false, now, "system", now, "system")
		mock.ExpectQuery(query).WithArgs(transactionID).WillReturnRows(rows)

		txn, err := repo.FindTransactionByID(ctx, transactionID)

		require.NoError(t, err)
		assert.Equal(t, transactionID, txn.TransactionID)
		assert.Equal(t, "INV-001", txn.ReferenceNo)
		assert.Equal(t, domain.Draft, txn.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(transactionID).WillReturnError(pgx.ErrNoRows)

		txn, err := repo.FindTransactionByID(ctx, transactionID)

		assert.Nil(t, txn)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFindTransactionByReferenceNo_NotFound(t *testing.T) {
	ctx := context.Background()
	mock, repo := newJournalRepoMock(t)

	query := regexp.QuoteMeta(`
		SELECT ` + transactionColumns + `
		FROM journal_transactions
		WHERE reference_no = $1 AND NOT is_deleted;
	`)
	mock.ExpectQuery(query).WithArgs("MISSING").WillReturnError(pgx.ErrNoRows)

	txn, err := repo.FindTransactionByReferenceNo(ctx, "MISSING")

	assert.Nil(t, txn)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceNoExists(t *testing.T) {
	ctx := context.Background()
	mock, repo := newJournalRepoMock(t)

	query := regexp.QuoteMeta(`
		SELECT EXISTS (
			SELECT 1 FROM journal_transactions
			WHERE reference_no = $1 AND NOT is_deleted AND ($2 = '' OR transaction_id <> $2)
		);
	`)
	mock.ExpectQuery(query).WithArgs("INV-001", "").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ReferenceNoExists(ctx, "INV-001", "")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveTransaction_DuplicateReferenceNo(t *testing.T) {
	ctx := context.Background()
	mock, repo := newJournalRepoMock(t)

	txn := domain.JournalTransaction{
		TransactionID: uuid.NewString(),
		ReferenceNo:   "INV-001",
		Date:          time.Now().UTC(),
		Status:        domain.Draft,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO journal_transactions`)).
		WithArgs(txn.TransactionID, txn.ReferenceNo, txn.Date, txn.Description, string(txn.Status),
			txn.IsDeleted, txn.CreatedAt, txn.CreatedBy, txn.LastUpdatedAt, txn.LastUpdatedBy).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_journal_transactions_reference_no"})
	mock.ExpectRollback()

	err := repo.SaveTransaction(ctx, txn)

	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	mock, repo := newJournalRepoMock(t)

	transactionID := uuid.NewString()
	deletedAt := time.Now().UTC()
	query := regexp.QuoteMeta(`
		UPDATE journal_transactions
		SET is_deleted = TRUE, last_updated_at = $2, last_updated_by = $3
		WHERE transaction_id = $1 AND NOT is_deleted;
	`)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(transactionID, deletedAt, "system").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		rowsAffected, err := repo.DeleteTransaction(ctx, transactionID, "system", deletedAt)

		require.NoError(t, err)
		assert.Equal(t, int64(1), rowsAffected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already deleted or missing", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(transactionID, deletedAt, "system").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		_, err := repo.DeleteTransaction(ctx, transactionID, "system", deletedAt)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMarkTransactionPosted(t *testing.T) {
	ctx := context.Background()
	mock, repo := newJournalRepoMock(t)

	transactionID := uuid.NewString()
	postedAt := time.Now().UTC()
	query := regexp.QuoteMeta(`
		UPDATE journal_transactions
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1 AND NOT is_deleted;
	`)
	mock.ExpectExec(query).WithArgs(transactionID, "POSTED", postedAt, "poster").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	rowsAffected, err := repo.MarkTransactionPosted(ctx, transactionID, "poster", postedAt)

	require.NoError(t, err)
	assert.Equal(t, int64(1), rowsAffected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSumAccountMovements(t *testing.T) {
	ctx := context.Background()
	mock, repo := newJournalRepoMock(t)

	accountID := uuid.NewString()
	before := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	query := regexp.QuoteMeta(`
		SELECT COALESCE(SUM(i.debit), 0), COALESCE(SUM(i.credit), 0)
		FROM journal_line_items i
		JOIN journal_transactions t ON t.transaction_id = i.transaction_id
		WHERE i.account_id = $1 AND NOT t.is_deleted AND t.date < $2;
	`)
	mock.ExpectQuery(query).WithArgs(accountID, before).
		WillReturnRows(pgxmock.NewRows([]string{"debit", "credit"}).
			AddRow(decimal.RequireFromString("750.25"), decimal.NewFromInt(250)))

	debit, credit, err := repo.SumAccountMovements(ctx, accountID, before)

	require.NoError(t, err)
	assert.True(t, debit.Equal(decimal.RequireFromString("750.25")))
	assert.True(t, credit.Equal(decimal.NewFromInt(250)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindLineItemsByTransactionID(t *testing.T) {
	ctx := context.Background()
	mock, repo := newJournalRepoMock(t)

	transactionID := uuid.NewString()
	now := time.Now().UTC()
	query := regexp.QuoteMeta(`
		SELECT line_item_id, transaction_id, account_id, debit, credit, remark, created_at, created_by, last_updated_at, last_updated_by
		FROM journal_line_items
		WHERE transaction_id = $1
		ORDER BY created_at, line_item_id;
	`)
	rows := pgxmock.NewRows([]string{
		"line_item_id", "transaction_id", "account_id", "debit", "credit", "remark",
		"created_at", "created_by", "last_updated_at", "last_updated_by",
	}).
		AddRow(uuid.NewString(), transactionID, "acc-1", decimal.NewFromInt(100), decimal.Zero, "in", now, "system", now, "system").
		AddRow(uuid.NewString(), transactionID, "acc-2", decimal.Zero, decimal.NewFromInt(100), "out", now, "system", now, "system")
	mock.ExpectQuery(query).WithArgs(transactionID).WillReturnRows(rows)

	items, err := repo.FindLineItemsByTransactionID(ctx, transactionID)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "acc-1", items[0].AccountID)
	assert.True(t, items[0].Debit.Equal(decimal.NewFromInt(100)))
	assert.True(t, items[1].Credit.Equal(decimal.NewFromInt(100)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
