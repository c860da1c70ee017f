package repositories

import (
	"context"
	"time"

	"github.com/finacct/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionListFilter holds the paging, ordering and filtering inputs of a
// transaction listing. Limit/Offset are pre-normalized by the service layer.
type TransactionListFilter struct {
	Keyword string                    // Matches reference number or description, case-insensitive
	Status  *domain.TransactionStatus // Optional secondary filter
	OrderBy string                    // "date" or "reference_no"; empty means date
	Desc    bool
	Limit   int
	Offset  int
}

// JournalReader defines header-level read operations for journal transactions.
type JournalReader interface {
	// FindTransactionByID retrieves a non-deleted transaction by its identifier, without line items.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.JournalTransaction, error)

	// FindTransactionByReferenceNo retrieves a non-deleted transaction by its reference number, without line items.
	FindTransactionByReferenceNo(ctx context.Context, referenceNo string) (*domain.JournalTransaction, error)

	// ReferenceNoExists reports whether another non-deleted transaction already uses the
	// given reference number. excludeTransactionID is ignored when empty.
	ReferenceNoExists(ctx context.Context, referenceNo string, excludeTransactionID string) (bool, error)

	// ListTransactions retrieves a deterministically ordered page of non-deleted
	// transactions plus the total row count matching the filter.
	ListTransactions(ctx context.Context, filter TransactionListFilter) ([]domain.JournalTransaction, int64, error)
}

// LineItemReader defines read operations over journal line items.
type LineItemReader interface {
	// FindLineItemsByTransactionID retrieves all line items of a transaction in stored order.
	FindLineItemsByTransactionID(ctx context.Context, transactionID string) ([]domain.JournalLineItem, error)

	// FindTransactionsByDateRange retrieves non-deleted transactions with line items
	// hydrated, whose date falls in [from, to). A nil bound is unbounded.
	FindTransactionsByDateRange(ctx context.Context, from, to *time.Time) ([]domain.JournalTransaction, error)

	// FindMovementsByAccountPeriod retrieves all movements of one account whose
	// transaction date falls in [periodStart, periodEnd), ordered chronologically.
	FindMovementsByAccountPeriod(ctx context.Context, accountID string, periodStart, periodEnd time.Time) ([]domain.AccountMovement, error)

	// SumAccountMovements returns the total debit and credit posted to an account
	// strictly before the given time. Used for sub-ledger opening balances.
	SumAccountMovements(ctx context.Context, accountID string, before time.Time) (debit, credit decimal.Decimal, err error)
}

// JournalWriter defines write operations for journal transactions and their line items.
type JournalWriter interface {
	// SaveTransaction persists a new transaction and all of its line items atomically.
	SaveTransaction(ctx context.Context, txn domain.JournalTransaction) error

	// UpdateTransaction updates the transaction header and replaces its line item set
	// wholesale. Returns the number of affected transaction rows.
	UpdateTransaction(ctx context.Context, txn domain.JournalTransaction) (int64, error)

	// DeleteTransaction soft-deletes a transaction and its line items.
	DeleteTransaction(ctx context.Context, transactionID string, deletedBy string, deletedAt time.Time) (int64, error)

	// MarkTransactionPosted transitions a transaction to POSTED.
	MarkTransactionPosted(ctx context.Context, transactionID string, postedBy string, postedAt time.Time) (int64, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
// Both the durable pgsql implementation and the in-memory test implementation satisfy it.
type JournalRepositoryFacade interface {
	JournalReader
	LineItemReader
	JournalWriter
}
