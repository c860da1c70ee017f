package services

import (
	"context"

	"github.com/finacct/ledger_backend/internal/core/domain"
	"github.com/finacct/ledger_backend/internal/dto"
)

// JournalSvcFacade is the transaction engine: it owns invariant enforcement,
// the posting gate and the reversal algorithm.
type JournalSvcFacade interface {
	// CreateTransaction validates and persists a new draft transaction, returning its identifier.
	// Invariant violations (including a duplicate reference number) surface as apperrors.ValidationErrors.
	CreateTransaction(ctx context.Context, req dto.SaveJournalTransactionRequest) (string, error)

	// GetTransactionByID returns the full transaction with line items and accounts hydrated.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.JournalTransaction, error)

	// ListTransactions returns one page of non-deleted transactions and the total count.
	ListTransactions(ctx context.Context, params dto.ListJournalTransactionsParams) ([]domain.JournalTransaction, int64, error)

	// UpdateTransaction re-validates the draft and replaces the line item set wholesale.
	// Returns the number of affected rows.
	UpdateTransaction(ctx context.Context, transactionID string, req dto.SaveJournalTransactionRequest) (int64, error)

	// DeleteTransaction soft-deletes an unposted transaction. Posted transactions are final.
	DeleteTransaction(ctx context.Context, transactionID string) (int64, error)

	// PostTransaction finalizes a transaction. Re-posting an already posted
	// transaction is a no-op success returning zero affected rows.
	PostTransaction(ctx context.Context, transactionID string) (int64, error)

	// ReverseTransactionByReferenceNo creates a new transaction mirroring the named one
	// with every line's debit and credit swapped. The original is left untouched.
	// Returns the new transaction's identifier.
	ReverseTransactionByReferenceNo(ctx context.Context, referenceNo string) (string, error)
}
