package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finacct/ledger_backend/internal/apperrors"
	"github.com/finacct/ledger_backend/internal/core/domain"
	portsrepo "github.com/finacct/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/finacct/ledger_backend/internal/core/ports/services"
	"github.com/finacct/ledger_backend/internal/dto"
	"github.com/finacct/ledger_backend/internal/middleware"
	"github.com/finacct/ledger_backend/internal/utils/pagination"
)

// journalService is the transaction engine. It is stateless between calls;
// all mutable state lives in the journal repository.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryFacade
	coaRepo     portsrepo.COAReader
}

// NewJournalService creates the transaction engine over the given repositories.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, coaRepo portsrepo.COAReader) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		coaRepo:     coaRepo,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// resolveAccounts fetches the COA entries referenced by the transaction's lines.
// Unresolvable IDs are simply absent from the map; the validator reports them.
func (s *journalService) resolveAccounts(ctx context.Context, txn domain.JournalTransaction) (map[string]domain.Account, error) {
	seen := make(map[string]struct{}, len(txn.Items))
	accountIDs := make([]string, 0, len(txn.Items))
	for _, item := range txn.Items {
		if item.AccountID == "" {
			continue
		}
		if _, ok := seen[item.AccountID]; ok {
			continue
		}
		seen[item.AccountID] = struct{}{}
		accountIDs = append(accountIDs, item.AccountID)
	}
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	accounts, err := s.coaRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accounts: %w", err)
	}
	return accounts, nil
}

// validateDraft runs the pure validator plus the repository-backed reference
// number uniqueness pre-check. excludeTransactionID lets an update keep its own
// reference number.
func (s *journalService) validateDraft(ctx context.Context, txn domain.JournalTransaction, excludeTransactionID string) error {
	accounts, err := s.resolveAccounts(ctx, txn)
	if err != nil {
		return err
	}

	validationErrs := ValidateTransaction(txn, accounts, time.Now().UTC())

	if txn.ReferenceNo != "" {
		exists, err := s.journalRepo.ReferenceNoExists(ctx, txn.ReferenceNo, excludeTransactionID)
		if err != nil {
			return fmt.Errorf("failed to check reference number uniqueness: %w", err)
		}
		if exists {
			validationErrs = append(validationErrs, apperrors.ValidationError{
				Field:   "referenceNo",
				Message: fmt.Sprintf("reference number %s is already in use", txn.ReferenceNo),
			})
		}
	}

	if len(validationErrs) > 0 {
		return validationErrs
	}
	return nil
}

// CreateTransaction validates and persists a new draft transaction.
func (s *journalService) CreateTransaction(ctx context.Context, req dto.SaveJournalTransactionRequest) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	identity := middleware.GetIdentityFromCtx(ctx)

	txn := req.ToDomain()
	if err := s.validateDraft(ctx, txn, ""); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	txn.TransactionID = uuid.NewString()
	txn.Status = domain.Draft
	txn.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     identity.Username,
		LastUpdatedAt: now,
		LastUpdatedBy: identity.Username,
	}
	for i := range txn.Items {
		txn.Items[i].LineItemID = uuid.NewString()
		txn.Items[i].TransactionID = txn.TransactionID
		txn.Items[i].AuditFields = txn.AuditFields
	}

	if err := s.journalRepo.SaveTransaction(ctx, txn); err != nil {
		// A lost uniqueness race surfaces as the storage-level duplicate error;
		// callers get the same validation failure as the pre-check.
		if errors.Is(err, apperrors.ErrDuplicate) {
			return "", apperrors.ValidationErrors{{
				Field:   "referenceNo",
				Message: fmt.Sprintf("reference number %s is already in use", txn.ReferenceNo),
			}}
		}
		logger.Error("Failed to save transaction", slog.String("error", err.Error()), slog.String("reference_no", txn.ReferenceNo))
		return "", fmt.Errorf("failed to save transaction: %w", err)
	}

	logger.Info("Transaction created", slog.String("transaction_id", txn.TransactionID), slog.String("reference_no", txn.ReferenceNo))
	return txn.TransactionID, nil
}

// GetTransactionByID retrieves a transaction with its line items and accounts hydrated.
func (s *journalService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.JournalTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.journalRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find transaction by ID", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	items, err := s.journalRepo.FindLineItemsByTransactionID(ctx, transactionID)
	if err != nil {
		logger.Error("Failed to fetch line items", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to retrieve line items for transaction %s: %w", transactionID, err)
	}
	txn.Items = items

	accounts, err := s.resolveAccounts(ctx, *txn)
	if err != nil {
		return nil, err
	}
	for i := range txn.Items {
		if account, ok := accounts[txn.Items[i].AccountID]; ok {
			acc := account
			txn.Items[i].Account = &acc
		}
	}

	logger.Debug("Transaction retrieved", slog.String("transaction_id", transactionID), slog.Int("item_count", len(items)))
	return txn, nil
}

// ListTransactions returns one page of non-deleted transactions and the total count.
func (s *journalService) ListTransactions(ctx context.Context, params dto.ListJournalTransactionsParams) ([]domain.JournalTransaction, int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit, offset := pagination.Normalize(params.Page, params.PageSize)
	filter := portsrepo.TransactionListFilter{
		Keyword: strings.TrimSpace(params.Keyword),
		Status:  params.Status,
		OrderBy: params.OrderBy,
		Desc:    params.Desc,
		Limit:   limit,
		Offset:  offset,
	}

	txns, total, err := s.journalRepo.ListTransactions(ctx, filter)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	logger.Debug("Transactions listed", slog.Int("count", len(txns)), slog.Int64("total", total))
	return txns, total, nil
}

// UpdateTransaction re-validates the draft and replaces the line item set wholesale.
func (s *journalService) UpdateTransaction(ctx context.Context, transactionID string, req dto.SaveJournalTransactionRequest) (int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	identity := middleware.GetIdentityFromCtx(ctx)

	existing, err := s.journalRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return 0, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	if existing.Status == domain.Posted {
		return 0, fmt.Errorf("%w: transaction %s is posted and can no longer be modified", apperrors.ErrConflict, transactionID)
	}

	txn := req.ToDomain()
	// Uniqueness must not trip over the transaction's own reference number.
	if err := s.validateDraft(ctx, txn, transactionID); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	txn.TransactionID = transactionID
	txn.Status = existing.Status
	txn.AuditFields = existing.AuditFields
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = identity.Username
	for i := range txn.Items {
		txn.Items[i].LineItemID = uuid.NewString()
		txn.Items[i].TransactionID = transactionID
		txn.Items[i].AuditFields = domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     identity.Username,
			LastUpdatedAt: now,
			LastUpdatedBy: identity.Username,
		}
	}

	rowsAffected, err := s.journalRepo.UpdateTransaction(ctx, txn)
	if err != nil {
		logger.Error("Failed to update transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return 0, fmt.Errorf("failed to update transaction %s: %w", transactionID, err)
	}

	logger.Info("Transaction updated", slog.String("transaction_id", transactionID), slog.Int("item_count", len(txn.Items)))
	return rowsAffected, nil
}

// DeleteTransaction soft-deletes an unposted transaction and its line items.
func (s *journalService) DeleteTransaction(ctx context.Context, transactionID string) (int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	identity := middleware.GetIdentityFromCtx(ctx)

	existing, err := s.journalRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return 0, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	if existing.Status == domain.Posted {
		return 0, fmt.Errorf("%w: transaction %s is posted and cannot be deleted", apperrors.ErrConflict, transactionID)
	}

	rowsAffected, err := s.journalRepo.DeleteTransaction(ctx, transactionID, identity.Username, time.Now().UTC())
	if err != nil {
		logger.Error("Failed to delete transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return 0, fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}

	logger.Info("Transaction deleted", slog.String("transaction_id", transactionID))
	return rowsAffected, nil
}

// PostTransaction finalizes a transaction. Posting is a one-way gate: once
// POSTED, lines can no longer change. Re-posting an already posted transaction
// is a no-op success returning zero affected rows.
func (s *journalService) PostTransaction(ctx context.Context, transactionID string) (int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	identity := middleware.GetIdentityFromCtx(ctx)

	existing, err := s.journalRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return 0, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	if existing.Status == domain.Posted {
		logger.Debug("Transaction already posted", slog.String("transaction_id", transactionID))
		return 0, nil
	}

	rowsAffected, err := s.journalRepo.MarkTransactionPosted(ctx, transactionID, identity.Username, time.Now().UTC())
	if err != nil {
		logger.Error("Failed to post transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return 0, fmt.Errorf("failed to post transaction %s: %w", transactionID, err)
	}

	logger.Info("Transaction posted", slog.String("transaction_id", transactionID))
	return rowsAffected, nil
}

// ReverseTransactionByReferenceNo creates a new transaction mirroring the named
// one with every line's debit and credit swapped. It goes through the same
// create path as a normal transaction, so the balance invariant and reference
// uniqueness apply to the reversal too. The original is never mutated.
func (s *journalService) ReverseTransactionByReferenceNo(ctx context.Context, referenceNo string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.journalRepo.FindTransactionByReferenceNo(ctx, referenceNo)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transaction not found for reversal", slog.String("reference_no", referenceNo))
		}
		return "", fmt.Errorf("failed to find transaction with reference number %s: %w", referenceNo, err)
	}

	originalItems, err := s.journalRepo.FindLineItemsByTransactionID(ctx, original.TransactionID)
	if err != nil {
		logger.Error("Failed to fetch line items for reversal", slog.String("error", err.Error()), slog.String("transaction_id", original.TransactionID))
		return "", fmt.Errorf("failed to retrieve line items for reversal of %s: %w", referenceNo, err)
	}

	reversalReq := dto.SaveJournalTransactionRequest{
		ReferenceNo: generateReversalReferenceNo(original.ReferenceNo),
		Date:        original.Date,
		Description: fmt.Sprintf("Reversal of %s: %s", original.ReferenceNo, original.Description),
		Items:       make([]dto.JournalLineItemRequest, len(originalItems)),
	}
	for i, item := range originalItems {
		reversalReq.Items[i] = dto.JournalLineItemRequest{
			AccountID: item.AccountID,
			Debit:     item.Credit, // Swapped: the mirror entry
			Credit:    item.Debit,
			Remark:    item.Remark,
		}
	}

	newID, err := s.CreateTransaction(ctx, reversalReq)
	if err != nil {
		return "", fmt.Errorf("failed to create reversing transaction for %s: %w", referenceNo, err)
	}

	logger.Info("Transaction reversed",
		slog.String("reference_no", referenceNo),
		slog.String("reversing_transaction_id", newID))
	return newID, nil
}

// generateReversalReferenceNo derives a fresh reference number for a reversing
// transaction. The random suffix keeps repeated reversals of the same document unique.
func generateReversalReferenceNo(originalReferenceNo string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-RV-%s", originalReferenceNo, suffix)
}
