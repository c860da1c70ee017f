package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/finacct/ledger_backend/internal/apperrors"
	"github.com/finacct/ledger_backend/internal/core/domain"
	portsrepo "github.com/finacct/ledger_backend/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// JournalRepository is the in-memory implementation of the journal repository
// facade. Tests run against it; it mirrors the pgsql semantics including soft
// delete and reference number uniqueness.
type JournalRepository struct {
	mu           sync.RWMutex
	transactions map[string]domain.JournalTransaction
	items        map[string][]domain.JournalLineItem // keyed by transaction ID
}

// NewJournalRepository creates an empty in-memory journal repository.
func NewJournalRepository() *JournalRepository {
	return &JournalRepository{
		transactions: make(map[string]domain.JournalTransaction),
		items:        make(map[string][]domain.JournalLineItem),
	}
}

var _ portsrepo.JournalRepositoryFacade = (*JournalRepository)(nil)

func cloneItems(items []domain.JournalLineItem) []domain.JournalLineItem {
	out := make([]domain.JournalLineItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].Account = nil
	}
	return out
}

// SaveTransaction persists a new transaction and its line items. A live
// duplicate reference number fails with apperrors.ErrDuplicate, matching the
// storage-level unique constraint of the durable implementation.
func (r *JournalRepository) SaveTransaction(ctx context.Context, txn domain.JournalTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.transactions {
		if !existing.IsDeleted && existing.ReferenceNo == txn.ReferenceNo {
			return apperrors.ErrDuplicate
		}
	}

	header := txn
	header.Items = nil
	r.transactions[txn.TransactionID] = header
	r.items[txn.TransactionID] = cloneItems(txn.Items)
	return nil
}

// FindTransactionByID retrieves a non-deleted transaction header.
func (r *JournalRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.JournalTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txn, ok := r.transactions[transactionID]
	if !ok || txn.IsDeleted {
		return nil, apperrors.ErrNotFound
	}
	return &txn, nil
}

// FindTransactionByReferenceNo retrieves a non-deleted transaction header by reference number.
func (r *JournalRepository) FindTransactionByReferenceNo(ctx context.Context, referenceNo string) (*domain.JournalTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, txn := range r.transactions {
		if !txn.IsDeleted && txn.ReferenceNo == referenceNo {
			found := txn
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// ReferenceNoExists reports whether another non-deleted transaction uses the reference number.
func (r *JournalRepository) ReferenceNoExists(ctx context.Context, referenceNo string, excludeTransactionID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, txn := range r.transactions {
		if txn.IsDeleted || txn.TransactionID == excludeTransactionID {
			continue
		}
		if txn.ReferenceNo == referenceNo {
			return true, nil
		}
	}
	return false, nil
}

// ListTransactions returns one deterministically ordered page plus the total count.
func (r *JournalRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionListFilter) ([]domain.JournalTransaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.JournalTransaction, 0, len(r.transactions))
	keyword := strings.ToLower(filter.Keyword)
	for _, txn := range r.transactions {
		if txn.IsDeleted {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(txn.ReferenceNo), keyword) &&
			!strings.Contains(strings.ToLower(txn.Description), keyword) {
			continue
		}
		if filter.Status != nil && txn.Status != *filter.Status {
			continue
		}
		matched = append(matched, txn)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		switch {
		case filter.OrderBy == "reference_no" && matched[i].ReferenceNo != matched[j].ReferenceNo:
			less = matched[i].ReferenceNo < matched[j].ReferenceNo
		case filter.OrderBy != "reference_no" && !matched[i].Date.Equal(matched[j].Date):
			less = matched[i].Date.Before(matched[j].Date)
		default:
			return matched[i].TransactionID < matched[j].TransactionID
		}
		if filter.Desc {
			return !less
		}
		return less
	})

	total := int64(len(matched))
	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// FindLineItemsByTransactionID retrieves all line items of a transaction in stored order.
func (r *JournalRepository) FindLineItemsByTransactionID(ctx context.Context, transactionID string) ([]domain.JournalLineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneItems(r.items[transactionID]), nil
}

// FindTransactionsByDateRange retrieves non-deleted transactions in [from, to)
// with line items hydrated, ordered by date then reference number.
func (r *JournalRepository) FindTransactionsByDateRange(ctx context.Context, from, to *time.Time) ([]domain.JournalTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txns := []domain.JournalTransaction{}
	for _, txn := range r.transactions {
		if txn.IsDeleted {
			continue
		}
		if from != nil && txn.Date.Before(*from) {
			continue
		}
		if to != nil && !txn.Date.Before(*to) {
			continue
		}
		txn.Items = cloneItems(r.items[txn.TransactionID])
		txns = append(txns, txn)
	}
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.Before(txns[j].Date)
		}
		if txns[i].ReferenceNo != txns[j].ReferenceNo {
			return txns[i].ReferenceNo < txns[j].ReferenceNo
		}
		return txns[i].TransactionID < txns[j].TransactionID
	})
	return txns, nil
}

// FindMovementsByAccountPeriod retrieves one account's movements within
// [periodStart, periodEnd) in chronological order.
func (r *JournalRepository) FindMovementsByAccountPeriod(ctx context.Context, accountID string, periodStart, periodEnd time.Time) ([]domain.AccountMovement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	movements := []domain.AccountMovement{}
	for _, txn := range r.transactions {
		if txn.IsDeleted || txn.Date.Before(periodStart) || !txn.Date.Before(periodEnd) {
			continue
		}
		for _, item := range r.items[txn.TransactionID] {
			if item.AccountID != accountID {
				continue
			}
			movements = append(movements, domain.AccountMovement{
				Date:        txn.Date,
				ReferenceNo: txn.ReferenceNo,
				Description: txn.Description,
				Remark:      item.Remark,
				Debit:       item.Debit,
				Credit:      item.Credit,
			})
		}
	}
	sort.SliceStable(movements, func(i, j int) bool {
		if !movements[i].Date.Equal(movements[j].Date) {
			return movements[i].Date.Before(movements[j].Date)
		}
		return movements[i].ReferenceNo < movements[j].ReferenceNo
	})
	return movements, nil
}

// SumAccountMovements returns the total debit and credit posted to an account
// strictly before the given time.
func (r *JournalRepository) SumAccountMovements(ctx context.Context, accountID string, before time.Time) (decimal.Decimal, decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	debit := decimal.Zero
	credit := decimal.Zero
	for _, txn := range r.transactions {
		if txn.IsDeleted || !txn.Date.Before(before) {
			continue
		}
		for _, item := range r.items[txn.TransactionID] {
			if item.AccountID != accountID {
				continue
			}
			debit = debit.Add(item.Debit)
			credit = credit.Add(item.Credit)
		}
	}
	return debit, credit, nil
}

// UpdateTransaction updates the header and replaces the line item set wholesale.
func (r *JournalRepository) UpdateTransaction(ctx context.Context, txn domain.JournalTransaction) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.transactions[txn.TransactionID]
	if !ok || existing.IsDeleted {
		return 0, apperrors.ErrNotFound
	}
	for _, other := range r.transactions {
		if !other.IsDeleted && other.TransactionID != txn.TransactionID && other.ReferenceNo == txn.ReferenceNo {
			return 0, apperrors.ErrDuplicate
		}
	}

	header := txn
	header.Items = nil
	header.CreatedAt = existing.CreatedAt
	header.CreatedBy = existing.CreatedBy
	header.Status = existing.Status
	r.transactions[txn.TransactionID] = header
	r.items[txn.TransactionID] = cloneItems(txn.Items)
	return 1, nil
}

// DeleteTransaction soft-deletes a transaction.
func (r *JournalRepository) DeleteTransaction(ctx context.Context, transactionID string, deletedBy string, deletedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn, ok := r.transactions[transactionID]
	if !ok || txn.IsDeleted {
		return 0, apperrors.ErrNotFound
	}
	txn.IsDeleted = true
	txn.LastUpdatedAt = deletedAt
	txn.LastUpdatedBy = deletedBy
	r.transactions[transactionID] = txn
	return 1, nil
}

// MarkTransactionPosted transitions a transaction to POSTED.
func (r *JournalRepository) MarkTransactionPosted(ctx context.Context, transactionID string, postedBy string, postedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn, ok := r.transactions[transactionID]
	if !ok || txn.IsDeleted {
		return 0, apperrors.ErrNotFound
	}
	txn.Status = domain.Posted
	txn.LastUpdatedAt = postedAt
	txn.LastUpdatedBy = postedBy
	r.transactions[transactionID] = txn
	return 1, nil
}
