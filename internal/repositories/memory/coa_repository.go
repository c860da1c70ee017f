package memory

import (
	"context"
	"sync"

	"github.com/finacct/ledger_backend/internal/apperrors"
	"github.com/finacct/ledger_backend/internal/core/domain"
	portsrepo "github.com/finacct/ledger_backend/internal/core/ports/repositories"
)

// COARepository is the in-memory chart-of-accounts resolver used by tests.
type COARepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

// NewCOARepository creates an in-memory COA resolver seeded with the given accounts.
func NewCOARepository(accounts ...domain.Account) *COARepository {
	repo := &COARepository{accounts: make(map[string]domain.Account, len(accounts))}
	for _, account := range accounts {
		repo.accounts[account.AccountID] = account
	}
	return repo
}

var _ portsrepo.COAReader = (*COARepository)(nil)

// Add registers another account.
func (r *COARepository) Add(account domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.AccountID] = account
}

// FindAccountByID resolves a single account.
func (r *COARepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &account, nil
}

// FindAccountsByIDs resolves a batch of accounts keyed by ID.
func (r *COARepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if account, ok := r.accounts[id]; ok {
			found[id] = account
		}
	}
	return found, nil
}
