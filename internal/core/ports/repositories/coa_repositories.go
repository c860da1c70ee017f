package repositories

import (
	"context"

	"github.com/finacct/ledger_backend/internal/core/domain"
)

// COAReader resolves chart-of-accounts entries. Read-only: COA master data
// is owned by an external service and only consumed here.
type COAReader interface {
	// FindAccountByID resolves a single account, or apperrors.ErrNotFound.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs resolves a batch of accounts keyed by ID.
	// Missing IDs are simply absent from the result map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
}
