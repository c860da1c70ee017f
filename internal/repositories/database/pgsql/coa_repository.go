package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finacct/ledger_backend/internal/apperrors"
	"github.com/finacct/ledger_backend/internal/core/domain"
	portsrepo "github.com/finacct/ledger_backend/internal/core/ports/repositories"
	"github.com/finacct/ledger_backend/internal/models"
	"github.com/finacct/ledger_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

// PgxCOARepository resolves chart-of-accounts entries from the read-only
// chart_of_accounts replica table.
type PgxCOARepository struct {
	BaseRepository
}

func newPgxCOARepository(db PGXQuerier) portsrepo.COAReader {
	return &PgxCOARepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.COAReader = (*PgxCOARepository)(nil)

// FindAccountByID resolves a single account by its identifier.
func (r *PgxCOARepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `
		SELECT account_id, code, name, is_active
		FROM chart_of_accounts
		WHERE account_id = $1;
	`
	var m models.Account
	err := r.DB.QueryRow(ctx, query, accountID).Scan(&m.AccountID, &m.Code, &m.Name, &m.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	account := mapping.ToDomainAccount(m)
	return &account, nil
}

// FindAccountsByIDs resolves a batch of accounts keyed by ID. Missing IDs are
// absent from the result map.
func (r *PgxCOARepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	query := `
		SELECT account_id, code, name, is_active
		FROM chart_of_accounts
		WHERE account_id = ANY($1);
	`
	rows, err := r.DB.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(accountIDs))
	for rows.Next() {
		var m models.Account
		if err := rows.Scan(&m.AccountID, &m.Code, &m.Name, &m.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts[m.AccountID] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account rows: %w", err)
	}
	return accounts, nil
}
