package pgsql

import (
	portsrepo "github.com/finacct/ledger_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires all pgsql-backed repositories over one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		JournalRepo: newPgxJournalRepository(dbPool),
		COARepo:     newPgxCOARepository(dbPool),
	}
}
