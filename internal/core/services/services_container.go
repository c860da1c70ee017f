package services

import (
	portsrepo "github.com/finacct/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/finacct/ledger_backend/internal/core/ports/services"
)

// NewServiceContainer wires all services over the given repositories and
// exporter, resolved once at composition time.
func NewServiceContainer(journalRepo portsrepo.JournalRepositoryFacade, coaRepo portsrepo.COAReader, exporter portssvc.Exporter) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Journal:   NewJournalService(journalRepo, coaRepo),
		Reporting: NewReportingService(journalRepo, coaRepo, exporter),
	}
}
