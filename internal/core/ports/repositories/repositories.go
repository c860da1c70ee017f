package repositories

// RepositoryProvider bundles the repository implementations handed to the
// service layer at composition time.
type RepositoryProvider struct {
	JournalRepo JournalRepositoryFacade
	COARepo     COAReader
}
