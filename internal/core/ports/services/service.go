package services

// ServiceContainer bundles the service facades handed to the transport layer,
// resolved once at composition time.
type ServiceContainer struct {
	Journal   JournalSvcFacade
	Reporting ReportingSvcFacade
}
