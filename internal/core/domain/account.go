package domain

// Account is a chart-of-accounts entry as seen by this service.
// COA master data is owned elsewhere; accounts are resolved read-only
// and referenced by ID from journal line items.
type Account struct {
	AccountID string `json:"accountID"` // Primary Key (e.g., UUID)
	Code      string `json:"code"`      // COA code, e.g. "1101.00.1.01"
	Name      string `json:"name"`
	IsActive  bool   `json:"isActive"`
}
