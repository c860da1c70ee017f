package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds standard audit columns shared by all tables.
type AuditFields struct {
	CreatedAt     time.Time
	CreatedBy     string
	LastUpdatedAt time.Time
	LastUpdatedBy string
}

// JournalTransaction mirrors the journal_transactions table.
type JournalTransaction struct {
	TransactionID string
	ReferenceNo   string
	Date          time.Time
	Description   string
	Status        string
	IsDeleted     bool
	AuditFields
}

// JournalLineItem mirrors the journal_line_items table.
type JournalLineItem struct {
	LineItemID    string
	TransactionID string
	AccountID     string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Remark        string
	AuditFields
}

// Account mirrors the chart_of_accounts table (read-only replica of COA master data).
type Account struct {
	AccountID string
	Code      string
	Name      string
	IsActive  bool
}
