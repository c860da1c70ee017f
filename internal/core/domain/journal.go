package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus indicates the posting state of a journal transaction.
type TransactionStatus string

const (
	Draft  TransactionStatus = "DRAFT"  // Created but not yet posted; lines may still change
	Posted TransactionStatus = "POSTED" // Finalized; line mutation and deletion are no longer permitted
)

// JournalLineItem is a single line within a journal transaction, affecting one account.
// For a valid persisted line exactly one of Debit/Credit is non-zero.
type JournalLineItem struct {
	LineItemID    string          `json:"lineItemID"`    // Primary Key (e.g., UUID)
	TransactionID string          `json:"transactionID"` // FK -> JournalTransaction.TransactionID
	AccountID     string          `json:"accountID"`     // FK -> Account.AccountID
	Account       *Account        `json:"account,omitempty"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Remark        string          `json:"remark"` // Nullable free text
	AuditFields
}

// JournalTransaction is a balanced double-entry journal voucher.
type JournalTransaction struct {
	TransactionID string            `json:"transactionID"` // Primary Key (e.g., UUID)
	ReferenceNo   string            `json:"referenceNo"`   // Human-readable document number, unique among non-deleted transactions
	Date          time.Time         `json:"date"`
	Description   string            `json:"description"`
	Status        TransactionStatus `json:"status"`
	Items         []JournalLineItem `json:"items"`
	IsDeleted     bool              `json:"-"`
	AuditFields
}

// TotalDebit sums the debit amounts of all line items.
func (t JournalTransaction) TotalDebit() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range t.Items {
		sum = sum.Add(item.Debit)
	}
	return sum
}

// TotalCredit sums the credit amounts of all line items.
func (t JournalTransaction) TotalCredit() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range t.Items {
		sum = sum.Add(item.Credit)
	}
	return sum
}

// IsBalanced reports whether total debits exactly equal total credits.
func (t JournalTransaction) IsBalanced() bool {
	return t.TotalDebit().Equal(t.TotalCredit())
}
