package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerReportRow is a single line of the general ledger report:
// one journal line item joined with its transaction header and account.
type LedgerReportRow struct {
	TransactionID string            `json:"transactionID"`
	ReferenceNo   string            `json:"referenceNo"`
	Date          time.Time         `json:"date"`
	Description   string            `json:"description"`
	Status        TransactionStatus `json:"status"`
	AccountCode   string            `json:"accountCode"`
	AccountName   string            `json:"accountName"`
	Remark        string            `json:"remark"`
	Debit         decimal.Decimal   `json:"debit"`
	Credit        decimal.Decimal   `json:"credit"`
}

// AccountMovement is a single debit/credit against one account, joined with
// its transaction header. It is the raw material of the sub-ledger report.
type AccountMovement struct {
	Date        time.Time       `json:"date"`
	ReferenceNo string          `json:"referenceNo"`
	Description string          `json:"description"`
	Remark      string          `json:"remark"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// SubLedgerRow is one movement of an account within a sub-ledger period,
// carrying the running balance after the movement.
type SubLedgerRow struct {
	Date        time.Time       `json:"date"`
	ReferenceNo string          `json:"referenceNo"`
	Description string          `json:"description"`
	Remark      string          `json:"remark"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// SubLedgerReport is the per-account, per-period running balance view.
// Balances follow the debit-normal convention: debits increase, credits decrease.
type SubLedgerReport struct {
	AccountID      string          `json:"accountID"`
	AccountCode    string          `json:"accountCode"`
	AccountName    string          `json:"accountName"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	Rows           []SubLedgerRow  `json:"rows"`
}
