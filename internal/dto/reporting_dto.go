package dto

import (
	"github.com/finacct/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReportParams holds the query inputs of the general ledger report.
// DateFrom/DateTo are "2006-01-02" strings; empty means unbounded.
type LedgerReportParams struct {
	Page           int    `form:"page"`
	PageSize       int    `form:"pageSize"`
	DateFrom       string `form:"dateFrom"`
	DateTo         string `form:"dateTo"`
	TimezoneOffset int    `form:"timezoneOffset"`
}

// SubLedgerReportParams holds the query inputs of the sub-ledger report.
type SubLedgerReportParams struct {
	Month          int    `form:"month" binding:"required,min=1,max=12"`
	Year           int    `form:"year" binding:"required"`
	AccountID      string `form:"accountID" binding:"required"`
	TimezoneOffset int    `form:"timezoneOffset"`
}

// LedgerReportResponse is one page of ledger report rows plus totals.
type LedgerReportResponse struct {
	Rows        []domain.LedgerReportRow `json:"rows"`
	Total       int64                    `json:"total"`
	Page        int                      `json:"page"`
	PageSize    int                      `json:"pageSize"`
	TotalDebit  decimal.Decimal          `json:"totalDebit"`
	TotalCredit decimal.Decimal          `json:"totalCredit"`
}

// ToLedgerReportResponse assembles the paged report response with page-level totals.
func ToLedgerReportResponse(rows []domain.LedgerReportRow, total int64, page, pageSize int) LedgerReportResponse {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, row := range rows {
		totalDebit = totalDebit.Add(row.Debit)
		totalCredit = totalCredit.Add(row.Credit)
	}
	return LedgerReportResponse{
		Rows:        rows,
		Total:       total,
		Page:        page,
		PageSize:    pageSize,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
	}
}
