package services

import (
	"bytes"
	"context"
	"time"

	"github.com/finacct/ledger_backend/internal/core/domain"
)

// ReportingSvcFacade builds ledger and sub-ledger reports from persisted
// transactions. Read-only; an empty result set is a success, never an error.
type ReportingSvcFacade interface {
	// GetReport returns one page of general ledger rows for transactions whose date
	// falls in the inclusive [dateFrom, dateTo] range. A nil bound is unbounded.
	// timezoneOffset (hours east of UTC) fixes the day boundaries of both bounds.
	GetReport(ctx context.Context, page, pageSize int, dateFrom, dateTo *time.Time, timezoneOffset int) ([]domain.LedgerReportRow, int64, error)

	// GetSubLedgerReport aggregates one account's movements within the given month/year
	// into a running-balance view.
	GetSubLedgerReport(ctx context.Context, month, year int, accountID string, timezoneOffset int) (*domain.SubLedgerReport, error)

	// GenerateExcel renders the general ledger report for the date range as an xlsx
	// stream. Zero matching transactions still yields a well-formed empty export.
	GenerateExcel(ctx context.Context, dateFrom, dateTo *time.Time, timezoneOffset int) (*bytes.Buffer, error)

	// GetSubLedgerReportXls renders the sub-ledger report as an xlsx stream,
	// with the same empty-safe contract.
	GetSubLedgerReportXls(ctx context.Context, month, year int, accountID string, timezoneOffset int) (*bytes.Buffer, error)
}

// Exporter renders tabular report rows into a byte stream. Implementations
// must accept an empty row set.
type Exporter interface {
	Render(sheetName string, headers []string, rows [][]interface{}) (*bytes.Buffer, error)
}
