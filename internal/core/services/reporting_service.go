package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/finacct/ledger_backend/internal/core/domain"
	portsrepo "github.com/finacct/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/finacct/ledger_backend/internal/core/ports/services"
	"github.com/finacct/ledger_backend/internal/middleware"
	"github.com/finacct/ledger_backend/internal/utils/accounting"
	"github.com/finacct/ledger_backend/internal/utils/pagination"
)

// reportingService builds ledger and sub-ledger reports. Read-only over the
// journal repository; rendering is delegated to the injected exporter.
type reportingService struct {
	journalRepo portsrepo.JournalRepositoryFacade
	coaRepo     portsrepo.COAReader
	exporter    portssvc.Exporter
}

// NewReportingService creates the reporting engine.
func NewReportingService(journalRepo portsrepo.JournalRepositoryFacade, coaRepo portsrepo.COAReader, exporter portssvc.Exporter) portssvc.ReportingSvcFacade {
	return &reportingService{
		journalRepo: journalRepo,
		coaRepo:     coaRepo,
		exporter:    exporter,
	}
}

// Ensure reportingService implements the ReportingSvcFacade interface
var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// rangeBounds widens the inclusive [dateFrom, dateTo] date range into UTC
// instants, honoring the caller's timezone offset. Nil bounds stay nil (unbounded).
func rangeBounds(dateFrom, dateTo *time.Time, timezoneOffset int) (from, to *time.Time) {
	if dateFrom != nil {
		start, _ := accounting.DayBounds(*dateFrom, timezoneOffset)
		from = &start
	}
	if dateTo != nil {
		_, end := accounting.DayBounds(*dateTo, timezoneOffset)
		to = &end
	}
	return from, to
}

// buildLedgerRows flattens the transactions in range into report rows,
// hydrated with account code/name, in deterministic order.
func (s *reportingService) buildLedgerRows(ctx context.Context, dateFrom, dateTo *time.Time, timezoneOffset int) ([]domain.LedgerReportRow, error) {
	from, to := rangeBounds(dateFrom, dateTo, timezoneOffset)

	txns, err := s.journalRepo.FindTransactionsByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by date range: %w", err)
	}

	accountIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, txn := range txns {
		for _, item := range txn.Items {
			if _, ok := seen[item.AccountID]; !ok && item.AccountID != "" {
				seen[item.AccountID] = struct{}{}
				accountIDs = append(accountIDs, item.AccountID)
			}
		}
	}
	accounts := map[string]domain.Account{}
	if len(accountIDs) > 0 {
		accounts, err = s.coaRepo.FindAccountsByIDs(ctx, accountIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve accounts for report: %w", err)
		}
	}

	rows := make([]domain.LedgerReportRow, 0)
	for _, txn := range txns {
		for _, item := range txn.Items {
			row := domain.LedgerReportRow{
				TransactionID: txn.TransactionID,
				ReferenceNo:   txn.ReferenceNo,
				Date:          txn.Date,
				Description:   txn.Description,
				Status:        txn.Status,
				Remark:        item.Remark,
				Debit:         item.Debit,
				Credit:        item.Credit,
			}
			if account, ok := accounts[item.AccountID]; ok {
				row.AccountCode = account.Code
				row.AccountName = account.Name
			}
			rows = append(rows, row)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		if rows[i].ReferenceNo != rows[j].ReferenceNo {
			return rows[i].ReferenceNo < rows[j].ReferenceNo
		}
		return rows[i].TransactionID < rows[j].TransactionID
	})
	return rows, nil
}

// GetReport returns one page of general ledger rows. All four bound
// combinations (both, from-only, to-only, neither) are valid; absent bounds
// are unbounded and an empty range is an empty success.
func (s *reportingService) GetReport(ctx context.Context, page, pageSize int, dateFrom, dateTo *time.Time, timezoneOffset int) ([]domain.LedgerReportRow, int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	rows, err := s.buildLedgerRows(ctx, dateFrom, dateTo, timezoneOffset)
	if err != nil {
		logger.Error("Failed to build ledger report", slog.String("error", err.Error()))
		return nil, 0, err
	}

	start, end := pagination.Slice(len(rows), page, pageSize)
	logger.Debug("Ledger report built", slog.Int("total_rows", len(rows)), slog.Int("page", page))
	return rows[start:end], int64(len(rows)), nil
}

// GetSubLedgerReport aggregates one account's movements within a month into a
// running-balance view: opening balance, chronological movements, closing balance.
func (s *reportingService) GetSubLedgerReport(ctx context.Context, month, year int, accountID string, timezoneOffset int) (*domain.SubLedgerReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.coaRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account %s: %w", accountID, err)
	}

	periodStart, periodEnd := accounting.MonthBounds(month, year, timezoneOffset)

	openingDebit, openingCredit, err := s.journalRepo.SumAccountMovements(ctx, accountID, periodStart)
	if err != nil {
		logger.Error("Failed to sum opening movements", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to compute opening balance for account %s: %w", accountID, err)
	}
	opening := accounting.NetBalance(openingDebit, openingCredit)

	movements, err := s.journalRepo.FindMovementsByAccountPeriod(ctx, accountID, periodStart, periodEnd)
	if err != nil {
		logger.Error("Failed to fetch account movements", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to retrieve movements for account %s: %w", accountID, err)
	}
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].Date.Before(movements[j].Date)
	})

	balances := accounting.RunningBalances(opening, movements)
	report := &domain.SubLedgerReport{
		AccountID:      accountID,
		AccountCode:    account.Code,
		AccountName:    account.Name,
		Month:          month,
		Year:           year,
		OpeningBalance: opening,
		ClosingBalance: opening,
		Rows:           make([]domain.SubLedgerRow, len(movements)),
	}
	for i, m := range movements {
		report.Rows[i] = domain.SubLedgerRow{
			Date:        m.Date,
			ReferenceNo: m.ReferenceNo,
			Description: m.Description,
			Remark:      m.Remark,
			Debit:       m.Debit,
			Credit:      m.Credit,
			Balance:     balances[i],
		}
	}
	if len(balances) > 0 {
		report.ClosingBalance = balances[len(balances)-1]
	}

	logger.Debug("Sub-ledger report built",
		slog.String("account_id", accountID),
		slog.Int("month", month),
		slog.Int("year", year),
		slog.Int("row_count", len(report.Rows)))
	return report, nil
}

var ledgerReportHeaders = []string{"Date", "Reference No", "Description", "Account Code", "Account Name", "Remark", "Debit", "Credit"}

// GenerateExcel renders the general ledger report for the date range as an
// xlsx stream. Zero matching transactions still yields a well-formed empty export.
func (s *reportingService) GenerateExcel(ctx context.Context, dateFrom, dateTo *time.Time, timezoneOffset int) (*bytes.Buffer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	rows, err := s.buildLedgerRows(ctx, dateFrom, dateTo, timezoneOffset)
	if err != nil {
		logger.Error("Failed to build ledger rows for export", slog.String("error", err.Error()))
		return nil, err
	}

	loc := time.FixedZone("report", timezoneOffset*3600)
	cells := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells[i] = []interface{}{
			row.Date.In(loc).Format("2006-01-02"),
			row.ReferenceNo,
			row.Description,
			row.AccountCode,
			row.AccountName,
			row.Remark,
			row.Debit.String(),
			row.Credit.String(),
		}
	}

	buf, err := s.exporter.Render("General Ledger", ledgerReportHeaders, cells)
	if err != nil {
		logger.Error("Exporter failed for ledger report", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to render ledger report: %w", err)
	}
	logger.Info("Ledger report exported", slog.Int("row_count", len(rows)))
	return buf, nil
}

var subLedgerReportHeaders = []string{"Date", "Reference No", "Description", "Remark", "Debit", "Credit", "Balance"}

// GetSubLedgerReportXls renders the sub-ledger report as an xlsx stream, with
// the same empty-safe contract.
func (s *reportingService) GetSubLedgerReportXls(ctx context.Context, month, year int, accountID string, timezoneOffset int) (*bytes.Buffer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	report, err := s.GetSubLedgerReport(ctx, month, year, accountID, timezoneOffset)
	if err != nil {
		return nil, err
	}

	loc := time.FixedZone("report", timezoneOffset*3600)
	cells := make([][]interface{}, 0, len(report.Rows)+2)
	cells = append(cells, []interface{}{"", "", "Opening Balance", "", "", "", report.OpeningBalance.String()})
	for _, row := range report.Rows {
		cells = append(cells, []interface{}{
			row.Date.In(loc).Format("2006-01-02"),
			row.ReferenceNo,
			row.Description,
			row.Remark,
			row.Debit.String(),
			row.Credit.String(),
			row.Balance.String(),
		})
	}
	cells = append(cells, []interface{}{"", "", "Closing Balance", "", "", "", report.ClosingBalance.String()})

	// Sheet names are capped at 31 characters by the xlsx format.
	sheetName := fmt.Sprintf("Sub Ledger %d-%02d", year, month)
	buf, err := s.exporter.Render(sheetName, subLedgerReportHeaders, cells)
	if err != nil {
		logger.Error("Exporter failed for sub-ledger report", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to render sub-ledger report: %w", err)
	}
	logger.Info("Sub-ledger report exported", slog.String("account_id", accountID), slog.Int("row_count", len(report.Rows)))
	return buf, nil
}
