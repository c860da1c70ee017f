package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/finacct/ledger_backend/internal/apperrors"
	portssvc "github.com/finacct/ledger_backend/internal/core/ports/services"
	"github.com/finacct/ledger_backend/internal/dto"
	"github.com/finacct/ledger_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const (
	reportDateLayout = "2006-01-02"
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// reportingHandler handles HTTP requests for ledger reports.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func newReportingHandler(reportingService portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: reportingService}
}

// parseReportBound parses an optional "2006-01-02" query value. An empty
// string means the bound is open.
func parseReportBound(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(reportDateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("expected %s format: %w", reportDateLayout, err)
	}
	return &t, nil
}

// getLedgerReport godoc
// @Summary General ledger report
// @Description Returns one page of per-line ledger rows for transactions in the inclusive date range
// @Tags reports
// @Produce  json
// @Param   page query int false "1-based page number"
// @Param   pageSize query int false "Page size"
// @Param   dateFrom query string false "Lower date bound (2006-01-02), empty means unbounded"
// @Param   dateTo query string false "Upper date bound (2006-01-02), empty means unbounded"
// @Param   timezoneOffset query int false "Hours east of UTC used to fix day boundaries"
// @Success 200 {object} dto.LedgerReportResponse
// @Router /reports/ledger [get]
func (h *reportingHandler) getLedgerReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.LedgerReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	dateFrom, err := parseReportBound(params.DateFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid dateFrom: %s", err.Error())})
		return
	}
	dateTo, err := parseReportBound(params.DateTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid dateTo: %s", err.Error())})
		return
	}

	rows, total, err := h.reportingService.GetReport(c.Request.Context(), params.Page, params.PageSize, dateFrom, dateTo, params.TimezoneOffset)
	if err != nil {
		logger.Error("Failed to build ledger report", slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLedgerReportResponse(rows, total, params.Page, params.PageSize))
}

// downloadLedgerReport godoc
// @Summary General ledger report as xlsx
// @Description Streams the full ledger report for the date range as an Excel workbook; an empty range yields a well-formed empty workbook
// @Tags reports
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param   dateFrom query string false "Lower date bound (2006-01-02)"
// @Param   dateTo query string false "Upper date bound (2006-01-02)"
// @Param   timezoneOffset query int false "Hours east of UTC used to fix day boundaries"
// @Success 200 {file} binary
// @Router /reports/ledger/xlsx [get]
func (h *reportingHandler) downloadLedgerReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.LedgerReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	dateFrom, err := parseReportBound(params.DateFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid dateFrom: %s", err.Error())})
		return
	}
	dateTo, err := parseReportBound(params.DateTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid dateTo: %s", err.Error())})
		return
	}

	buf, err := h.reportingService.GenerateExcel(c.Request.Context(), dateFrom, dateTo, params.TimezoneOffset)
	if err != nil {
		logger.Error("Failed to export ledger report", slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="general-ledger.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// getSubLedgerReport godoc
// @Summary Sub-ledger report
// @Description Returns one account's movements for a month with opening, running and closing balances
// @Tags reports
// @Produce  json
// @Param   month query int true "Month (1-12)"
// @Param   year query int true "Year"
// @Param   accountID query string true "Account ID"
// @Param   timezoneOffset query int false "Hours east of UTC used to fix month boundaries"
// @Success 200 {object} domain.SubLedgerReport
// @Failure 404 {object} map[string]string "Account not found"
// @Router /reports/subledger [get]
func (h *reportingHandler) getSubLedgerReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.SubLedgerReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	report, err := h.reportingService.GetSubLedgerReport(c.Request.Context(), params.Month, params.Year, params.AccountID, params.TimezoneOffset)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to build sub-ledger report", slog.String("error", err.Error()), slog.String("account_id", params.AccountID))
		}
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// downloadSubLedgerReport godoc
// @Summary Sub-ledger report as xlsx
// @Description Streams one account's monthly sub-ledger as an Excel workbook; a month without movements yields opening and closing rows only
// @Tags reports
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param   month query int true "Month (1-12)"
// @Param   year query int true "Year"
// @Param   accountID query string true "Account ID"
// @Param   timezoneOffset query int false "Hours east of UTC used to fix month boundaries"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string "Account not found"
// @Router /reports/subledger/xlsx [get]
func (h *reportingHandler) downloadSubLedgerReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.SubLedgerReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	buf, err := h.reportingService.GetSubLedgerReportXls(c.Request.Context(), params.Month, params.Year, params.AccountID, params.TimezoneOffset)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to export sub-ledger report", slog.String("error", err.Error()), slog.String("account_id", params.AccountID))
		}
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("sub-ledger-%d-%02d.xlsx", params.Year, params.Month)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)
	reports := rg.Group("/reports")
	{
		reports.GET("/ledger", h.getLedgerReport)
		reports.GET("/ledger/xlsx", h.downloadLedgerReport)
		reports.GET("/subledger", h.getSubLedgerReport)
		reports.GET("/subledger/xlsx", h.downloadSubLedgerReport)
	}
}
