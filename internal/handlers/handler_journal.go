package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finacct/ledger_backend/internal/apperrors"
	portssvc "github.com/finacct/ledger_backend/internal/core/ports/services"
	"github.com/finacct/ledger_backend/internal/dto"
	"github.com/finacct/ledger_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests for journal transactions.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(journalService portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: journalService}
}

// respondWithError maps the service error taxonomy onto HTTP statuses:
// validation failures carry field-level detail, lookup misses are 404,
// state conflicts are 409, everything else is a 500.
func respondWithError(c *gin.Context, err error) {
	var validationErrs apperrors.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": validationErrs})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// createTransaction godoc
// @Summary Create a journal transaction
// @Description Validates and persists a new balanced journal transaction in DRAFT state
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.SaveJournalTransactionRequest true "Transaction draft"
// @Success 201 {object} map[string]string "Returns the ID of the created transaction"
// @Failure 400 {object} map[string]interface{} "Validation failure with field messages"
// @Router /transactions [post]
func (h *journalHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SaveJournalTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind transaction payload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	transactionID, err := h.journalService.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		logger.Warn("Failed to create transaction", slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transactionID": transactionID})
}

// getTransaction godoc
// @Summary Get a journal transaction
// @Description Retrieves a transaction with its line items and accounts hydrated
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.JournalTransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Router /transactions/{transactionID} [get]
func (h *journalHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	txn, err := h.journalService.GetTransactionByID(c.Request.Context(), transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to get transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List journal transactions
// @Description Returns one page of non-deleted transactions with the total row count
// @Tags transactions
// @Produce  json
// @Param   page query int false "1-based page number"
// @Param   pageSize query int false "Page size"
// @Param   keyword query string false "Matches reference number or description"
// @Success 200 {object} dto.ListJournalTransactionsResponse
// @Router /transactions [get]
func (h *journalHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListJournalTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	txns, total, err := h.journalService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListJournalTransactionsResponse{
		Items:    dto.ToJournalTransactionResponses(txns),
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	})
}

// updateTransaction godoc
// @Summary Update a journal transaction
// @Description Re-validates the draft and replaces the line item set wholesale
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   transaction body dto.SaveJournalTransactionRequest true "Updated transaction draft"
// @Success 200 {object} map[string]int64 "Number of affected rows"
// @Failure 400 {object} map[string]interface{} "Validation failure with field messages"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already posted"
// @Router /transactions/{transactionID} [put]
func (h *journalHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	var req dto.SaveJournalTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	rowsAffected, err := h.journalService.UpdateTransaction(c.Request.Context(), transactionID, req)
	if err != nil {
		logger.Warn("Failed to update transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rowsAffected": rowsAffected})
}

// deleteTransaction godoc
// @Summary Delete a journal transaction
// @Description Soft-deletes an unposted transaction; posted transactions are final
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} map[string]int64 "Number of affected rows"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already posted"
// @Router /transactions/{transactionID} [delete]
func (h *journalHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	rowsAffected, err := h.journalService.DeleteTransaction(c.Request.Context(), transactionID)
	if err != nil {
		logger.Warn("Failed to delete transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rowsAffected": rowsAffected})
}

// postTransaction godoc
// @Summary Post a journal transaction
// @Description Finalizes a transaction; re-posting an already posted transaction is a no-op success
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} map[string]int64 "Number of affected rows"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Router /transactions/{transactionID}/post [post]
func (h *journalHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	rowsAffected, err := h.journalService.PostTransaction(c.Request.Context(), transactionID)
	if err != nil {
		logger.Warn("Failed to post transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rowsAffected": rowsAffected})
}

// reverseTransaction godoc
// @Summary Reverse a journal transaction by reference number
// @Description Creates a new transaction with every line's debit and credit swapped; the original is unchanged
// @Tags transactions
// @Produce  json
// @Param   referenceNo path string true "Reference number of the transaction to reverse"
// @Success 201 {object} map[string]string "Returns the ID of the reversing transaction"
// @Failure 404 {object} map[string]string "Reference number not found"
// @Router /transactions/reverse/{referenceNo} [post]
func (h *journalHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	referenceNo := c.Param("referenceNo")

	newID, err := h.journalService.ReverseTransactionByReferenceNo(c.Request.Context(), referenceNo)
	if err != nil {
		logger.Warn("Failed to reverse transaction", slog.String("error", err.Error()), slog.String("reference_no", referenceNo))
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transactionID": newID})
}

func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)
	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.createTransaction)
		transactions.GET("", h.listTransactions)
		transactions.GET("/:transactionID", h.getTransaction)
		transactions.PUT("/:transactionID", h.updateTransaction)
		transactions.DELETE("/:transactionID", h.deleteTransaction)
		transactions.POST("/:transactionID/post", h.postTransaction)
		transactions.POST("/reverse/:referenceNo", h.reverseTransaction)
	}
}
