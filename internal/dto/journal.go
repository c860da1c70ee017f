package dto

import (
	"time"

	"github.com/finacct/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineItemRequest is one line of a transaction draft.
// Amount-shape rules (mutual exclusivity, balance) are enforced by the
// validator, not by binding, so the caller sees every problem at once.
type JournalLineItemRequest struct {
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit" binding:"omitempty,dgte0"`
	Credit    decimal.Decimal `json:"credit" binding:"omitempty,dgte0"`
	Remark    string          `json:"remark"`
}

// SaveJournalTransactionRequest is the payload for both create and update.
type SaveJournalTransactionRequest struct {
	ReferenceNo string                   `json:"referenceNo"`
	Date        time.Time                `json:"date"`
	Description string                   `json:"description"`
	Items       []JournalLineItemRequest `json:"items"`
}

// ToDomain converts the request into an unpersisted domain transaction.
// Identifiers and audit fields are filled in by the service.
func (r SaveJournalTransactionRequest) ToDomain() domain.JournalTransaction {
	items := make([]domain.JournalLineItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.JournalLineItem{
			AccountID: item.AccountID,
			Debit:     item.Debit,
			Credit:    item.Credit,
			Remark:    item.Remark,
		}
	}
	return domain.JournalTransaction{
		ReferenceNo: r.ReferenceNo,
		Date:        r.Date,
		Description: r.Description,
		Items:       items,
	}
}

// ListJournalTransactionsParams holds the paged-read inputs.
type ListJournalTransactionsParams struct {
	Page     int                       `form:"page"`
	PageSize int                       `form:"pageSize"`
	Keyword  string                    `form:"keyword"`
	OrderBy  string                    `form:"orderBy"` // "date" or "reference_no"
	Desc     bool                      `form:"desc"`
	Status   *domain.TransactionStatus `form:"status"`
}

// JournalLineItemResponse defines the data returned for a line item.
type JournalLineItemResponse struct {
	LineItemID  string          `json:"lineItemID"`
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode,omitempty"`
	AccountName string          `json:"accountName,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Remark      string          `json:"remark,omitempty"`
}

// JournalTransactionResponse defines the data returned for a transaction.
type JournalTransactionResponse struct {
	TransactionID string                    `json:"transactionID"`
	ReferenceNo   string                    `json:"referenceNo"`
	Date          time.Time                 `json:"date"`
	Description   string                    `json:"description"`
	Status        domain.TransactionStatus  `json:"status"`
	TotalDebit    decimal.Decimal           `json:"totalDebit"`
	TotalCredit   decimal.Decimal           `json:"totalCredit"`
	Items         []JournalLineItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time                 `json:"createdAt"`
	CreatedBy     string                    `json:"createdBy"`
}

// ListJournalTransactionsResponse is one page of transactions plus the total row count.
type ListJournalTransactionsResponse struct {
	Items    []JournalTransactionResponse `json:"items"`
	Total    int64                        `json:"total"`
	Page     int                          `json:"page"`
	PageSize int                          `json:"pageSize"`
}

// ToJournalLineItemResponse converts a domain line item to its response DTO.
func ToJournalLineItemResponse(item domain.JournalLineItem) JournalLineItemResponse {
	resp := JournalLineItemResponse{
		LineItemID: item.LineItemID,
		AccountID:  item.AccountID,
		Debit:      item.Debit,
		Credit:     item.Credit,
		Remark:     item.Remark,
	}
	if item.Account != nil {
		resp.AccountCode = item.Account.Code
		resp.AccountName = item.Account.Name
	}
	return resp
}

// ToJournalTransactionResponse converts a domain transaction to its response DTO.
func ToJournalTransactionResponse(txn *domain.JournalTransaction) JournalTransactionResponse {
	items := make([]JournalLineItemResponse, len(txn.Items))
	for i, item := range txn.Items {
		items[i] = ToJournalLineItemResponse(item)
	}
	return JournalTransactionResponse{
		TransactionID: txn.TransactionID,
		ReferenceNo:   txn.ReferenceNo,
		Date:          txn.Date,
		Description:   txn.Description,
		Status:        txn.Status,
		TotalDebit:    txn.TotalDebit(),
		TotalCredit:   txn.TotalCredit(),
		Items:         items,
		CreatedAt:     txn.CreatedAt,
		CreatedBy:     txn.CreatedBy,
	}
}

// ToJournalTransactionResponses converts a slice of domain transactions.
func ToJournalTransactionResponses(txns []domain.JournalTransaction) []JournalTransactionResponse {
	responses := make([]JournalTransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToJournalTransactionResponse(&txns[i])
	}
	return responses
}
