package mapping

import (
	"github.com/finacct/ledger_backend/internal/core/domain"
	"github.com/finacct/ledger_backend/internal/models"
)

// ToModelTransaction converts a domain transaction header to its DB model.
func ToModelTransaction(txn domain.JournalTransaction) models.JournalTransaction {
	return models.JournalTransaction{
		TransactionID: txn.TransactionID,
		ReferenceNo:   txn.ReferenceNo,
		Date:          txn.Date,
		Description:   txn.Description,
		Status:        string(txn.Status),
		IsDeleted:     txn.IsDeleted,
		AuditFields:   toModelAuditFields(txn.AuditFields),
	}
}

// ToDomainTransaction converts a DB model transaction header to its domain form.
func ToDomainTransaction(m models.JournalTransaction) domain.JournalTransaction {
	return domain.JournalTransaction{
		TransactionID: m.TransactionID,
		ReferenceNo:   m.ReferenceNo,
		Date:          m.Date,
		Description:   m.Description,
		Status:        domain.TransactionStatus(m.Status),
		IsDeleted:     m.IsDeleted,
		AuditFields:   toDomainAuditFields(m.AuditFields),
	}
}

// ToModelLineItem converts a domain line item to its DB model.
func ToModelLineItem(item domain.JournalLineItem) models.JournalLineItem {
	return models.JournalLineItem{
		LineItemID:    item.LineItemID,
		TransactionID: item.TransactionID,
		AccountID:     item.AccountID,
		Debit:         item.Debit,
		Credit:        item.Credit,
		Remark:        item.Remark,
		AuditFields:   toModelAuditFields(item.AuditFields),
	}
}

// ToDomainLineItem converts a DB model line item to its domain form.
func ToDomainLineItem(m models.JournalLineItem) domain.JournalLineItem {
	return domain.JournalLineItem{
		LineItemID:    m.LineItemID,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Debit:         m.Debit,
		Credit:        m.Credit,
		Remark:        m.Remark,
		AuditFields:   toDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccount converts a DB model account to its domain form.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID: m.AccountID,
		Code:      m.Code,
		Name:      m.Name,
		IsActive:  m.IsActive,
	}
}

func toModelAuditFields(a domain.AuditFields) models.AuditFields {
	return models.AuditFields{
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt,
		LastUpdatedBy: a.LastUpdatedBy,
	}
}

func toDomainAuditFields(a models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt,
		LastUpdatedBy: a.LastUpdatedBy,
	}
}
