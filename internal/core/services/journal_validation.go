package services

import (
	"fmt"
	"time"

	"github.com/finacct/ledger_backend/internal/apperrors"
	"github.com/finacct/ledger_backend/internal/core/domain"
)

// ValidateTransaction checks a candidate transaction against the ledger
// invariants before create/update. It is pure: accounts is the set of
// already-resolved COA entries keyed by ID, now is the validation time.
// Every problem is reported; nothing short-circuits, so the caller sees the
// full error list at once. An empty result means the transaction is valid.
func ValidateTransaction(txn domain.JournalTransaction, accounts map[string]domain.Account, now time.Time) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if txn.ReferenceNo == "" {
		errs = append(errs, apperrors.ValidationError{Field: "referenceNo", Message: "reference number is required"})
	}

	if txn.Date.IsZero() {
		errs = append(errs, apperrors.ValidationError{Field: "date", Message: "date is required"})
	} else if txn.Date.After(now) {
		errs = append(errs, apperrors.ValidationError{Field: "date", Message: "date cannot be in the future"})
	}

	if len(txn.Items) == 0 {
		errs = append(errs, apperrors.ValidationError{Field: "items", Message: "at least one line item is required"})
		return errs
	}

	for i, item := range txn.Items {
		field := fmt.Sprintf("items[%d]", i)

		if item.Debit.IsNegative() {
			errs = append(errs, apperrors.ValidationError{Field: field + ".debit", Message: "debit cannot be negative"})
		}
		if item.Credit.IsNegative() {
			errs = append(errs, apperrors.ValidationError{Field: field + ".credit", Message: "credit cannot be negative"})
		}

		hasDebit := !item.Debit.IsZero()
		hasCredit := !item.Credit.IsZero()
		switch {
		case hasDebit && hasCredit:
			errs = append(errs, apperrors.ValidationError{Field: field, Message: "debit and credit cannot both be filled on one line"})
		case !hasDebit && !hasCredit:
			errs = append(errs, apperrors.ValidationError{Field: field, Message: "either debit or credit must be filled"})
		}

		if hasDebit || hasCredit {
			if item.AccountID == "" {
				errs = append(errs, apperrors.ValidationError{Field: field + ".accountID", Message: "account is required on a line with an amount"})
			} else if account, ok := accounts[item.AccountID]; !ok {
				errs = append(errs, apperrors.ValidationError{Field: field + ".accountID", Message: "account could not be resolved"})
			} else if !account.IsActive {
				errs = append(errs, apperrors.ValidationError{Field: field + ".accountID", Message: "account is inactive"})
			}
		}
	}

	// Aggregate balance: exact decimal equality, no tolerance.
	totalDebit := txn.TotalDebit()
	totalCredit := txn.TotalCredit()
	if !totalDebit.Equal(totalCredit) {
		errs = append(errs, apperrors.ValidationError{
			Field:   "items",
			Message: fmt.Sprintf("total debit %s does not equal total credit %s", totalDebit.String(), totalCredit.String()),
		})
	}
	return errs
}
