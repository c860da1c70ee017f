package accounting

import (
	"time"

	"github.com/finacct/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SumLineItems returns the total debit and total credit across a line item set.
// Used in both services and repositories to keep the balance math in one place.
func SumLineItems(items []domain.JournalLineItem) (debit, credit decimal.Decimal) {
	debit = decimal.Zero
	credit = decimal.Zero
	for _, item := range items {
		debit = debit.Add(item.Debit)
		credit = credit.Add(item.Credit)
	}
	return debit, credit
}

// NetBalance computes a debit-normal balance: debits increase, credits decrease.
func NetBalance(debit, credit decimal.Decimal) decimal.Decimal {
	return debit.Sub(credit)
}

// RunningBalances walks movements in order and returns the balance after each
// movement, starting from opening.
func RunningBalances(opening decimal.Decimal, movements []domain.AccountMovement) []decimal.Decimal {
	balances := make([]decimal.Decimal, len(movements))
	balance := opening
	for i, m := range movements {
		balance = balance.Add(NetBalance(m.Debit, m.Credit))
		balances[i] = balance
	}
	return balances
}

// DayBounds returns the UTC instants that delimit the calendar day named by
// t's date, interpreted in the timezone at offsetHours east of UTC. The end
// bound is exclusive. The date components are read as given, not shifted into
// the zone first: a date-only bound parsed as midnight UTC must keep naming
// the same calendar day at negative offsets.
func DayBounds(t time.Time, offsetHours int) (start, end time.Time) {
	loc := time.FixedZone("report", offsetHours*3600)
	year, month, day := t.Date()
	start = time.Date(year, month, day, 0, 0, 0, 0, loc).UTC()
	return start, start.AddDate(0, 0, 1)
}

// MonthBounds returns the UTC instants that delimit the given calendar month
// in the timezone at offsetHours east of UTC. The end bound is exclusive.
func MonthBounds(month, year, offsetHours int) (start, end time.Time) {
	loc := time.FixedZone("report", offsetHours*3600)
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc).UTC()
	return start, time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0).UTC()
}
