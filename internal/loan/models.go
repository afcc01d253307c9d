package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"locadora/pkg/domain"
	dErrors "locadora/pkg/domainerrors"
)

// Status is the loan state machine: loans start Active and end Returned or
// Late. Blocked is declared for data-model completeness but no operation
// currently transitions a loan into it.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusReturned Status = "RETURNED"
	StatusLate     Status = "LATE"
	StatusBlocked  Status = "BLOCKED"
)

// ParseStatus validates a stored status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusReturned, StatusLate, StatusBlocked:
		return Status(s), nil
	}
	return "", dErrors.New(dErrors.CodeInternal, "unknown loan status: "+s)
}

// DailyFineRate is the late-return penalty per whole day, in currency units.
var DailyFineRate = decimal.RequireFromString("2.50")

const (
	// MaxRenewals caps due-date extensions per loan.
	MaxRenewals = 2

	// DefaultRenewalDays is used when the caller does not pass extra days.
	DefaultRenewalDays = 7
)

// Loan records one user borrowing one item in a fixed quantity. Loans are a
// permanent historical record: they are created once and never deleted.
// Quantity is immutable after creation; ReturnDate is set at most once.
type Loan struct {
	ID             domain.LoanID
	UserID         domain.UserID
	ItemID         domain.ItemID
	Quantity       int
	StartDate      time.Time
	PlannedDueDate time.Time
	ReturnDate     *time.Time
	Renewals       int
	Status         Status
	Fine           decimal.Decimal
}

// DaysLate returns the whole days between the planned due date and at,
// floored at zero. Lateness is computed lazily: nothing reclassifies an
// overdue loan until it is returned.
func (l *Loan) DaysLate(at time.Time) int {
	days := int(DateOnly(at).Sub(DateOnly(l.PlannedDueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Detail is the loan aggregate handed back to transport: the loan plus the
// resolved user and item names responses display.
type Detail struct {
	Loan     *Loan
	UserName string
	ItemName string
}

// DateOnly truncates to a calendar date in UTC. All loan dates are stored
// this way so day arithmetic is exact.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
