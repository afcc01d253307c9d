package user

import (
	"github.com/shopspring/decimal"

	"locadora/pkg/domain"
)

// User is a registered borrower. Debt is an incremental ledger: it is only
// ever increased by fine accrual at return time and zeroed by settlement. It
// is never re-derived from the loans currently carrying fines.
type User struct {
	ID    domain.UserID
	Name  string
	Email string
	Phone string
	Debt  decimal.Decimal
}

// HasDebt reports whether the user is blocked from borrowing and renewing.
func (u *User) HasDebt() bool {
	return u.Debt.IsPositive()
}
