package user

import (
	"context"

	"github.com/shopspring/decimal"

	"locadora/pkg/domain"
)

// Store is the persistence port for users. Implementations return
// sentinel.ErrNotFound for missing users; the service translates.
type Store interface {
	Save(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id domain.UserID) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Delete(ctx context.Context, id domain.UserID) error

	// AddDebt applies a relative debt adjustment and returns the new total.
	// Relative so two concurrent accruals can never overwrite each other
	// with stale reads.
	AddDebt(ctx context.Context, id domain.UserID, amount decimal.Decimal) (decimal.Decimal, error)
}
