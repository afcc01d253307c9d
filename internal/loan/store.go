package loan

import (
	"context"

	"locadora/pkg/domain"
)

// Store is the persistence port for loans. List-style methods return loans in
// insertion order of the underlying scan. Missing loans surface
// sentinel.ErrNotFound.
type Store interface {
	Insert(ctx context.Context, l *Loan) error
	Update(ctx context.Context, l *Loan) error
	FindByID(ctx context.Context, id domain.LoanID) (*Loan, error)
	List(ctx context.Context) ([]*Loan, error)
	ListByUser(ctx context.Context, userID domain.UserID) ([]*Loan, error)
	ListByUserAndStatusIn(ctx context.Context, userID domain.UserID, statuses []Status) ([]*Loan, error)

	// ListUnpaidFines is the canonical debt query: loans for the user with
	// fine greater than zero. All debt-query behavior derives from it.
	ListUnpaidFines(ctx context.Context, userID domain.UserID) ([]*Loan, error)

	// ListUnpaidFinesAll is the cross-user variant backing the debt report.
	ListUnpaidFinesAll(ctx context.Context) ([]*Loan, error)

	// ClearFinesByUser zeroes the fine on every loan of the user; used only
	// by debt settlement.
	ClearFinesByUser(ctx context.Context, userID domain.UserID) error

	ListActiveByItem(ctx context.Context, itemID domain.ItemID) ([]*Loan, error)
	ExistsByItem(ctx context.Context, itemID domain.ItemID) (bool, error)

	// SumActiveQuantities totals the on-loan quantity per item across all
	// active loans.
	SumActiveQuantities(ctx context.Context) (map[domain.ItemID]int, error)
}
