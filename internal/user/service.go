package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"locadora/internal/audit"
	"locadora/pkg/domain"
	dErrors "locadora/pkg/domainerrors"
	"locadora/pkg/requestcontext"
	"locadora/pkg/sentinel"
	"locadora/pkg/tx"
)

// LoanFines is the slice of the loan store settlement needs: zeroing the fine
// on every loan of a user. Declared here so settlement does not depend on the
// loan package.
type LoanFines interface {
	ClearFinesByUser(ctx context.Context, userID domain.UserID) error
}

// Service owns user records and the debt ledger. Accrue and Settle are the
// only two writers of User.Debt; the ledger is incremental, never re-derived
// from loan fines.
type Service struct {
	store  Store
	fines  LoanFines
	runner tx.Runner
	audit  *audit.Publisher
	logger *slog.Logger
}

func NewService(store Store, fines LoanFines, runner tx.Runner, auditPub *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		fines:  fines,
		runner: runner,
		audit:  auditPub,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id domain.UserID) (*User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUserNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find user")
	}
	return u, nil
}

// Create registers a user. Field-presence validation happens at the handler;
// the service enforces only the domain rule that debt starts non-negative.
func (s *Service) Create(ctx context.Context, name, email, phone string, debt decimal.Decimal) (*User, error) {
	if debt.IsNegative() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "debt must not be negative")
	}
	u := &User{
		ID:    domain.NewUserID(),
		Name:  name,
		Email: email,
		Phone: phone,
		Debt:  debt,
	}
	if err := s.store.Save(ctx, u); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save user")
	}
	_ = s.audit.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionUserCreated,
		UserID:    u.ID,
		RequestID: requestcontext.RequestID(ctx),
	})
	return u, nil
}

// Update changes contact fields. Debt cannot be mutated through this path.
func (s *Service) Update(ctx context.Context, id domain.UserID, name, email, phone string) (*User, error) {
	var updated *User
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		u, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		u.Name = name
		u.Email = email
		u.Phone = phone
		if err := s.store.Save(ctx, u); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "save user")
		}
		updated = u
		return nil
	})
	return updated, err
}

// Delete removes a user. Users carrying debt are never deleted.
func (s *Service) Delete(ctx context.Context, id domain.UserID) error {
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		u, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if u.HasDebt() {
			return dErrors.New(dErrors.CodeConflict, "user cannot be deleted while debt is outstanding")
		}
		if err := s.store.Delete(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "delete user")
		}
		return nil
	})
	if err != nil {
		return err
	}
	_ = s.audit.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionUserDeleted,
		UserID:    id,
		RequestID: requestcontext.RequestID(ctx),
	})
	return nil
}

// Accrue adds a fine to the user's running debt. It runs inside the caller's
// transaction: the loan engine invokes it while returning a late loan. The
// store applies the adjustment relatively, so a concurrent accrual for the
// same user can never be lost to a stale read.
func (s *Service) Accrue(ctx context.Context, u *User, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return dErrors.New(dErrors.CodeBadRequest, "accrual amount must not be negative")
	}
	total, err := s.store.AddDebt(ctx, u.ID, amount)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUserNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "accrue debt")
	}
	u.Debt = total
	return nil
}

// Settle performs a full write-down: it zeroes the user's debt and the fine
// on every one of their loans in one atomic unit. Returns false when there
// was nothing to settle. There is no partial-payment primitive.
func (s *Service) Settle(ctx context.Context, id domain.UserID) (bool, error) {
	var (
		settled bool
		amount  decimal.Decimal
	)
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		u, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if !u.HasDebt() {
			return nil
		}
		amount = u.Debt
		u.Debt = decimal.Zero
		if err := s.store.Save(ctx, u); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "save user")
		}
		if err := s.fines.ClearFinesByUser(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "clear loan fines")
		}
		settled = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if settled {
		s.logger.InfoContext(ctx, "debt settled", "user_id", id.String(), "amount", amount.String())
		_ = s.audit.Emit(ctx, audit.Event{
			Timestamp: requestcontext.Now(ctx),
			Action:    audit.ActionDebtSettled,
			UserID:    id,
			Amount:    amount,
			RequestID: requestcontext.RequestID(ctx),
		})
	}
	return settled, nil
}
