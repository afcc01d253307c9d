package loan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"locadora/internal/audit"
	"locadora/internal/inventory"
	"locadora/internal/loan/metrics"
	"locadora/internal/user"
	"locadora/pkg/domain"
	dErrors "locadora/pkg/domainerrors"
	"locadora/pkg/requestcontext"
	"locadora/pkg/sentinel"
	"locadora/pkg/tx"
)

// StockLedger is the inventory slice the engine drives: an atomic
// check-and-reserve and its matching release.
type StockLedger interface {
	Reserve(ctx context.Context, id domain.ItemID, qty int) (*inventory.Item, error)
	Release(ctx context.Context, id domain.ItemID, qty int) (*inventory.Item, error)
}

// ItemCatalog resolves items for precondition checks and display names.
type ItemCatalog interface {
	Get(ctx context.Context, id domain.ItemID) (*inventory.Item, error)
}

// DebtLedger is the user-service slice the engine calls when a late return
// accrues a fine.
type DebtLedger interface {
	Accrue(ctx context.Context, u *user.User, amount decimal.Decimal) error
}

// Service is the loan lifecycle engine. Every mutating operation executes as
// one atomic unit through the transaction runner; no caller ever observes
// stock reserved without its loan or a fine accrued without its debt.
type Service struct {
	loans   Store
	users   user.Store
	debts   DebtLedger
	stock   StockLedger
	items   ItemCatalog
	runner  tx.Runner
	audit   *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(
	loans Store,
	users user.Store,
	debts DebtLedger,
	stock StockLedger,
	items ItemCatalog,
	runner tx.Runner,
	auditPub *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		loans:   loans,
		users:   users,
		debts:   debts,
		stock:   stock,
		items:   items,
		runner:  runner,
		audit:   auditPub,
		metrics: m,
		logger:  logger,
	}
}

// Create opens a loan. Preconditions, in order: user exists, item exists,
// user carries no debt, enough stock. The reserve and the insert commit
// together or not at all.
func (s *Service) Create(ctx context.Context, userID domain.UserID, itemID domain.ItemID, quantity int, dueDate time.Time) (*Detail, error) {
	if quantity < 1 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "quantity must be at least 1")
	}

	var created *Detail
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		u, err := s.findUser(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := s.items.Get(ctx, itemID); err != nil {
			return err
		}
		if u.HasDebt() {
			return dErrors.New(dErrors.CodeDebtBlocked, "user has outstanding debt, loan blocked")
		}

		item, err := s.stock.Reserve(ctx, itemID, quantity)
		if err != nil {
			return err
		}

		l := &Loan{
			ID:             domain.NewLoanID(),
			UserID:         userID,
			ItemID:         itemID,
			Quantity:       quantity,
			StartDate:      DateOnly(requestcontext.Now(ctx)),
			PlannedDueDate: DateOnly(dueDate),
			Renewals:       0,
			Status:         StatusActive,
			Fine:           decimal.Zero,
		}
		if err := s.loans.Insert(ctx, l); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "insert loan")
		}
		created = &Detail{Loan: l, UserName: u.Name, ItemName: item.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCreated()
	s.logger.InfoContext(ctx, "loan created",
		"loan_id", created.Loan.ID.String(),
		"user_id", userID.String(),
		"item_id", itemID.String(),
		"quantity", quantity,
	)
	_ = s.audit.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionLoanCreated,
		UserID:    userID,
		ItemID:    itemID,
		LoanID:    created.Loan.ID,
		RequestID: requestcontext.RequestID(ctx),
	})
	return created, nil
}

// Return closes a loan, releasing stock and computing lateness
// retroactively. The status check and the return-date check both guard
// against a second return, defending against the two fields ever drifting
// out of sync.
func (s *Service) Return(ctx context.Context, loanID domain.LoanID) (*Detail, error) {
	var (
		returned *Detail
		late     bool
	)
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		l, err := s.findLoan(ctx, loanID)
		if err != nil {
			return err
		}
		if l.Status == StatusReturned || l.ReturnDate != nil {
			return dErrors.New(dErrors.CodeAlreadyReturned, "loan was already returned")
		}

		// Resolve the borrower before touching stock: the memory runner
		// serializes but cannot roll back, so no store mutation may precede
		// a fallible read.
		u, err := s.findUser(ctx, l.UserID)
		if err != nil {
			return err
		}
		item, err := s.stock.Release(ctx, l.ItemID, l.Quantity)
		if err != nil {
			return err
		}

		today := DateOnly(requestcontext.Now(ctx))
		l.ReturnDate = &today

		if daysLate := l.DaysLate(today); daysLate > 0 {
			l.Fine = DailyFineRate.Mul(decimal.NewFromInt(int64(daysLate)))
			l.Status = StatusLate
			if err := s.debts.Accrue(ctx, u, l.Fine); err != nil {
				return err
			}
			late = true
		} else {
			l.Fine = decimal.Zero
			l.Status = StatusReturned
		}

		if err := s.loans.Update(ctx, l); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "update loan")
		}
		returned = &Detail{Loan: l, UserName: u.Name, ItemName: item.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncReturned(late)
	s.logger.InfoContext(ctx, "loan returned",
		"loan_id", loanID.String(),
		"status", string(returned.Loan.Status),
		"fine", returned.Loan.Fine.String(),
	)
	_ = s.audit.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionLoanReturned,
		UserID:    returned.Loan.UserID,
		ItemID:    returned.Loan.ItemID,
		LoanID:    loanID,
		RequestID: requestcontext.RequestID(ctx),
	})
	if late {
		fine, _ := returned.Loan.Fine.Float64()
		s.metrics.AddFine(fine)
		_ = s.audit.Emit(ctx, audit.Event{
			Timestamp: requestcontext.Now(ctx),
			Action:    audit.ActionFineAccrued,
			UserID:    returned.Loan.UserID,
			LoanID:    loanID,
			Amount:    returned.Loan.Fine,
			RequestID: requestcontext.RequestID(ctx),
		})
	}
	return returned, nil
}

// Renew extends the planned due date. Only active loans renew, debt blocks
// renewal, and the third attempt always fails regardless of elapsed time.
func (s *Service) Renew(ctx context.Context, loanID domain.LoanID, extraDays int) (*Detail, error) {
	if extraDays <= 0 {
		extraDays = DefaultRenewalDays
	}

	var renewed *Detail
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		l, err := s.findLoan(ctx, loanID)
		if err != nil {
			return err
		}
		if l.Status != StatusActive {
			return dErrors.New(dErrors.CodeLoanNotActive, "only active loans can be renewed")
		}
		u, err := s.findUser(ctx, l.UserID)
		if err != nil {
			return err
		}
		if u.HasDebt() {
			return dErrors.New(dErrors.CodeDebtBlocked, "user has outstanding debt, renewal blocked")
		}
		if l.Renewals >= MaxRenewals {
			return dErrors.New(dErrors.CodeRenewalLimitReached, "renewal limit of 2 reached, return required")
		}

		l.PlannedDueDate = l.PlannedDueDate.AddDate(0, 0, extraDays)
		l.Renewals++
		if err := s.loans.Update(ctx, l); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "update loan")
		}

		item, err := s.items.Get(ctx, l.ItemID)
		if err != nil {
			return err
		}
		renewed = &Detail{Loan: l, UserName: u.Name, ItemName: item.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRenewed()
	_ = s.audit.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionLoanRenewed,
		UserID:    renewed.Loan.UserID,
		ItemID:    renewed.Loan.ItemID,
		LoanID:    loanID,
		RequestID: requestcontext.RequestID(ctx),
	})
	return renewed, nil
}

// Get returns one loan with resolved display names.
func (s *Service) Get(ctx context.Context, loanID domain.LoanID) (*Detail, error) {
	l, err := s.findLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, l)
}

// List returns all loans with resolved display names.
func (s *Service) List(ctx context.Context) ([]*Detail, error) {
	loans, err := s.loans.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list loans")
	}
	return s.resolveAll(ctx, loans)
}

// UserDebts returns the union, de-duplicated by loan identity, of the user's
// loans that are Active or Late and the user's loans carrying an unpaid
// fine. Order is the insertion order of the underlying scan; loans matching
// both criteria appear once.
func (s *Service) UserDebts(ctx context.Context, userID domain.UserID) ([]*Detail, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	pending, err := s.loans.ListByUserAndStatusIn(ctx, userID, []Status{StatusActive, StatusLate})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list pending loans")
	}
	fined, err := s.loans.ListUnpaidFines(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list fined loans")
	}

	seen := make(map[domain.LoanID]bool, len(pending))
	merged := make([]*Loan, 0, len(pending)+len(fined))
	for _, l := range pending {
		seen[l.ID] = true
		merged = append(merged, l)
	}
	for _, l := range fined {
		if !seen[l.ID] {
			seen[l.ID] = true
			merged = append(merged, l)
		}
	}
	return s.resolveAll(ctx, merged)
}

// DebtReport lists every loan carrying an unpaid fine across all users.
func (s *Service) DebtReport(ctx context.Context) ([]*Detail, error) {
	fined, err := s.loans.ListUnpaidFinesAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list fined loans")
	}
	return s.resolveAll(ctx, fined)
}

// ActiveHolders implements inventory.HoldingsView.
func (s *Service) ActiveHolders(ctx context.Context, itemID domain.ItemID) ([]inventory.Holder, error) {
	active, err := s.loans.ListActiveByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	holders := make([]inventory.Holder, 0, len(active))
	for _, l := range active {
		u, err := s.users.FindByID(ctx, l.UserID)
		if err != nil {
			return nil, err
		}
		holders = append(holders, inventory.Holder{UserName: u.Name, Quantity: l.Quantity})
	}
	return holders, nil
}

// ActiveQuantities implements inventory.HoldingsView.
func (s *Service) ActiveQuantities(ctx context.Context) (map[domain.ItemID]int, error) {
	return s.loans.SumActiveQuantities(ctx)
}

// ItemOnLoan implements inventory.HoldingsView.
func (s *Service) ItemOnLoan(ctx context.Context, itemID domain.ItemID) (bool, error) {
	return s.loans.ExistsByItem(ctx, itemID)
}

func (s *Service) findLoan(ctx context.Context, id domain.LoanID) (*Loan, error) {
	l, err := s.loans.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeLoanNotFound, "loan not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find loan")
	}
	return l, nil
}

func (s *Service) findUser(ctx context.Context, id domain.UserID) (*user.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUserNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find user")
	}
	return u, nil
}

func (s *Service) resolve(ctx context.Context, l *Loan) (*Detail, error) {
	u, err := s.findUser(ctx, l.UserID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.Get(ctx, l.ItemID)
	if err != nil {
		return nil, err
	}
	return &Detail{Loan: l, UserName: u.Name, ItemName: item.Name}, nil
}

func (s *Service) resolveAll(ctx context.Context, loans []*Loan) ([]*Detail, error) {
	userNames := make(map[domain.UserID]string)
	itemNames := make(map[domain.ItemID]string)

	out := make([]*Detail, 0, len(loans))
	for _, l := range loans {
		name, ok := userNames[l.UserID]
		if !ok {
			u, err := s.findUser(ctx, l.UserID)
			if err != nil {
				return nil, err
			}
			name = u.Name
			userNames[l.UserID] = name
		}
		itemName, ok := itemNames[l.ItemID]
		if !ok {
			item, err := s.items.Get(ctx, l.ItemID)
			if err != nil {
				return nil, err
			}
			itemName = item.Name
			itemNames[l.ItemID] = itemName
		}
		out = append(out, &Detail{Loan: l, UserName: name, ItemName: itemName})
	}
	return out, nil
}
