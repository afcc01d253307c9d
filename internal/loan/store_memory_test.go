package loan

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"locadora/pkg/domain"
	"locadora/pkg/sentinel"
)

type LoanStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *LoanStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestLoanStoreSuite(t *testing.T) {
	suite.Run(t, new(LoanStoreSuite))
}

func (s *LoanStoreSuite) newLoan(userID domain.UserID, itemID domain.ItemID) *Loan {
	return &Loan{
		ID:             domain.NewLoanID(),
		UserID:         userID,
		ItemID:         itemID,
		Quantity:       1,
		StartDate:      DateOnly(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)),
		PlannedDueDate: DateOnly(time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)),
		Status:         StatusActive,
		Fine:           decimal.Zero,
	}
}

func (s *LoanStoreSuite) TestInsertAndFind() {
	s.Run("inserts and finds", func() {
		l := s.newLoan(domain.NewUserID(), domain.NewItemID())
		s.Require().NoError(s.store.Insert(s.ctx, l))

		found, err := s.store.FindByID(s.ctx, l.ID)
		s.Require().NoError(err)
		s.Equal(l.ID, found.ID)
		s.Equal(StatusActive, found.Status)
	})

	s.Run("rejects duplicate IDs", func() {
		l := s.newLoan(domain.NewUserID(), domain.NewItemID())
		s.Require().NoError(s.store.Insert(s.ctx, l))
		s.ErrorIs(s.store.Insert(s.ctx, l), sentinel.ErrConflict)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, domain.NewLoanID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("reads are copies", func() {
		l := s.newLoan(domain.NewUserID(), domain.NewItemID())
		s.Require().NoError(s.store.Insert(s.ctx, l))

		found, err := s.store.FindByID(s.ctx, l.ID)
		s.Require().NoError(err)
		ret := time.Now()
		found.ReturnDate = &ret
		found.Status = StatusReturned

		again, err := s.store.FindByID(s.ctx, l.ID)
		s.Require().NoError(err)
		s.Nil(again.ReturnDate)
		s.Equal(StatusActive, again.Status)
	})
}

func (s *LoanStoreSuite) TestUpdate() {
	l := s.newLoan(domain.NewUserID(), domain.NewItemID())
	s.Require().NoError(s.store.Insert(s.ctx, l))

	l.Status = StatusLate
	l.Fine = decimal.RequireFromString("5.00")
	s.Require().NoError(s.store.Update(s.ctx, l))

	found, err := s.store.FindByID(s.ctx, l.ID)
	s.Require().NoError(err)
	s.Equal(StatusLate, found.Status)
	s.Equal("5.00", found.Fine.StringFixed(2))

	s.ErrorIs(s.store.Update(s.ctx, s.newLoan(domain.NewUserID(), domain.NewItemID())), sentinel.ErrNotFound)
}

func (s *LoanStoreSuite) TestScansKeepInsertionOrder() {
	userID := domain.NewUserID()
	itemID := domain.NewItemID()

	first := s.newLoan(userID, itemID)
	second := s.newLoan(userID, itemID)
	second.Status = StatusLate
	second.Fine = decimal.RequireFromString("2.50")
	third := s.newLoan(domain.NewUserID(), itemID)

	s.Require().NoError(s.store.Insert(s.ctx, first))
	s.Require().NoError(s.store.Insert(s.ctx, second))
	s.Require().NoError(s.store.Insert(s.ctx, third))

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(first.ID, all[0].ID)
	s.Equal(second.ID, all[1].ID)
	s.Equal(third.ID, all[2].ID)

	byUser, err := s.store.ListByUser(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(byUser, 2)
	s.Equal(first.ID, byUser[0].ID)

	pending, err := s.store.ListByUserAndStatusIn(s.ctx, userID, []Status{StatusActive, StatusLate})
	s.Require().NoError(err)
	s.Len(pending, 2)

	activeOnly, err := s.store.ListByUserAndStatusIn(s.ctx, userID, []Status{StatusActive})
	s.Require().NoError(err)
	s.Require().Len(activeOnly, 1)
	s.Equal(first.ID, activeOnly[0].ID)
}

func (s *LoanStoreSuite) TestFineQueries() {
	userID := domain.NewUserID()
	itemID := domain.NewItemID()

	clean := s.newLoan(userID, itemID)
	fined := s.newLoan(userID, itemID)
	fined.Status = StatusLate
	fined.Fine = decimal.RequireFromString("7.50")
	otherFined := s.newLoan(domain.NewUserID(), itemID)
	otherFined.Status = StatusLate
	otherFined.Fine = decimal.RequireFromString("2.50")

	s.Require().NoError(s.store.Insert(s.ctx, clean))
	s.Require().NoError(s.store.Insert(s.ctx, fined))
	s.Require().NoError(s.store.Insert(s.ctx, otherFined))

	mine, err := s.store.ListUnpaidFines(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(fined.ID, mine[0].ID)

	all, err := s.store.ListUnpaidFinesAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	s.Require().NoError(s.store.ClearFinesByUser(s.ctx, userID))

	mine, err = s.store.ListUnpaidFines(s.ctx, userID)
	s.Require().NoError(err)
	s.Empty(mine)

	// Other users' fines survive the clear.
	all, err = s.store.ListUnpaidFinesAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(otherFined.ID, all[0].ID)
}

func (s *LoanStoreSuite) TestItemViews() {
	itemID := domain.NewItemID()

	active := s.newLoan(domain.NewUserID(), itemID)
	active.Quantity = 2
	returned := s.newLoan(domain.NewUserID(), itemID)
	returned.Status = StatusReturned

	s.Require().NoError(s.store.Insert(s.ctx, active))
	s.Require().NoError(s.store.Insert(s.ctx, returned))

	holders, err := s.store.ListActiveByItem(s.ctx, itemID)
	s.Require().NoError(err)
	s.Require().Len(holders, 1)
	s.Equal(active.ID, holders[0].ID)

	exists, err := s.store.ExistsByItem(s.ctx, itemID)
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.store.ExistsByItem(s.ctx, domain.NewItemID())
	s.Require().NoError(err)
	s.False(exists)

	sums, err := s.store.SumActiveQuantities(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[domain.ItemID]int{itemID: 2}, sums)
}
