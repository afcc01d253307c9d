package user

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"locadora/pkg/domain"
	dErrors "locadora/pkg/domainerrors"
	"locadora/pkg/tx"
)

// fineRecorder stands in for the loan store during settlement tests.
type fineRecorder struct {
	cleared []domain.UserID
}

func (f *fineRecorder) ClearFinesByUser(_ context.Context, userID domain.UserID) error {
	f.cleared = append(f.cleared, userID)
	return nil
}

type UserServiceSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemoryStore
	fines *fineRecorder
	svc   *Service
}

func (s *UserServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryStore()
	s.fines = &fineRecorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = NewService(s.store, s.fines, tx.NewMemoryRunner(), nil, logger)
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) TestCreate() {
	s.Run("starts with the given debt", func() {
		u, err := s.svc.Create(s.ctx, "ana", "ana@example.com", "11 98888-0000", decimal.RequireFromString("3.50"))
		s.Require().NoError(err)
		s.Equal("3.50", u.Debt.StringFixed(2))
		s.True(u.HasDebt())
	})

	s.Run("rejects negative debt", func() {
		_, err := s.svc.Create(s.ctx, "bia", "bia@example.com", "11 98888-0001", decimal.RequireFromString("-1"))
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *UserServiceSuite) TestUpdateKeepsDebt() {
	u, err := s.svc.Create(s.ctx, "caio", "caio@example.com", "11 98888-0002", decimal.RequireFromString("7.50"))
	s.Require().NoError(err)

	updated, err := s.svc.Update(s.ctx, u.ID, "caio silva", "caio@example.com", "11 98888-0003")
	s.Require().NoError(err)
	s.Equal("caio silva", updated.Name)
	s.Equal("7.50", updated.Debt.StringFixed(2))
}

func (s *UserServiceSuite) TestDelete() {
	s.Run("removes a clean user", func() {
		u, err := s.svc.Create(s.ctx, "dani", "dani@example.com", "11 98888-0004", decimal.Zero)
		s.Require().NoError(err)

		s.Require().NoError(s.svc.Delete(s.ctx, u.ID))
		_, err = s.svc.Get(s.ctx, u.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeUserNotFound))
	})

	s.Run("refuses while debt is outstanding", func() {
		u, err := s.svc.Create(s.ctx, "edu", "edu@example.com", "11 98888-0005", decimal.RequireFromString("2.50"))
		s.Require().NoError(err)

		err = s.svc.Delete(s.ctx, u.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *UserServiceSuite) TestAccrue() {
	u, err := s.svc.Create(s.ctx, "fia", "fia@example.com", "11 98888-0006", decimal.Zero)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Accrue(s.ctx, u, decimal.RequireFromString("2.50")))
	s.Require().NoError(s.svc.Accrue(s.ctx, u, decimal.RequireFromString("5.00")))

	got, err := s.svc.Get(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("7.50", got.Debt.StringFixed(2))

	s.Run("rejects negative amounts", func() {
		err := s.svc.Accrue(s.ctx, u, decimal.RequireFromString("-0.01"))
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown user", func() {
		err := s.svc.Accrue(s.ctx, &User{ID: domain.NewUserID()}, decimal.RequireFromString("1.00"))
		s.True(dErrors.HasCode(err, dErrors.CodeUserNotFound))
	})
}

// Concurrent accruals must sum; a stale read-compute-write would let one
// fine silently overwrite another.
func (s *UserServiceSuite) TestAccrueConcurrent() {
	u, err := s.svc.Create(s.ctx, "iris", "iris@example.com", "11 98888-0009", decimal.Zero)
	s.Require().NoError(err)

	const workers = 20
	fine := decimal.RequireFromString("2.50")
	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			return s.svc.Accrue(s.ctx, &User{ID: u.ID}, fine)
		})
	}
	s.Require().NoError(g.Wait())

	got, err := s.svc.Get(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("50.00", got.Debt.StringFixed(2))
}

func (s *UserServiceSuite) TestSettle() {
	s.Run("zeroes the debt and clears loan fines", func() {
		u, err := s.svc.Create(s.ctx, "gil", "gil@example.com", "11 98888-0007", decimal.RequireFromString("25.00"))
		s.Require().NoError(err)

		settled, err := s.svc.Settle(s.ctx, u.ID)
		s.Require().NoError(err)
		s.True(settled)

		got, err := s.svc.Get(s.ctx, u.ID)
		s.Require().NoError(err)
		s.True(got.Debt.IsZero())
		s.Equal([]domain.UserID{u.ID}, s.fines.cleared)
	})

	s.Run("reports nothing to settle on a clean user", func() {
		s.fines.cleared = nil
		u, err := s.svc.Create(s.ctx, "hugo", "hugo@example.com", "11 98888-0008", decimal.Zero)
		s.Require().NoError(err)

		settled, err := s.svc.Settle(s.ctx, u.ID)
		s.Require().NoError(err)
		s.False(settled)
		s.Empty(s.fines.cleared)
	})

	s.Run("unknown user", func() {
		_, err := s.svc.Settle(s.ctx, domain.NewUserID())
		s.True(dErrors.HasCode(err, dErrors.CodeUserNotFound))
	})
}
