//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"locadora/internal/audit"
	"locadora/pkg/domain"
	"locadora/pkg/testutil/containers"
)

type OutboxSuite struct {
	suite.Suite
	ctx      context.Context
	postgres *containers.PostgresContainer
	store    *audit.OutboxStore
}

func TestOutboxSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(OutboxSuite))
}

func (s *OutboxSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = audit.NewOutboxStore(s.postgres.DB)
}

func (s *OutboxSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(s.ctx))
}

func (s *OutboxSuite) TestAppendAndListRecent() {
	userID := domain.NewUserID()
	event := audit.Event{
		Timestamp: time.Now().UTC(),
		Action:    audit.ActionFineAccrued,
		UserID:    userID,
		LoanID:    domain.NewLoanID(),
		Amount:    decimal.RequireFromString("25.00"),
		RequestID: "req-1",
	}
	s.Require().NoError(s.store.Append(s.ctx, event))

	events, err := s.store.ListRecent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionFineAccrued, events[0].Action)
	s.Equal(userID, events[0].UserID)
	s.Equal("25.00", events[0].Amount.StringFixed(2))
	s.Equal("req-1", events[0].RequestID)
}

func (s *OutboxSuite) TestPendingLifecycle() {
	s.Require().NoError(s.store.Append(s.ctx, audit.Event{
		Timestamp: time.Now().UTC(),
		Action:    audit.ActionLoanCreated,
		UserID:    domain.NewUserID(),
	}))
	s.Require().NoError(s.store.Append(s.ctx, audit.Event{
		Timestamp: time.Now().UTC(),
		Action:    audit.ActionLoanReturned,
		UserID:    domain.NewUserID(),
	}))

	pending, err := s.store.Pending(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)

	s.Require().NoError(s.store.MarkSent(s.ctx, pending[0].ID))

	pending, err = s.store.Pending(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal("loan_returned", pending[0].Action)
}
