package inventory

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"locadora/pkg/domain"
	dErrors "locadora/pkg/domainerrors"
)

// stubHoldings serves the availability reports without a loan service.
type stubHoldings struct {
	holders    map[domain.ItemID][]Holder
	quantities map[domain.ItemID]int
	onLoan     map[domain.ItemID]bool
}

func (h *stubHoldings) ActiveHolders(_ context.Context, itemID domain.ItemID) ([]Holder, error) {
	return h.holders[itemID], nil
}

func (h *stubHoldings) ActiveQuantities(_ context.Context) (map[domain.ItemID]int, error) {
	return h.quantities, nil
}

func (h *stubHoldings) ItemOnLoan(_ context.Context, itemID domain.ItemID) (bool, error) {
	return h.onLoan[itemID], nil
}

type InventoryServiceSuite struct {
	suite.Suite
	ctx      context.Context
	holdings *stubHoldings
	svc      *Service
}

func (s *InventoryServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.holdings = &stubHoldings{
		holders:    make(map[domain.ItemID][]Holder),
		quantities: make(map[domain.ItemID]int),
		onLoan:     make(map[domain.ItemID]bool),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = NewService(NewInMemoryStore(), s.holdings, nil, nil, logger)
}

func TestInventoryServiceSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceSuite))
}

func (s *InventoryServiceSuite) TestCreate() {
	item, err := s.svc.Create(s.ctx, "catan", "base game", "games", 5)
	s.Require().NoError(err)
	s.Equal(5, item.Available())

	_, err = s.svc.Create(s.ctx, "broken", "", "games", -1)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *InventoryServiceSuite) TestUpdate() {
	item, err := s.svc.Create(s.ctx, "azul", "", "games", 5)
	s.Require().NoError(err)
	_, err = s.svc.Reserve(s.ctx, item.ID, 3)
	s.Require().NoError(err)

	s.Run("cannot drop total below the reserved count", func() {
		_, err := s.svc.Update(s.ctx, item.ID, "azul", "", "games", 2)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("shrinking to the reserved count is allowed", func() {
		updated, err := s.svc.Update(s.ctx, item.ID, "azul", "", "games", 3)
		s.Require().NoError(err)
		s.Equal(0, updated.Available())
	})
}

func (s *InventoryServiceSuite) TestDelete() {
	s.Run("refuses while the item is on loan", func() {
		item, err := s.svc.Create(s.ctx, "root", "", "games", 2)
		s.Require().NoError(err)
		s.holdings.onLoan[item.ID] = true

		err = s.svc.Delete(s.ctx, item.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("removes an unreferenced item", func() {
		item, err := s.svc.Create(s.ctx, "dixit", "", "games", 2)
		s.Require().NoError(err)

		s.Require().NoError(s.svc.Delete(s.ctx, item.ID))
		_, err = s.svc.Get(s.ctx, item.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeItemNotFound))
	})
}

func (s *InventoryServiceSuite) TestReserveTranslatesStoreFacts() {
	item, err := s.svc.Create(s.ctx, "scythe", "", "games", 2)
	s.Require().NoError(err)

	_, err = s.svc.Reserve(s.ctx, item.ID, 3)
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientStock))

	_, err = s.svc.Reserve(s.ctx, domain.NewItemID(), 1)
	s.True(dErrors.HasCode(err, dErrors.CodeItemNotFound))

	_, err = s.svc.Reserve(s.ctx, item.ID, 0)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *InventoryServiceSuite) TestReports() {
	item, err := s.svc.Create(s.ctx, "wingspan", "", "games", 6)
	s.Require().NoError(err)
	_, err = s.svc.Reserve(s.ctx, item.ID, 4)
	s.Require().NoError(err)
	s.holdings.holders[item.ID] = []Holder{{UserName: "ana", Quantity: 4}}
	s.holdings.quantities[item.ID] = 4

	avail, err := s.svc.ItemAvailability(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(2, avail.Available)
	s.Require().Len(avail.Holders, 1)
	s.Equal("ana", avail.Holders[0].UserName)

	report, err := s.svc.AvailabilityReport(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(report, 1)
	s.Equal(4, report[0].OnLoan)
	s.Equal(2, report[0].Available)

	_, err = s.svc.ItemAvailability(s.ctx, domain.NewItemID())
	s.True(dErrors.HasCode(err, dErrors.CodeItemNotFound))
}
