package inventory

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"locadora/internal/audit"
	"locadora/internal/inventory/cache"
	"locadora/pkg/domain"
	dErrors "locadora/pkg/domainerrors"
	"locadora/pkg/requestcontext"
	"locadora/pkg/sentinel"
)

// Holder is one user currently holding units of an item.
type Holder struct {
	UserName string
	Quantity int
}

// HoldingsView is the slice of loan data the availability reports need.
// Implemented by the loan service; declared here to keep the dependency
// pointing from loans to inventory, not back.
type HoldingsView interface {
	ActiveHolders(ctx context.Context, itemID domain.ItemID) ([]Holder, error)
	ActiveQuantities(ctx context.Context) (map[domain.ItemID]int, error)
	ItemOnLoan(ctx context.Context, itemID domain.ItemID) (bool, error)
}

// Service is the stock ledger plus item management. Reserve and Release are
// the only mutators of an item's reserved count.
type Service struct {
	store    Store
	holdings HoldingsView
	cache    *cache.AvailabilityCache
	audit    *audit.Publisher
	logger   *slog.Logger
}

func NewService(store Store, holdings HoldingsView, availability *cache.AvailabilityCache, auditPub *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		holdings: holdings,
		cache:    availability,
		audit:    auditPub,
		logger:   logger,
	}
}

// SetHoldings breaks the construction cycle between the loan service (which
// needs the ledger) and the availability reports (which need loan data).
func (s *Service) SetHoldings(holdings HoldingsView) {
	s.holdings = holdings
}

func (s *Service) List(ctx context.Context) ([]*Item, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id domain.ItemID) (*Item, error) {
	item, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeItemNotFound, "item not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find item")
	}
	return item, nil
}

func (s *Service) Create(ctx context.Context, name, description, category string, totalQuantity int) (*Item, error) {
	if totalQuantity < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "total quantity must not be negative")
	}
	item := &Item{
		ID:            domain.NewItemID(),
		Name:          name,
		Description:   description,
		Category:      category,
		TotalQuantity: totalQuantity,
	}
	if err := s.store.Save(ctx, item); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save item")
	}
	_ = s.audit.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionItemCreated,
		ItemID:    item.ID,
		RequestID: requestcontext.RequestID(ctx),
	})
	return item, nil
}

// Update changes descriptive fields and the total quantity. The reserved
// count is not manually mutable.
func (s *Service) Update(ctx context.Context, id domain.ItemID, name, description, category string, totalQuantity int) (*Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if totalQuantity < item.Reserved {
		return nil, dErrors.New(dErrors.CodeConflict, "total quantity cannot drop below the reserved count")
	}
	item.Name = name
	item.Description = description
	item.Category = category
	item.TotalQuantity = totalQuantity
	if err := s.store.Save(ctx, item); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save item")
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "availability cache invalidation failed", "item_id", id.String(), "error", err)
	}
	return item, nil
}

// Delete removes an item unless any loan still references it.
func (s *Service) Delete(ctx context.Context, id domain.ItemID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	onLoan, err := s.holdings.ItemOnLoan(ctx, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "check item loans")
	}
	if onLoan {
		return dErrors.New(dErrors.CodeConflict, "item cannot be deleted while it is on loan")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete item")
	}
	_ = s.audit.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionItemDeleted,
		ItemID:    id,
		RequestID: requestcontext.RequestID(ctx),
	})
	return nil
}

// Reserve is the ledger's check-and-reserve. The store guarantees atomicity;
// the service translates store facts into domain errors and keeps the
// availability cache honest.
func (s *Service) Reserve(ctx context.Context, id domain.ItemID, qty int) (*Item, error) {
	if qty < 1 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "quantity must be at least 1")
	}
	item, err := s.store.Reserve(ctx, id, qty)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeItemNotFound, "item not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeInsufficientStock, "insufficient stock for this loan")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "reserve stock")
		}
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "availability cache invalidation failed", "item_id", id.String(), "error", err)
	}
	return item, nil
}

// Release hands reserved units back. Under correct use it never goes
// negative; the store floors at zero regardless.
func (s *Service) Release(ctx context.Context, id domain.ItemID, qty int) (*Item, error) {
	item, err := s.store.Release(ctx, id, qty)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeItemNotFound, "item not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "release stock")
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "availability cache invalidation failed", "item_id", id.String(), "error", err)
	}
	return item, nil
}

// ItemAvailability is the per-item report: who holds the item and how many
// units remain.
type ItemAvailability struct {
	Item      *Item
	Holders   []Holder
	Available int
}

// ItemAvailability reports one item's current availability, consulting the
// cache for the availability figure and gathering the item and its holders in
// parallel.
func (s *Service) ItemAvailability(ctx context.Context, id domain.ItemID) (*ItemAvailability, error) {
	var (
		item    *Item
		holders []Holder
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		item, err = s.Get(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		holders, err = s.holdings.ActiveHolders(gctx, id)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "list item holders")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	available, ok := s.cache.Get(ctx, id)
	if !ok {
		available = item.Available()
		s.cache.Set(ctx, id, available)
	}
	return &ItemAvailability{Item: item, Holders: holders, Available: available}, nil
}

// AvailabilitySummary is one row of the all-items report.
type AvailabilitySummary struct {
	Item      *Item
	OnLoan    int
	Available int
}

// AvailabilityReport lists availability across all items, fetching the item
// list and the active-loan quantities concurrently.
func (s *Service) AvailabilityReport(ctx context.Context) ([]AvailabilitySummary, error) {
	var (
		items  []*Item
		onLoan map[domain.ItemID]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.store.List(gctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "list items")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		onLoan, err = s.holdings.ActiveQuantities(gctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "sum active loans")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]AvailabilitySummary, 0, len(items))
	for _, item := range items {
		out = append(out, AvailabilitySummary{
			Item:      item,
			OnLoan:    onLoan[item.ID],
			Available: item.Available(),
		})
	}
	return out, nil
}
