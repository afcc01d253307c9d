package inventory

import (
	"context"

	"locadora/pkg/domain"
)

// Store is the persistence port for items. Reserve must be atomic with
// respect to concurrent reservations against the same item: the availability
// check and the increment happen under one lock (memory) or one conditional
// update (Postgres). A failed reservation surfaces sentinel.ErrConflict.
type Store interface {
	Save(ctx context.Context, item *Item) error
	FindByID(ctx context.Context, id domain.ItemID) (*Item, error)
	List(ctx context.Context) ([]*Item, error)
	Delete(ctx context.Context, id domain.ItemID) error

	// Reserve increments the reserved count by qty after verifying
	// availability; returns the updated item.
	Reserve(ctx context.Context, id domain.ItemID, qty int) (*Item, error)

	// Release decrements the reserved count by qty, floored at zero;
	// returns the updated item.
	Release(ctx context.Context, id domain.ItemID, qty int) (*Item, error)
}
