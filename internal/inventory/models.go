package inventory

import (
	"locadora/pkg/domain"
)

// Item is a finite-stock rental article. Reserved counts the units currently
// out on active loans; it is mutated only through the ledger's Reserve and
// Release so the invariant 0 <= Reserved <= TotalQuantity always holds.
type Item struct {
	ID            domain.ItemID
	Name          string
	Description   string
	Category      string
	TotalQuantity int
	Reserved      int
}

// Available returns the quantity not currently reserved, floored at zero.
func (i *Item) Available() int {
	if a := i.TotalQuantity - i.Reserved; a > 0 {
		return a
	}
	return 0
}
