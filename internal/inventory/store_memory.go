package inventory

import (
	"context"
	"sync"

	"locadora/pkg/domain"
	"locadora/pkg/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	items map[domain.ItemID]*Item
	order []domain.ItemID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[domain.ItemID]*Item)}
}

func (s *InMemoryStore) Save(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		s.order = append(s.order, item.ID)
	}
	clone := *item
	s.items[item.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.ItemID) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *item
	return &clone, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Item, 0, len(s.order))
	for _, id := range s.order {
		clone := *s.items[id]
		out = append(out, &clone)
	}
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Reserve performs the availability check and the increment under one lock,
// so two concurrent reservations can never jointly over-reserve.
func (s *InMemoryStore) Reserve(_ context.Context, id domain.ItemID, qty int) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if qty > item.Available() {
		return nil, sentinel.ErrConflict
	}
	item.Reserved += qty
	clone := *item
	return &clone, nil
}

func (s *InMemoryStore) Release(_ context.Context, id domain.ItemID, qty int) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	item.Reserved -= qty
	if item.Reserved < 0 {
		item.Reserved = 0
	}
	clone := *item
	return &clone, nil
}
