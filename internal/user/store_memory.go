package user

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"locadora/pkg/domain"
	"locadora/pkg/sentinel"
)

// InMemoryStore backs tests and the zero-config run mode. It copies on read
// and write so callers observe store semantics, not shared pointers.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[domain.UserID]*User
	order []domain.UserID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[domain.UserID]*User)}
}

func (s *InMemoryStore) Save(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		s.order = append(s.order, u.ID)
	}
	clone := *u
	s.users[u.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.UserID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.order))
	for _, id := range s.order {
		clone := *s.users[id]
		out = append(out, &clone)
	}
	return out, nil
}

func (s *InMemoryStore) AddDebt(_ context.Context, id domain.UserID, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return decimal.Zero, sentinel.ErrNotFound
	}
	u.Debt = u.Debt.Add(amount)
	return u.Debt, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.users, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
