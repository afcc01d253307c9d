package loan

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"locadora/pkg/domain"
	"locadora/pkg/sentinel"
)

// InMemoryStore keeps loans in a slice so every scan observes insertion
// order, matching the contract the debt queries rely on.
type InMemoryStore struct {
	mu    sync.RWMutex
	loans []*Loan
	byID  map[domain.LoanID]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[domain.LoanID]int)}
}

func (s *InMemoryStore) Insert(_ context.Context, l *Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[l.ID]; ok {
		return sentinel.ErrConflict
	}
	clone := cloneLoan(l)
	s.byID[l.ID] = len(s.loans)
	s.loans = append(s.loans, clone)
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, l *Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[l.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.loans[idx] = cloneLoan(l)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.LoanID) (*Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneLoan(s.loans[idx]), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(*Loan) bool { return true }), nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID domain.UserID) ([]*Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(l *Loan) bool { return l.UserID == userID }), nil
}

func (s *InMemoryStore) ListByUserAndStatusIn(_ context.Context, userID domain.UserID, statuses []Status) ([]*Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(l *Loan) bool {
		if l.UserID != userID {
			return false
		}
		for _, status := range statuses {
			if l.Status == status {
				return true
			}
		}
		return false
	}), nil
}

func (s *InMemoryStore) ListUnpaidFines(_ context.Context, userID domain.UserID) ([]*Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(l *Loan) bool {
		return l.UserID == userID && l.Fine.IsPositive()
	}), nil
}

func (s *InMemoryStore) ListUnpaidFinesAll(_ context.Context) ([]*Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(l *Loan) bool { return l.Fine.IsPositive() }), nil
}

func (s *InMemoryStore) ClearFinesByUser(_ context.Context, userID domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.loans {
		if l.UserID == userID {
			l.Fine = decimal.Zero
		}
	}
	return nil
}

func (s *InMemoryStore) ListActiveByItem(_ context.Context, itemID domain.ItemID) ([]*Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(l *Loan) bool {
		return l.ItemID == itemID && l.Status == StatusActive
	}), nil
}

func (s *InMemoryStore) ExistsByItem(_ context.Context, itemID domain.ItemID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.loans {
		if l.ItemID == itemID {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) SumActiveQuantities(_ context.Context) (map[domain.ItemID]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.ItemID]int)
	for _, l := range s.loans {
		if l.Status == StatusActive {
			out[l.ItemID] += l.Quantity
		}
	}
	return out, nil
}

func (s *InMemoryStore) filter(keep func(*Loan) bool) []*Loan {
	var out []*Loan
	for _, l := range s.loans {
		if keep(l) {
			out = append(out, cloneLoan(l))
		}
	}
	return out
}

func cloneLoan(l *Loan) *Loan {
	clone := *l
	if l.ReturnDate != nil {
		d := *l.ReturnDate
		clone.ReturnDate = &d
	}
	return &clone
}
