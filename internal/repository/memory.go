package repository

import (
	"context"
	"sync"

	"prizewheel/internal/models"
)

// MemoryStore is a PrizeStore held in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	prizes []models.Prize
}

// NewMemoryStore creates a store seeded with a copy of prizes.
func NewMemoryStore(prizes []models.Prize) *MemoryStore {
	return &MemoryStore{prizes: append([]models.Prize(nil), prizes...)}
}

func (s *MemoryStore) List(_ context.Context) ([]models.Prize, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Prize{}, s.prizes...), nil
}

func (s *MemoryStore) ReplaceAll(_ context.Context, prizes []models.Prize) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prizes = append([]models.Prize(nil), prizes...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, name string, rebalance func([]models.Prize) []models.Prize) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.prizes[:0]
	removed := 0
	for _, p := range s.prizes {
		if p.Name == name {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	s.prizes = kept
	if removed > 0 && rebalance != nil {
		s.prizes = append([]models.Prize(nil), rebalance(append([]models.Prize(nil), kept...))...)
	}
	return removed, nil
}

func (s *MemoryStore) RecordWin(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.prizes {
		if s.prizes[i].Name == name {
			s.prizes[i].Used++
			return nil
		}
	}
	return ErrPrizeNotFound
}
