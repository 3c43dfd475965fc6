package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/logger"

	"prizewheel/internal/models"
	"prizewheel/internal/repository"
	"prizewheel/internal/wheel"
)

var ErrPrizeNotFound = errors.New("not found")

// WheelService owns the prize list and decides spin outcomes.
type WheelService struct {
	mu    sync.Mutex
	store repository.PrizeStore
	// randFloat returns a value in [0, 1).
	randFloat func() float64
}

// NewWheelService creates a WheelService on top of store. A nil randFloat
// falls back to math/rand.
func NewWheelService(store repository.PrizeStore, randFloat func() float64) *WheelService {
	if randFloat == nil {
		randFloat = rand.Float64
	}
	return &WheelService{
		store:     store,
		randFloat: randFloat,
	}
}

// Prizes returns the current prize list in wheel order.
func (s *WheelService) Prizes(ctx context.Context) ([]models.Prize, error) {
	return s.store.List(ctx)
}

// Save replaces the whole prize list with rows. Win counters carry over for
// prizes whose name survives the edit.
func (s *WheelService) Save(ctx context.Context, rows []models.PrizeRow) error {
	prizes, err := ParseRows(rows)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("load prizes: %w", err)
	}
	used := make(map[string]int, len(current))
	for _, p := range current {
		used[p.Name] = p.Used
	}
	for i := range prizes {
		prizes[i].Used = used[prizes[i].Name]
	}

	if err := s.store.ReplaceAll(ctx, Normalize(prizes)); err != nil {
		return fmt.Errorf("save prizes: %w", err)
	}
	logger.Infof("Saved %d prizes", len(prizes))
	return nil
}

// Delete removes the named prize and renormalises the rest. The store does
// both in one step, so a failure never leaves unnormalised weights behind.
func (s *WheelService) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.store.Delete(ctx, name, Normalize)
	if err != nil {
		return fmt.Errorf("delete prize: %w", err)
	}
	if removed == 0 {
		return ErrPrizeNotFound
	}
	logger.Infof("Deleted prize %q", name)
	return nil
}

// Spin picks a prize by weight among those still available. The result is
// empty when nothing can be won.
func (s *WheelService) Spin(ctx context.Context) (models.SpinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prizes, err := s.store.List(ctx)
	if err != nil {
		return models.SpinResult{}, fmt.Errorf("load prizes: %w", err)
	}

	index := Pick(prizes, s.randFloat())
	if index < 0 {
		logger.Warning("Spin requested but no prize is available")
		return models.SpinResult{}, nil
	}
	winner := prizes[index]
	if winner.UsageLimit > 0 {
		if err := s.store.RecordWin(ctx, winner.Name); err != nil {
			return models.SpinResult{}, fmt.Errorf("record win: %w", err)
		}
	}

	degrees, err := wheel.Build(prizes).SpinDegrees(index)
	if err != nil {
		return models.SpinResult{}, err
	}
	logger.Infof("Spin landed on %q (index %d)", winner.Name, index)
	return models.SpinResult{
		Outcome: winner.Name,
		Index:   &index,
		Degrees: &degrees,
	}, nil
}

// Pick maps r in [0, 1) onto the cumulative weights of the available prizes
// and returns the winner's index in prizes, or -1 when nothing is available.
func Pick(prizes []models.Prize, r float64) int {
	total := 0.0
	last := -1
	for i, p := range prizes {
		if p.Available() && p.Probability > 0 {
			total += p.Probability
			last = i
		}
	}
	if last < 0 {
		return -1
	}

	target := r * total
	cumulative := 0.0
	for i, p := range prizes {
		if !p.Available() || p.Probability <= 0 {
			continue
		}
		cumulative += p.Probability
		if target < cumulative {
			return i
		}
	}
	return last
}
