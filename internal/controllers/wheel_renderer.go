package controllers

import (
	"context"
	"sync"

	"github.com/google/logger"

	"prizewheel/internal/models"
	"prizewheel/internal/wheel"
)

// PrizeSource provides the prize list a wheel is drawn from.
type PrizeSource interface {
	Prizes(ctx context.Context) ([]models.Prize, error)
}

// WheelRenderer keeps the wheel built from the latest prize snapshot.
type WheelRenderer struct {
	mu     sync.RWMutex
	source PrizeSource
	wheel  wheel.Wheel
	status Status
}

func NewWheelRenderer(source PrizeSource) *WheelRenderer {
	return &WheelRenderer{
		source: source,
		wheel:  wheel.Build(nil),
	}
}

// BuildWheel fetches the prizes and rebuilds the wheel. On failure the
// previous wheel stays in place and the status reports the error.
func (r *WheelRenderer) BuildWheel(ctx context.Context) error {
	prizes, err := r.source.Prizes(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		logger.Errorf("Failed to load prize data: %v", err)
		r.status = Status{Text: msgWheelLoadError, Style: StyleError}
		return err
	}

	r.wheel = wheel.Build(prizes)
	if r.wheel.Empty() {
		r.status = Status{Text: msgWheelEmpty}
	} else {
		r.status = Status{}
	}
	return nil
}

// Wheel returns the current wheel.
func (r *WheelRenderer) Wheel() wheel.Wheel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.wheel
}

func (r *WheelRenderer) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}
