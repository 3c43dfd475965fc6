package controllers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/logger"

	"prizewheel/internal/models"
	"prizewheel/internal/wheel"
)

var (
	ErrSpinInProgress = errors.New("a spin is already in progress")
	ErrPrizeNotFound  = errors.New("outcome is not on the wheel")
)

// Spinner asks the server for an outcome.
type Spinner interface {
	Spin(ctx context.Context) (models.SpinResult, error)
}

// SpinState is what the spin view shows.
type SpinState struct {
	Disabled   bool
	Status     Status
	Rotation   float64
	Transition string
}

// SpinController runs one spin at a time against the wheel held by a
// WheelRenderer.
type SpinController struct {
	renderer *WheelRenderer
	api      Spinner
	duration time.Duration
	wait     func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	state    SpinState
	onChange func(SpinState)
}

// NewSpinController creates a controller whose animation lasts duration.
// The same duration must be used for the wheel's CSS transition.
func NewSpinController(renderer *WheelRenderer, api Spinner, duration time.Duration) *SpinController {
	return &SpinController{
		renderer: renderer,
		api:      api,
		duration: duration,
		wait:     sleep,
		state:    SpinState{Transition: "none"},
	}
}

// OnChange registers a callback that receives every state change.
func (c *SpinController) OnChange(f func(SpinState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = f
}

func (c *SpinController) State() SpinState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Spin asks for an outcome, turns the wheel onto it and announces it once the
// animation has run. It returns ErrSpinInProgress while another spin runs.
func (c *SpinController) Spin(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Disabled {
		c.mu.Unlock()
		return ErrSpinInProgress
	}
	c.state.Disabled = true
	c.state.Status = Status{Text: msgSpinning}
	c.mu.Unlock()
	c.notify()

	result, err := c.api.Spin(ctx)
	if err != nil {
		logger.Errorf("Spinning error: %v", err)
		c.finish(Status{Text: msgSpinError, Style: StyleError})
		return err
	}
	if result.Outcome == "" {
		c.finish(Status{Text: msgNoPrizes})
		return nil
	}

	w, index := c.locate(ctx, result.Outcome)
	if index < 0 {
		logger.Warningf("Outcome %q is not on the wheel", result.Outcome)
		c.finish(Status{Text: msgPrizeNotFound, Style: StyleError})
		return fmt.Errorf("%w: %q", ErrPrizeNotFound, result.Outcome)
	}
	degrees, err := w.SpinDegrees(index)
	if err != nil {
		c.finish(Status{Text: msgPrizeNotFound, Style: StyleError})
		return err
	}

	c.update(func(s *SpinState) {
		s.Rotation = degrees
		s.Transition = wheel.TransitionCSS(c.duration)
	})

	if err := c.wait(ctx, c.duration); err != nil {
		c.update(func(s *SpinState) {
			s.Disabled = false
			s.Status = Status{Text: msgSpinError, Style: StyleError}
			s.Transition = "none"
			s.Rotation = wheel.NormalizeRotation(degrees)
		})
		return err
	}

	c.update(func(s *SpinState) {
		s.Disabled = false
		s.Status = Status{Text: fmt.Sprintf("You won: %s!", result.Outcome)}
		s.Transition = "none"
		s.Rotation = wheel.NormalizeRotation(degrees)
	})
	return nil
}

// locate finds the outcome on the cached wheel, rebuilding the wheel once when
// the cache no longer matches the server.
func (c *SpinController) locate(ctx context.Context, outcome string) (wheel.Wheel, int) {
	w := c.renderer.Wheel()
	if index := w.IndexOf(outcome); index >= 0 {
		return w, index
	}
	if err := c.renderer.BuildWheel(ctx); err != nil {
		return w, -1
	}
	w = c.renderer.Wheel()
	return w, w.IndexOf(outcome)
}

func (c *SpinController) finish(status Status) {
	c.update(func(s *SpinState) {
		s.Disabled = false
		s.Status = status
	})
}

func (c *SpinController) update(f func(*SpinState)) {
	c.mu.Lock()
	f(&c.state)
	c.mu.Unlock()
	c.notify()
}

func (c *SpinController) notify() {
	c.mu.Lock()
	state, f := c.state, c.onChange
	c.mu.Unlock()
	if f != nil {
		f(state)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
