// Package repository persists the prize list.
package repository

import (
	"context"
	"errors"

	"prizewheel/internal/models"
)

var ErrPrizeNotFound = errors.New("prize not found")

// PrizeStore keeps the ordered prize list. Order is significant: it decides
// where each prize sits on the wheel.
type PrizeStore interface {
	// List returns the prizes in wheel order.
	List(ctx context.Context) ([]models.Prize, error)
	// ReplaceAll overwrites the whole list.
	ReplaceAll(ctx context.Context, prizes []models.Prize) error
	// Delete removes every prize with the given name and returns how many went.
	// When something was removed and rebalance is not nil, the survivors are
	// replaced by rebalance(survivors) in the same transaction.
	Delete(ctx context.Context, name string, rebalance func([]models.Prize) []models.Prize) (int, error)
	// RecordWin increments the usage counter of the named prize.
	RecordWin(ctx context.Context, name string) error
}
