package controllers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/logger"

	"prizewheel/internal/models"
)

var ErrNoSuchRow = errors.New("no such row")

// AdminAPI is the server side of the admin table.
type AdminAPI interface {
	DeletePrize(ctx context.Context, name string) (models.APIResult, error)
	SavePrizes(ctx context.Context, rows []models.PrizeRow) (models.APIResult, error)
}

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(prompt string) bool

type tableRow struct {
	id    int
	row   models.PrizeRow
	saved bool
}

// AdminTable is the editable prize list. Its rows are the source of truth
// until Save overwrites the server's list with them.
type AdminTable struct {
	api     AdminAPI
	confirm ConfirmFunc

	mu     sync.Mutex
	rows   []tableRow
	nextID int
	status Status
}

// NewAdminTable starts a table showing prizes as the server knows them.
func NewAdminTable(api AdminAPI, confirm ConfirmFunc, prizes []models.Prize) *AdminTable {
	t := &AdminTable{api: api, confirm: confirm}
	for _, p := range prizes {
		t.appendRow(models.RowFromPrize(p), true)
	}
	return t
}

func (t *AdminTable) appendRow(row models.PrizeRow, saved bool) {
	t.nextID++
	t.rows = append(t.rows, tableRow{id: t.nextID, row: row, saved: saved})
}

// Rows returns the visible rows in order.
func (t *AdminTable) Rows() []models.PrizeRow {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.PrizeRow, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.row
	}
	return out
}

func (t *AdminTable) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// AddRow appends an empty row. Nothing is sent to the server.
func (t *AdminTable) AddRow() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.appendRow(models.PrizeRow{Probability: "0", UsageLimit: "0"}, false)
	return len(t.rows) - 1
}

// EditRow replaces the values typed into row i.
func (t *AdminTable) EditRow(i int, row models.PrizeRow) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.rows) {
		return ErrNoSuchRow
	}
	t.rows[i].row = row
	return nil
}

// DeleteRow removes row i after the user confirms. Rows the server already
// has are deleted there first and stay put if that fails. It reports whether
// the row went away.
func (t *AdminTable) DeleteRow(ctx context.Context, i int) (bool, error) {
	t.mu.Lock()
	if i < 0 || i >= len(t.rows) {
		t.mu.Unlock()
		return false, ErrNoSuchRow
	}
	target := t.rows[i]
	t.mu.Unlock()

	name := target.row.Name
	if t.confirm != nil && !t.confirm(fmt.Sprintf(`Are you sure you want to delete the prize "%s"?`, name)) {
		return false, nil
	}

	if !target.saved {
		t.mu.Lock()
		t.removeRow(target.id)
		t.status = Status{Text: msgRowRemoved, Style: StyleSuccess}
		t.mu.Unlock()
		return true, nil
	}

	result, err := t.api.DeletePrize(ctx, name)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		logger.Errorf("Delete error: %v", err)
		t.status = Status{Text: msgDeleteError, Style: StyleError}
		return false, err
	}
	if !result.Success {
		t.status = Status{Text: "Error: " + result.Message, Style: StyleError}
		return false, nil
	}
	t.removeRow(target.id)
	t.status = Status{Text: result.Message, Style: StyleSuccess}
	return true, nil
}

func (t *AdminTable) removeRow(id int) {
	for i, r := range t.rows {
		if r.id == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return
		}
	}
}

// Save sends every visible row, in order and as typed, to the server.
func (t *AdminTable) Save(ctx context.Context) (bool, error) {
	t.mu.Lock()
	rows := make([]models.PrizeRow, len(t.rows))
	ids := make(map[int]bool, len(t.rows))
	for i, r := range t.rows {
		rows[i] = r.row
		ids[r.id] = true
	}
	t.mu.Unlock()

	result, err := t.api.SavePrizes(ctx, rows)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		logger.Errorf("Save error: %v", err)
		t.status = Status{Text: msgSaveError, Style: StyleError}
		return false, err
	}
	if !result.Success {
		t.status = Status{Text: "Error: " + result.Message, Style: StyleError}
		return false, nil
	}
	for i := range t.rows {
		if ids[t.rows[i].id] {
			t.rows[i].saved = true
		}
	}
	t.status = Status{Text: result.Message, Style: StyleSuccess}
	return true, nil
}
