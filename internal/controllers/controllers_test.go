package controllers

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"prizewheel/internal/models"
)

type fakeSource struct {
	mu     sync.Mutex
	prizes []models.Prize
	err    error
	calls  int
}

func (f *fakeSource) Prizes(context.Context) ([]models.Prize, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.prizes, f.err
}

type fakeSpinner struct {
	result models.SpinResult
	err    error
}

func (f *fakeSpinner) Spin(context.Context) (models.SpinResult, error) {
	return f.result, f.err
}

func abcSource() *fakeSource {
	return &fakeSource{prizes: []models.Prize{
		{Name: "A", Probability: 50},
		{Name: "B", Probability: 30},
		{Name: "C", Probability: 20},
	}}
}

func noWait(context.Context, time.Duration) error { return nil }

func TestWheelRenderer_BuildWheel(t *testing.T) {
	ctx := context.Background()

	t.Run("Test builds segments", func(t *testing.T) {
		r := NewWheelRenderer(abcSource())
		if err := r.BuildWheel(ctx); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		w := r.Wheel()
		if len(w.Segments) != 3 || w.Total != 100 {
			t.Fatalf("Expected 3 segments over 100, but got %d over %v", len(w.Segments), w.Total)
		}
		if r.Status().Text != "" {
			t.Errorf("Expected no status, but got %q", r.Status().Text)
		}
	})

	t.Run("Test fetch failure keeps previous wheel", func(t *testing.T) {
		src := abcSource()
		r := NewWheelRenderer(src)
		_ = r.BuildWheel(ctx)
		src.err = errors.New("connection refused")
		if err := r.BuildWheel(ctx); err == nil {
			t.Fatal("Expected an error, but got nil")
		}
		if got := r.Status(); got.Text != "Error loading wheel data." || got.Style != StyleError {
			t.Errorf("Expected load error status, but got %+v", got)
		}
		if len(r.Wheel().Segments) != 3 {
			t.Errorf("Expected previous wheel to remain, but got %d segments", len(r.Wheel().Segments))
		}
	})

	t.Run("Test empty list shows placeholder", func(t *testing.T) {
		r := NewWheelRenderer(&fakeSource{prizes: []models.Prize{}})
		if err := r.BuildWheel(ctx); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if !r.Wheel().Empty() {
			t.Error("Expected an empty wheel")
		}
		if r.Status().Text != "No prizes configured." {
			t.Errorf("Expected empty status, but got %q", r.Status().Text)
		}
		if strings.Contains(r.Wheel().Gradient(), "NaN") {
			t.Errorf("Expected no NaN in %q", r.Wheel().Gradient())
		}
	})
}

func TestSpinController_Spin(t *testing.T) {
	ctx := context.Background()

	t.Run("Test spin lands on outcome", func(t *testing.T) {
		r := NewWheelRenderer(abcSource())
		_ = r.BuildWheel(ctx)
		c := NewSpinController(r, &fakeSpinner{result: models.SpinResult{Outcome: "B"}}, 4*time.Second)

		var mid SpinState
		c.wait = func(_ context.Context, d time.Duration) error {
			if d != 4*time.Second {
				t.Errorf("Expected wait of 4s, but got %v", d)
			}
			mid = c.State()
			return nil
		}

		if err := c.Spin(ctx); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if !mid.Disabled || mid.Rotation != 3726 {
			t.Errorf("Expected disabled wheel at 3726 during animation, but got %+v", mid)
		}
		if mid.Transition != "transform 4s cubic-bezier(0.1, 0.7, 1.0, 0.1)" {
			t.Errorf("Expected 4s transition, but got %q", mid.Transition)
		}
		if mid.Status.Text != "Spinning..." {
			t.Errorf("Expected spinning status during animation, but got %q", mid.Status.Text)
		}

		end := c.State()
		if end.Disabled {
			t.Error("Expected control to be enabled after the spin")
		}
		if end.Status.Text != "You won: B!" {
			t.Errorf("Expected win message, but got %q", end.Status.Text)
		}
		if math.Abs(end.Rotation-126) > 1e-9 || end.Transition != "none" {
			t.Errorf("Expected rotation normalised to 126 without transition, but got %v / %q", end.Rotation, end.Transition)
		}
	})

	t.Run("Test no outcome", func(t *testing.T) {
		r := NewWheelRenderer(abcSource())
		_ = r.BuildWheel(ctx)
		c := NewSpinController(r, &fakeSpinner{}, 0)
		c.wait = noWait
		if err := c.Spin(ctx); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if got := c.State(); got.Status.Text != "No prizes available." || got.Disabled {
			t.Errorf("Expected no prizes status and enabled control, but got %+v", got)
		}
	})

	t.Run("Test stale wheel is refreshed once", func(t *testing.T) {
		src := abcSource()
		r := NewWheelRenderer(src)
		_ = r.BuildWheel(ctx)
		src.prizes = append(src.prizes, models.Prize{Name: "D", Probability: 100})
		c := NewSpinController(r, &fakeSpinner{result: models.SpinResult{Outcome: "D"}}, 0)
		c.wait = noWait

		if err := c.Spin(ctx); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if src.calls != 2 {
			t.Errorf("Expected one refresh, but source was called %d times", src.calls)
		}
		if got := c.State().Status.Text; got != "You won: D!" {
			t.Errorf("Expected win message, but got %q", got)
		}
	})

	t.Run("Test unknown outcome", func(t *testing.T) {
		r := NewWheelRenderer(abcSource())
		_ = r.BuildWheel(ctx)
		c := NewSpinController(r, &fakeSpinner{result: models.SpinResult{Outcome: "Z"}}, 0)
		c.wait = noWait
		if err := c.Spin(ctx); !errors.Is(err, ErrPrizeNotFound) {
			t.Fatalf("Expected ErrPrizeNotFound, but got %v", err)
		}
		if got := c.State(); got.Status.Text != "Prize not found." || got.Disabled {
			t.Errorf("Expected not found status and enabled control, but got %+v", got)
		}
	})

	t.Run("Test transport error", func(t *testing.T) {
		r := NewWheelRenderer(abcSource())
		_ = r.BuildWheel(ctx)
		c := NewSpinController(r, &fakeSpinner{err: errors.New("boom")}, 0)
		if err := c.Spin(ctx); err == nil {
			t.Fatal("Expected an error, but got nil")
		}
		if got := c.State(); got.Status.Text != "An error occurred. Please try again." || got.Disabled {
			t.Errorf("Expected generic error and enabled control, but got %+v", got)
		}
	})

	t.Run("Test spins are serialised", func(t *testing.T) {
		r := NewWheelRenderer(abcSource())
		_ = r.BuildWheel(ctx)
		c := NewSpinController(r, &fakeSpinner{result: models.SpinResult{Outcome: "A"}}, time.Hour)

		release := make(chan struct{})
		started := make(chan struct{})
		c.wait = func(ctx context.Context, _ time.Duration) error {
			close(started)
			<-release
			return nil
		}

		done := make(chan error, 1)
		go func() { done <- c.Spin(ctx) }()
		<-started

		if err := c.Spin(ctx); !errors.Is(err, ErrSpinInProgress) {
			t.Errorf("Expected ErrSpinInProgress, but got %v", err)
		}
		close(release)
		if err := <-done; err != nil {
			t.Fatalf("Expected first spin to finish cleanly, but got %v", err)
		}
	})

	t.Run("Test cancelled animation re-enables", func(t *testing.T) {
		r := NewWheelRenderer(abcSource())
		_ = r.BuildWheel(ctx)
		c := NewSpinController(r, &fakeSpinner{result: models.SpinResult{Outcome: "C"}}, time.Hour)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := c.Spin(cctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("Expected context.Canceled, but got %v", err)
		}
		if c.State().Disabled {
			t.Error("Expected control to be enabled after cancellation")
		}
	})

	t.Run("Test state changes are observed", func(t *testing.T) {
		r := NewWheelRenderer(abcSource())
		_ = r.BuildWheel(ctx)
		c := NewSpinController(r, &fakeSpinner{result: models.SpinResult{Outcome: "A"}}, 0)
		c.wait = noWait
		var seen []string
		c.OnChange(func(s SpinState) { seen = append(seen, s.Status.Text) })
		_ = c.Spin(ctx)
		if len(seen) < 2 || seen[0] != "Spinning..." || seen[len(seen)-1] != "You won: A!" {
			t.Errorf("Expected spinning then win, but saw %v", seen)
		}
	})
}

type fakeAdmin struct {
	deleteResult models.APIResult
	saveResult   models.APIResult
	err          error
	deleted      []string
	saved        [][]models.PrizeRow
}

func (f *fakeAdmin) DeletePrize(_ context.Context, name string) (models.APIResult, error) {
	f.deleted = append(f.deleted, name)
	return f.deleteResult, f.err
}

func (f *fakeAdmin) SavePrizes(_ context.Context, rows []models.PrizeRow) (models.APIResult, error) {
	f.saved = append(f.saved, rows)
	return f.saveResult, f.err
}

func yes(string) bool { return true }

func serverPrizes() []models.Prize {
	return []models.Prize{
		{Name: "A", Probability: 50},
		{Name: "B", Probability: 30, UsageLimit: 2},
		{Name: "C", Probability: 20},
	}
}

func names(rows []models.PrizeRow) string {
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = r.Name
	}
	return strings.Join(parts, ",")
}

func TestAdminTable(t *testing.T) {
	ctx := context.Background()

	t.Run("Test add row", func(t *testing.T) {
		api := &fakeAdmin{}
		table := NewAdminTable(api, yes, serverPrizes())
		i := table.AddRow()
		rows := table.Rows()
		if i != 3 || len(rows) != 4 {
			t.Fatalf("Expected new row at 3 of 4, but got %d of %d", i, len(rows))
		}
		if rows[3] != (models.PrizeRow{Name: "", Probability: "0", UsageLimit: "0"}) {
			t.Errorf("Expected empty row, but got %+v", rows[3])
		}
		if len(api.deleted)+len(api.saved) != 0 {
			t.Error("Expected no server call for add")
		}
	})

	t.Run("Test delete success", func(t *testing.T) {
		api := &fakeAdmin{deleteResult: models.APIResult{Success: true, Message: `Prize "B" deleted.`}}
		var prompt string
		table := NewAdminTable(api, func(p string) bool { prompt = p; return true }, serverPrizes())

		ok, err := table.DeleteRow(ctx, 1)
		if err != nil || !ok {
			t.Fatalf("Expected delete to succeed, but got %v (%v)", ok, err)
		}
		if prompt != `Are you sure you want to delete the prize "B"?` {
			t.Errorf("Unexpected prompt %q", prompt)
		}
		if got := names(table.Rows()); got != "A,C" {
			t.Errorf("Expected A,C to remain in order, but got %s", got)
		}
		if got := table.Status(); got.Text != `Prize "B" deleted.` || got.Style != StyleSuccess {
			t.Errorf("Expected success status, but got %+v", got)
		}
	})

	t.Run("Test delete refused by server", func(t *testing.T) {
		api := &fakeAdmin{deleteResult: models.APIResult{Success: false, Message: "not found"}}
		table := NewAdminTable(api, yes, serverPrizes())
		ok, err := table.DeleteRow(ctx, 0)
		if err != nil || ok {
			t.Fatalf("Expected row to stay, but got %v (%v)", ok, err)
		}
		if len(table.Rows()) != 3 {
			t.Errorf("Expected 3 rows, but got %d", len(table.Rows()))
		}
		if got := table.Status(); got.Text != "Error: not found" || got.Style.Color() != "#e74c3c" {
			t.Errorf("Expected error status, but got %+v", got)
		}
	})

	t.Run("Test delete transport error", func(t *testing.T) {
		api := &fakeAdmin{err: errors.New("offline")}
		table := NewAdminTable(api, yes, serverPrizes())
		if _, err := table.DeleteRow(ctx, 0); err == nil {
			t.Fatal("Expected an error, but got nil")
		}
		if got := table.Status(); got.Text != "An error occurred while deleting." || got.Style != StyleError {
			t.Errorf("Expected delete error status, but got %+v", got)
		}
		if len(table.Rows()) != 3 {
			t.Errorf("Expected rows untouched, but got %d", len(table.Rows()))
		}
	})

	t.Run("Test delete declined", func(t *testing.T) {
		api := &fakeAdmin{}
		table := NewAdminTable(api, func(string) bool { return false }, serverPrizes())
		if ok, _ := table.DeleteRow(ctx, 0); ok {
			t.Error("Expected nothing deleted")
		}
		if len(api.deleted) != 0 {
			t.Error("Expected no server call when declined")
		}
	})

	t.Run("Test deleting an unsaved row stays local", func(t *testing.T) {
		api := &fakeAdmin{}
		table := NewAdminTable(api, yes, serverPrizes())
		i := table.AddRow()
		if ok, err := table.DeleteRow(ctx, i); !ok || err != nil {
			t.Fatalf("Expected local delete, but got %v (%v)", ok, err)
		}
		if len(api.deleted) != 0 {
			t.Errorf("Expected no server call, but deleted %v", api.deleted)
		}
		if _, err := table.DeleteRow(ctx, 9); !errors.Is(err, ErrNoSuchRow) {
			t.Errorf("Expected ErrNoSuchRow, but got %v", err)
		}
	})

	t.Run("Test save sends visible rows in order", func(t *testing.T) {
		api := &fakeAdmin{saveResult: models.APIResult{Success: true, Message: "Changes saved successfully."}}
		table := NewAdminTable(api, yes, serverPrizes())
		i := table.AddRow()
		_ = table.EditRow(i, models.PrizeRow{Name: "D", Probability: "12.5", UsageLimit: "1"})
		_ = table.EditRow(0, models.PrizeRow{Name: "A", Probability: "abc", UsageLimit: "0"})

		ok, err := table.Save(ctx)
		if err != nil || !ok {
			t.Fatalf("Expected save to succeed, but got %v (%v)", ok, err)
		}
		sent := api.saved[0]
		if got := names(sent); got != "A,B,C,D" {
			t.Errorf("Expected A,B,C,D, but got %s", got)
		}
		if sent[0].Probability != "abc" || sent[1].UsageLimit != "2" || sent[3].Probability != "12.5" {
			t.Errorf("Expected raw values to be sent, but got %+v", sent)
		}
		if got := table.Status(); got.Text != "Changes saved successfully." || got.Style != StyleSuccess {
			t.Errorf("Expected success status, but got %+v", got)
		}

		// D is on the server now, so deleting it goes through the API.
		api.deleteResult = models.APIResult{Success: true, Message: "ok"}
		_, _ = table.DeleteRow(ctx, 3)
		if len(api.deleted) != 1 || api.deleted[0] != "D" {
			t.Errorf("Expected server delete of D, but got %v", api.deleted)
		}
	})

	t.Run("Test save failure", func(t *testing.T) {
		api := &fakeAdmin{saveResult: models.APIResult{Message: "row 1 (A): probability must be a non-negative number"}}
		table := NewAdminTable(api, yes, serverPrizes())
		if ok, _ := table.Save(ctx); ok {
			t.Error("Expected save to fail")
		}
		if got := table.Status(); !strings.HasPrefix(got.Text, "Error: row 1") || got.Style != StyleError {
			t.Errorf("Expected error status, but got %+v", got)
		}

		api.err = errors.New("offline")
		if _, err := table.Save(ctx); err == nil {
			t.Fatal("Expected an error, but got nil")
		}
		if got := table.Status().Text; got != "An error occurred while saving." {
			t.Errorf("Expected save error status, but got %q", got)
		}
	})
}

func TestViewFor(t *testing.T) {
	cases := map[string]View{"/": ViewWheel, "/admin": ViewAdmin}
	for path, want := range cases {
		got, err := ViewFor(path)
		if err != nil || got != want {
			t.Errorf("Expected %s for %q, but got %s (%v)", want, path, got, err)
		}
		if got.Path() != path {
			t.Errorf("Expected %s to round trip to %q, but got %q", want, path, got.Path())
		}
	}
	if _, err := ViewFor("/spin"); err == nil {
		t.Error("Expected an error for an unknown path")
	}
}
