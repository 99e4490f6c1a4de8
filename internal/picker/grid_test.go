package picker

import (
	"testing"
	"time"

	"rangepick/internal/model"
)

func TestBuildGridLeadingDays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		anchor    time.Time
		firstDay  time.Weekday
		wantFirst time.Time
	}{
		{
			name:      "june starting saturday, monday weeks",
			anchor:    time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
			firstDay:  time.Monday,
			wantFirst: time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "june starting saturday, sunday weeks",
			anchor:    time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
			firstDay:  time.Sunday,
			wantFirst: time.Date(2024, 5, 26, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "month starting on first weekday gets a full lead week",
			anchor:    time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
			firstDay:  time.Monday,
			wantFirst: time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			g := BuildGrid(tc.anchor, model.SideLeft, tc.firstDay, Boundary{})
			if got := g.Cells[0][0]; !got.Equal(tc.wantFirst) {
				t.Fatalf("expected first cell %s, got %s", tc.wantFirst, got)
			}
			if got := g.Cells[0][0].Weekday(); got != tc.firstDay {
				t.Fatalf("expected first column on %s, got %s", tc.firstDay, got)
			}
			for i := 1; i < GridCells; i++ {
				prev := g.Cells[(i-1)/GridCols][(i-1)%GridCols]
				cur := g.Cells[i/GridCols][i%GridCols]
				if !cur.Equal(prev.AddDate(0, 0, 1)) {
					t.Fatalf("expected consecutive days at %d, got %s after %s", i, cur, prev)
				}
			}
		})
	}
}

func TestBuildGridKeepsAnchorTime(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2024, 6, 2, 14, 30, 15, 0, time.UTC)
	g := BuildGrid(anchor, model.SideRight, time.Monday, Boundary{})
	for r := 0; r < GridRows; r++ {
		for c := 0; c < GridCols; c++ {
			h, m, s := g.Cells[r][c].Clock()
			if h != 14 || m != 30 || s != 15 {
				t.Fatalf("expected 14:30:15 at %d/%d, got %02d:%02d:%02d", r, c, h, m, s)
			}
		}
	}
	if g.DaysInPrevMonth != 31 {
		t.Fatalf("expected 31 days in may, got %d", g.DaysInPrevMonth)
	}
	if !g.LastOfMonth.Equal(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected june 30 as last of month, got %s", g.LastOfMonth)
	}
}

func TestBuildGridSnapsBoundaryDays(t *testing.T) {
	t.Parallel()

	min := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	max := time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC)
	b := Boundary{Min: min, Max: max}

	morning := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 6, 2, 18, 0, 0, 0, time.UTC)

	left := BuildGrid(morning, model.SideLeft, time.Monday, b)
	row, col, ok := left.Locate(min)
	if !ok {
		t.Fatal("expected min day on the left page")
	}
	if got := left.Cells[row][col]; !got.Equal(min) {
		t.Fatalf("expected left min cell snapped to %s, got %s", min, got)
	}

	right := BuildGrid(morning, model.SideRight, time.Monday, b)
	row, col, _ = right.Locate(min)
	if got := right.Cells[row][col]; got.Hour() != 8 {
		t.Fatalf("expected right page to keep anchor time on min day, got %s", got)
	}

	right = BuildGrid(evening, model.SideRight, time.Monday, b)
	row, col, _ = right.Locate(max)
	if got := right.Cells[row][col]; !got.Equal(max) {
		t.Fatalf("expected right max cell snapped to %s, got %s", max, got)
	}

	left = BuildGrid(evening, model.SideLeft, time.Monday, b)
	row, col, _ = left.Locate(max)
	if got := left.Cells[row][col]; got.Hour() != 18 {
		t.Fatalf("expected left page to keep anchor time on max day, got %s", got)
	}
}

func TestGridLocateAndAt(t *testing.T) {
	t.Parallel()

	g := BuildGrid(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), model.SideLeft, time.Monday, Boundary{})

	row, col, ok := g.Locate(time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC))
	if !ok || row != 4 || col != 6 {
		t.Fatalf("expected june 30 at 4/6, got %d/%d ok=%v", row, col, ok)
	}
	if _, _, ok := g.Locate(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)); ok {
		t.Fatal("expected august 1 to be off the page")
	}
	if _, ok := g.At(GridRows, 0); ok {
		t.Fatal("expected out of range row to be rejected")
	}
	cell, ok := g.At(5, 0)
	if !ok || !model.SameDay(cell, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected july 1 at 5/0, got %s", cell)
	}
	if g.InMonth(cell) {
		t.Fatal("expected july 1 outside june page")
	}
}
