package picker

import (
	"time"

	"rangepick/internal/model"
)

const (
	GridRows  = 6
	GridCols  = 7
	GridCells = GridRows * GridCols
)

// Grid is one calendar page: 42 concrete instants around an anchor month.
type Grid struct {
	Side   model.Side
	Anchor time.Time
	Cells  [GridRows][GridCols]time.Time

	FirstOfMonth    time.Time
	LastOfMonth     time.Time
	DaysInPrevMonth int
}

// AnchorFor returns the anchor of t's month. Anchors sit on day 2 so that
// adding or subtracting months never rolls over into a third month.
func AnchorFor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 2, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
}

// BuildGrid fills the page for anchor's month. Leading cells come from the
// previous month (a full week when the month starts on firstDay), trailing
// cells from the next. Every cell keeps anchor's time of day, except that a
// cell on Min's day earlier than Min is snapped to Min on the left side and
// a cell on Max's day later than Max is snapped to Max on the right side.
func BuildGrid(anchor time.Time, side model.Side, firstDay time.Weekday, b Boundary) Grid {
	loc := anchor.Location()
	year, month := anchor.Year(), anchor.Month()
	hour, minute, second := anchor.Clock()

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	g := Grid{
		Side:            side,
		Anchor:          anchor,
		FirstOfMonth:    first,
		LastOfMonth:     last,
		DaysInPrevMonth: first.AddDate(0, 0, -1).Day(),
	}

	lead := (int(first.Weekday()) - int(firstDay) + 7) % 7
	if lead == 0 {
		lead = 7
	}

	for i := 0; i < GridCells; i++ {
		cell := time.Date(year, month, 1-lead+i, hour, minute, second, 0, loc)
		if side == model.SideLeft && b.HasMin() && model.SameDay(cell, b.Min) && cell.Before(b.Min) {
			cell = b.Min
		}
		if side == model.SideRight && b.HasMax() && model.SameDay(cell, b.Max) && cell.After(b.Max) {
			cell = b.Max
		}
		g.Cells[i/GridCols][i%GridCols] = cell
	}
	return g
}

// At returns the cell at row/col.
func (g Grid) At(row, col int) (time.Time, bool) {
	if row < 0 || row >= GridRows || col < 0 || col >= GridCols {
		return time.Time{}, false
	}
	return g.Cells[row][col], true
}

// Locate finds the cell showing day, preferring the in-month occurrence.
func (g Grid) Locate(day time.Time) (row, col int, ok bool) {
	row, col = -1, -1
	for r := 0; r < GridRows; r++ {
		for c := 0; c < GridCols; c++ {
			cell := g.Cells[r][c]
			if !model.SameDay(cell, day) {
				continue
			}
			if g.InMonth(cell) {
				return r, c, true
			}
			if row < 0 {
				row, col = r, c
			}
		}
	}
	return row, col, row >= 0
}

// InMonth reports whether t lies in the anchor's month.
func (g Grid) InMonth(t time.Time) bool {
	return model.SameMonth(t, g.Anchor)
}
