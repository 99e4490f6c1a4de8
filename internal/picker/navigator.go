package picker

import (
	"time"

	"rangepick/internal/model"
)

// Anchors are the two visible months, each on day 2.
type Anchors struct {
	Left  time.Time
	Right time.Time
}

func (a Anchors) set() bool { return !a.Left.IsZero() && !a.Right.IsZero() }

func (a Anchors) shows(t time.Time) bool {
	return model.SameMonth(a.Left, t) || model.SameMonth(a.Right, t)
}

// MonthNavigator decides which months are visible.
type MonthNavigator struct {
	Linked   bool
	Single   bool
	Boundary Boundary
}

// Refresh brings the months of the selection into view. It leaves a
// unchanged when both endpoints are already visible.
func (n MonthNavigator) Refresh(a Anchors, r model.DateRange) Anchors {
	if r.HasEnd {
		if !n.Single && a.set() && a.shows(r.Start) && a.shows(r.End) {
			return a
		}
		a.Left = AnchorFor(r.Start)
		if !n.Linked && !model.SameMonth(r.Start, r.End) {
			a.Right = AnchorFor(r.End)
		} else {
			a.Right = a.Left.AddDate(0, 1, 0)
		}
	} else if !a.set() || !a.shows(r.Start) {
		a.Left = AnchorFor(r.Start)
		a.Right = a.Left.AddDate(0, 1, 0)
	}

	if b := n.Boundary; b.HasMax() && n.Linked && !n.Single && model.MonthIndex(a.Right) > model.MonthIndex(b.Max) {
		a.Right = AnchorFor(b.Max)
		a.Left = a.Right.AddDate(0, -1, 0)
	}
	return a
}

// Prev moves side back one month. Linked pages move together when the left
// page is moved back.
func (n MonthNavigator) Prev(a Anchors, side model.Side) Anchors {
	if side == model.SideLeft {
		a.Left = a.Left.AddDate(0, -1, 0)
		if n.Linked {
			a.Right = a.Right.AddDate(0, -1, 0)
		}
	} else {
		a.Right = a.Right.AddDate(0, -1, 0)
	}
	return n.relink(a, side)
}

// Next moves side forward one month. Linked pages move together when the
// right page is moved forward.
func (n MonthNavigator) Next(a Anchors, side model.Side) Anchors {
	if side == model.SideLeft {
		a.Left = a.Left.AddDate(0, 1, 0)
	} else {
		a.Right = a.Right.AddDate(0, 1, 0)
		if n.Linked {
			a.Left = a.Left.AddDate(0, 1, 0)
		}
	}
	return n.relink(a, side)
}

// MonthYear jumps side to month/year. The right page stays after the left
// one and the moved page never leaves the boundary's months.
func (n MonthNavigator) MonthYear(a Anchors, month time.Month, year int, side model.Side) Anchors {
	idx := year*12 + int(month) - 1
	if side == model.SideRight && idx <= model.MonthIndex(a.Left) {
		idx = model.MonthIndex(a.Left) + 1
	}
	if b := n.Boundary; b.HasMin() && idx < model.MonthIndex(b.Min) {
		idx = model.MonthIndex(b.Min)
	}
	if b := n.Boundary; b.HasMax() && idx > model.MonthIndex(b.Max) {
		idx = model.MonthIndex(b.Max)
	}

	if side == model.SideLeft {
		a.Left = anchorAtIndex(idx, a.Left)
	} else {
		a.Right = anchorAtIndex(idx, a.Right)
	}
	return n.relink(a, side)
}

// relink re-derives the sibling page from the one that moved so linked
// pages stay exactly one month apart. Unlinked pages are only pushed apart
// when the moved page catches up with its sibling.
func (n MonthNavigator) relink(a Anchors, moved model.Side) Anchors {
	if !n.Linked {
		return ascending(a, moved)
	}
	if moved == model.SideLeft {
		a.Right = a.Left.AddDate(0, 1, 0)
	} else {
		a.Left = a.Right.AddDate(0, -1, 0)
	}
	return a
}

func ascending(a Anchors, moved model.Side) Anchors {
	left, right := model.MonthIndex(a.Left), model.MonthIndex(a.Right)
	if left < right {
		return a
	}
	if moved == model.SideLeft {
		a.Right = anchorAtIndex(left+1, a.Right)
	} else {
		a.Left = anchorAtIndex(right-1, a.Left)
	}
	return a
}

func anchorAtIndex(idx int, ref time.Time) time.Time {
	h, m, s := ref.Clock()
	return time.Date(idx/12, time.Month(idx%12+1), 2, h, m, s, 0, ref.Location())
}
