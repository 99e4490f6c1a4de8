package picker

import (
	"strings"
	"time"

	"rangepick/internal/model"
)

// Tag is a single cell classification.
type Tag uint16

const (
	TagToday Tag = 1 << iota
	TagWeekend
	TagOff
	TagDisabled
	TagInvalid
	TagStart
	TagEnd
	TagInRange
	TagLastDayOfPrevMonth
	TagFirstDayOfNextMonth
	TagFirstMonthDay
	TagLastMonthDay
)

var tagOrder = []Tag{
	TagToday, TagWeekend, TagOff, TagLastDayOfPrevMonth, TagFirstDayOfNextMonth,
	TagFirstMonthDay, TagLastMonthDay, TagDisabled, TagInvalid, TagStart, TagEnd, TagInRange,
}

// TagSet accumulates tags for one cell.
type TagSet uint16

func (s TagSet) Has(t Tag) bool       { return uint16(s)&uint16(t) != 0 }
func (s TagSet) With(t Tag) TagSet    { return TagSet(uint16(s) | uint16(t)) }
func (s TagSet) Without(t Tag) TagSet { return TagSet(uint16(s) &^ uint16(t)) }

// Available reports whether a cell with these tags can be clicked.
func (s TagSet) Available() bool { return !s.Has(TagDisabled) }

// Names lists the tags in render order using markers for the configurable
// boundary-day tags.
func (s TagSet) Names(m Markers) []string {
	out := make([]string, 0, 6)
	for _, t := range tagOrder {
		if !s.Has(t) {
			continue
		}
		if name := tagName(t, m); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func tagName(t Tag, m Markers) string {
	switch t {
	case TagToday:
		return "today"
	case TagWeekend:
		return "weekend"
	case TagOff:
		return "off"
	case TagDisabled:
		return "disabled"
	case TagInvalid:
		return "invalid"
	case TagStart:
		return "start-date"
	case TagEnd:
		return "end-date"
	case TagInRange:
		return "in-range"
	case TagLastDayOfPrevMonth:
		return m.LastDayOfPreviousMonth
	case TagFirstDayOfNextMonth:
		return m.FirstDayOfNextMonth
	case TagFirstMonthDay:
		return m.FirstMonthDay
	case TagLastMonthDay:
		return m.LastMonthDay
	}
	return ""
}

// Cell is a classified grid position.
type Cell struct {
	Date    time.Time
	Tags    TagSet
	Custom  []string
	Tooltip string
}

func (c Cell) Available() bool { return c.Tags.Available() }

// Classes joins tags and custom classes into the class list a renderer
// would apply. Disabled cells are also greyed out as "off"; selected
// endpoints are "active"; clickable cells are "available".
func (c Cell) Classes(m Markers) string {
	names := c.Tags.Names(m)
	if c.Tags.Has(TagDisabled) && !c.Tags.Has(TagOff) {
		names = append(names, "off")
	}
	if c.Tags.Has(TagStart) || c.Tags.Has(TagEnd) {
		names = append(names, "active")
	}
	names = append(names, c.Custom...)
	if c.Available() {
		names = append(names, "available")
	}
	return strings.Join(names, " ")
}

// Classifier tags cells against a selection and boundary.
type Classifier struct {
	Options  *Options
	Now      time.Time
	Range    model.DateRange
	Boundary Boundary
}

// sideMax is the last selectable instant on a page: the global Max on the
// left, and the end limit derived from start on the right while the end is
// still being picked.
func (c Classifier) sideMax(side model.Side) (time.Time, bool) {
	if side == model.SideRight && !c.Range.HasEnd {
		return c.Boundary.EffectiveMaxForEnd(c.Range.Start)
	}
	return c.Boundary.Max, c.Boundary.HasMax()
}

// belowMinOnly reports whether cell is disabled for no reason other than
// lying before Min.
func (c Classifier) belowMinOnly(cell time.Time, g Grid) bool {
	if !c.Boundary.HasMin() || model.CompareDay(cell, c.Boundary.Min) >= 0 {
		return false
	}
	if max, ok := c.sideMax(g.Side); ok && model.CompareDay(cell, max) > 0 {
		return false
	}
	return !c.Options.invalid(cell)
}

// Classify tags one cell of g.
func (c Classifier) Classify(cell time.Time, g Grid) Cell {
	var tags TagSet
	markers := c.Options.Markers

	if model.SameDay(cell, c.Now) {
		tags = tags.With(TagToday)
	}
	if wd := cell.Weekday(); wd == time.Saturday || wd == time.Sunday {
		tags = tags.With(TagWeekend)
	}

	inMonth := g.InMonth(cell)
	if !inMonth {
		tags = tags.With(TagOff)
		if markers.LastDayOfPreviousMonth != "" && cell.Before(g.FirstOfMonth) && cell.Day() == g.DaysInPrevMonth {
			tags = tags.With(TagLastDayOfPrevMonth)
		}
		if markers.FirstDayOfNextMonth != "" && cell.After(g.LastOfMonth) && cell.Day() == 1 {
			tags = tags.With(TagFirstDayOfNextMonth)
		}
	} else {
		if markers.FirstMonthDay != "" && cell.Day() == 1 {
			tags = tags.With(TagFirstMonthDay)
		}
		if markers.LastMonthDay != "" && cell.Day() == g.LastOfMonth.Day() {
			tags = tags.With(TagLastMonthDay)
		}
	}

	if c.Boundary.HasMin() && model.CompareDay(cell, c.Boundary.Min) < 0 {
		tags = tags.With(TagDisabled)
	}
	if max, ok := c.sideMax(g.Side); ok && model.CompareDay(cell, max) > 0 {
		tags = tags.With(TagDisabled)
	}
	if c.Options.invalid(cell) {
		tags = tags.With(TagDisabled).With(TagInvalid)
	}

	if inMonth && !tags.Has(TagDisabled) {
		if model.SameDay(cell, c.Range.Start) {
			tags = tags.With(TagStart)
		}
		if c.Range.HasEnd && model.SameDay(cell, c.Range.End) {
			tags = tags.With(TagEnd)
		}
	}
	if inMonth && c.Range.HasEnd && cell.After(c.Range.Start) && cell.Before(c.Range.End) {
		tags = tags.With(TagInRange)
	}

	return Cell{
		Date:    cell,
		Tags:    tags,
		Custom:  c.Options.custom(cell),
		Tooltip: c.Options.tooltip(cell),
	}
}

// Calendar is a fully classified page.
type Calendar struct {
	Grid      Grid
	Cells     [GridRows][GridCols]Cell
	EmptyRows [GridRows]bool
	// WeekNumbers holds ISO week numbers per row when enabled.
	WeekNumbers [GridRows]int
	Dropdown    Dropdown
}

// Dropdown carries the month/year selector bounds of a page.
type Dropdown struct {
	Month     time.Month
	Year      int
	MinYear   int
	MaxYear   int
	InMinYear bool
	InMaxYear bool
}

// ClassifyGrid classifies every cell of g.
func (c Classifier) ClassifyGrid(g Grid) Calendar {
	cal := Calendar{Grid: g}
	for r := 0; r < GridRows; r++ {
		hasMonthDay := false
		for col := 0; col < GridCols; col++ {
			cell := g.Cells[r][col]
			cal.Cells[r][col] = c.Classify(cell, g)
			if g.InMonth(cell) {
				hasMonthDay = true
			}
		}
		cal.EmptyRows[r] = c.Options.Markers.EmptyWeekRow != "" && !hasMonthDay
		if c.Options.ShowWeekNumbers {
			_, cal.WeekNumbers[r] = g.Cells[r][0].ISOWeek()
		}
	}
	cal.Dropdown = c.dropdown(g)
	return cal
}

func (c Classifier) dropdown(g Grid) Dropdown {
	d := Dropdown{Month: g.Anchor.Month(), Year: g.Anchor.Year()}
	current := c.Now.Year()

	d.MaxYear = current + 5
	if max, ok := c.sideMax(g.Side); ok {
		d.MaxYear = max.Year()
	}
	d.MinYear = current - 50
	if g.Side == model.SideRight {
		d.MinYear = c.Range.Start.Year()
	} else if c.Boundary.HasMin() {
		d.MinYear = c.Boundary.Min.Year()
	}
	d.InMinYear = d.Year == d.MinYear
	d.InMaxYear = d.Year == d.MaxYear
	return d
}
