package model

import (
	"errors"
	"strings"
	"time"
)

// Side identifies one of the two calendars of the picker.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// ParseSide accepts "left"/"right" (case-insensitive).
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideLeft:
		return SideLeft, nil
	case SideRight:
		return SideRight, nil
	default:
		return "", errors.New("side must be left or right")
	}
}

// DateRange is the current selection. HasEnd=false means the user picked a
// start and has not picked an end yet.
type DateRange struct {
	Start  time.Time
	End    time.Time
	HasEnd bool
}

// NewRange returns a complete range.
func NewRange(start, end time.Time) DateRange {
	return DateRange{Start: start, End: end, HasEnd: true}
}

// OpenRange returns a range that still awaits its end.
func OpenRange(start time.Time) DateRange {
	return DateRange{Start: start}
}

// Selection is the text form a host may persist for a range.
type Selection struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end,omitempty" yaml:"end,omitempty"`
}

// Selection formats the range with layout.
func (r DateRange) Selection(layout string) Selection {
	sel := Selection{Start: r.Start.Format(layout)}
	if r.HasEnd {
		sel.End = r.End.Format(layout)
	}
	return sel
}

// ParseSelection is the inverse of DateRange.Selection.
func ParseSelection(sel Selection, layout string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}
	if strings.TrimSpace(sel.Start) == "" {
		return DateRange{}, errors.New("selection start is empty")
	}
	start, err := time.ParseInLocation(layout, strings.TrimSpace(sel.Start), loc)
	if err != nil {
		return DateRange{}, err
	}
	if strings.TrimSpace(sel.End) == "" {
		return OpenRange(start), nil
	}
	end, err := time.ParseInLocation(layout, strings.TrimSpace(sel.End), loc)
	if err != nil {
		return DateRange{}, err
	}
	if end.Before(start) {
		return DateRange{}, errors.New("selection end is before start")
	}
	return NewRange(start, end), nil
}
