// Package preset resolves the endpoint expressions used by configured
// presets, boundaries and the initial range.
//
// An expression is a base followed by optional offsets:
//
//	today | yesterday | tomorrow | now
//	week_start | month_start | month_end | year_start | year_end
//	2024-01-10 | 2024-01-10 15:04 | RFC 3339
//	rrule:<RULE>   latest occurrence on or before today
//	next:<RULE>    first occurrence on or after today
//
// Offsets are [+-]N followed by h, d, w, m or y ("today -6d", "month_start
// -1m"). A bare offset is relative to today.
package preset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"rangepick/internal/model"
)

// ruleEpochYears is how far back recurrence rules start counting.
const ruleEpochYears = 10

// Value is a resolved expression. HasClock is false for day-granular
// results, which callers widen to the end of the day when used as an end.
type Value struct {
	Time     time.Time
	HasClock bool
}

// Resolver evaluates expressions against a clock.
type Resolver struct {
	Location  *time.Location
	Now       func() time.Time
	WeekStart time.Weekday
}

func (r Resolver) now() time.Time {
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	if r.Now == nil {
		return time.Now().In(loc)
	}
	return r.Now().In(loc)
}

// Resolve evaluates expr.
func (r Resolver) Resolve(expr string) (Value, error) {
	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return Value{}, errors.New("empty expression")
	}

	now := r.now()
	today := model.StartOfDay(now)

	v, rest, err := r.base(fields, now, today)
	if err != nil {
		return Value{}, fmt.Errorf("%q: %w", expr, err)
	}
	for _, tok := range rest {
		if v, err = applyOffset(v, tok); err != nil {
			return Value{}, fmt.Errorf("%q: %w", expr, err)
		}
	}
	return v, nil
}

// base consumes the leading token(s) and returns the unconsumed offsets.
func (r Resolver) base(fields []string, now, today time.Time) (Value, []string, error) {
	head := strings.ToLower(fields[0])
	day := func(t time.Time) (Value, []string, error) { return Value{Time: t}, fields[1:], nil }

	switch head {
	case "today":
		return day(today)
	case "yesterday":
		return day(today.AddDate(0, 0, -1))
	case "tomorrow":
		return day(today.AddDate(0, 0, 1))
	case "now":
		return Value{Time: now, HasClock: true}, fields[1:], nil
	case "week_start":
		back := (int(today.Weekday()) - int(r.WeekStart) + 7) % 7
		return day(today.AddDate(0, 0, -back))
	case "month_start":
		return day(time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()))
	case "month_end":
		return day(time.Date(today.Year(), today.Month()+1, 0, 0, 0, 0, 0, today.Location()))
	case "year_start":
		return day(time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location()))
	case "year_end":
		return day(time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, today.Location()))
	}

	switch {
	case strings.HasPrefix(head, "rrule:"):
		t, err := r.occurrence(fields[0][len("rrule:"):], today, false)
		return Value{Time: t}, fields[1:], err
	case strings.HasPrefix(head, "next:"):
		t, err := r.occurrence(fields[0][len("next:"):], today, true)
		return Value{Time: t}, fields[1:], err
	case isOffset(head):
		return Value{Time: today}, fields, nil
	}

	// "2024-01-10 15:04" spans two fields
	if len(fields) > 1 {
		if t, err := time.ParseInLocation("2006-01-02 15:04", fields[0]+" "+fields[1], today.Location()); err == nil {
			return Value{Time: t, HasClock: true}, fields[2:], nil
		}
	}
	if t, err := time.ParseInLocation(model.DayLayout, fields[0], today.Location()); err == nil {
		return day(t)
	}
	if t, err := time.Parse(time.RFC3339, fields[0]); err == nil {
		return Value{Time: t.In(today.Location()), HasClock: true}, fields[1:], nil
	}
	return Value{}, nil, fmt.Errorf("unknown base %q", fields[0])
}

// occurrence finds the latest occurrence of rule on or before today, or
// with next the first one on or after today.
func (r Resolver) occurrence(rule string, today time.Time, next bool) (time.Time, error) {
	opt, err := rrule.StrToROptionInLocation(rule, today.Location())
	if err != nil {
		return time.Time{}, err
	}
	if opt.Dtstart.IsZero() {
		opt.Dtstart = time.Date(today.Year()-ruleEpochYears, time.January, 1, 0, 0, 0, 0, today.Location())
	}
	rr, err := rrule.NewRRule(*opt)
	if err != nil {
		return time.Time{}, err
	}

	var t time.Time
	if next {
		t = rr.After(today, true)
	} else {
		t = rr.Before(model.EndOfDay(today), true)
	}
	if t.IsZero() {
		return time.Time{}, errors.New("rule has no matching occurrence")
	}
	return model.StartOfDay(t.In(today.Location())), nil
}

func isOffset(tok string) bool {
	return len(tok) > 2 && (tok[0] == '+' || tok[0] == '-')
}

func applyOffset(v Value, tok string) (Value, error) {
	if !isOffset(tok) {
		return v, fmt.Errorf("bad offset %q", tok)
	}
	unit := tok[len(tok)-1]
	n, err := strconv.Atoi(tok[:len(tok)-1])
	if err != nil {
		return v, fmt.Errorf("bad offset %q", tok)
	}
	switch unit {
	case 'h':
		v.Time = v.Time.Add(time.Duration(n) * time.Hour)
		v.HasClock = true
	case 'd':
		v.Time = v.Time.AddDate(0, 0, n)
	case 'w':
		v.Time = v.Time.AddDate(0, 0, 7*n)
	case 'm':
		v.Time = addMonthsClamped(v.Time, n)
	case 'y':
		v.Time = addMonthsClamped(v.Time, 12*n)
	default:
		return v, fmt.Errorf("bad offset unit in %q", tok)
	}
	return v, nil
}

// addMonthsClamped adds months without overflowing into the following
// month: Jan 31 +1m is the last day of February.
func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, months, 0)
	last := target.AddDate(0, 1, -1).Day()
	return target.AddDate(0, 0, min(t.Day(), last)-1)
}
