package picker

import (
	"fmt"
	"time"
)

// ConfigurationError reports malformed static configuration. It is the only
// error the picker surfaces; user-driven edge cases are repaired silently.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("picker: invalid %s: %s", e.Field, e.Reason)
}

// Boundary limits which instants may be selected. Zero values mean "unset".
type Boundary struct {
	Min time.Time
	Max time.Time

	// DateLimitDays caps end - start in calendar days.
	DateLimitDays int
	// MaxSpan caps end - start as a duration.
	MaxSpan time.Duration
}

func (b Boundary) HasMin() bool { return !b.Min.IsZero() }
func (b Boundary) HasMax() bool { return !b.Max.IsZero() }

// Validate reports the first configuration problem, if any.
func (b Boundary) Validate() error {
	if b.HasMin() && b.HasMax() && b.Min.After(b.Max) {
		return &ConfigurationError{Field: "boundary.min", Reason: "min is after max"}
	}
	if b.DateLimitDays < 0 {
		return &ConfigurationError{Field: "boundary.date_limit_days", Reason: "must not be negative"}
	}
	if b.MaxSpan < 0 {
		return &ConfigurationError{Field: "boundary.max_span", Reason: "must not be negative"}
	}
	return nil
}

// Clamp returns Min when t is before it, Max when t is after it, t otherwise.
func (b Boundary) Clamp(t time.Time) time.Time {
	if b.HasMin() && t.Before(b.Min) {
		return b.Min
	}
	if b.HasMax() && t.After(b.Max) {
		return b.Max
	}
	return t
}

func (b Boundary) IsWithin(t time.Time) bool {
	if b.HasMin() && t.Before(b.Min) {
		return false
	}
	if b.HasMax() && t.After(b.Max) {
		return false
	}
	return true
}

// EffectiveMaxForEnd is the latest end allowed for a range starting at
// start: the tightest of Max, start+DateLimitDays and start+MaxSpan.
func (b Boundary) EffectiveMaxForEnd(start time.Time) (time.Time, bool) {
	limit, ok := b.Max, b.HasMax()
	tighten := func(c time.Time) {
		if !ok || c.Before(limit) {
			limit, ok = c, true
		}
	}
	if b.DateLimitDays > 0 {
		tighten(start.AddDate(0, 0, b.DateLimitDays))
	}
	if b.MaxSpan > 0 {
		tighten(start.Add(b.MaxSpan))
	}
	return limit, ok
}

// In converts the boundary instants to loc.
func (b Boundary) In(loc *time.Location) Boundary {
	if b.HasMin() {
		b.Min = b.Min.In(loc)
	}
	if b.HasMax() {
		b.Max = b.Max.In(loc)
	}
	return b
}
