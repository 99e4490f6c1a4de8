package preset

import (
	"errors"
	"fmt"
	"time"

	"rangepick/internal/config"
	"rangepick/internal/model"
	"rangepick/internal/picker"
)

// Range resolves a start/end pair. A day-granular end covers its whole day.
func (r Resolver) Range(start, end string) (time.Time, time.Time, error) {
	s, err := r.Resolve(start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	e, err := r.Resolve(end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}
	endTime := e.Time
	if !e.HasClock {
		endTime = model.EndOfDay(endTime)
	}
	if endTime.Before(s.Time) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s is before start %s", endTime.Format(time.RFC3339), s.Time.Format(time.RFC3339))
	}
	return s.Time, endTime, nil
}

// Presets resolves the configured list in order. Entries that fail are
// reported in the joined error and left out; the rest are still returned.
func (r Resolver) Presets(cfgs []config.PresetConfig) ([]picker.RawPreset, error) {
	out := make([]picker.RawPreset, 0, len(cfgs))
	var errs []error
	for _, c := range cfgs {
		start, end, err := r.Range(c.Start, c.End)
		if err != nil {
			errs = append(errs, fmt.Errorf("preset %q: %w", c.Label, err))
			continue
		}
		out = append(out, picker.RawPreset{Label: c.Label, Start: start, End: end})
	}
	return out, errors.Join(errs...)
}

// Boundary resolves min/max and the span limits. A day-granular max
// covers its whole day.
func (r Resolver) Boundary(cfg config.BoundaryConfig, maxSpan time.Duration) (picker.Boundary, error) {
	b := picker.Boundary{DateLimitDays: cfg.DateLimitDays, MaxSpan: maxSpan}
	if cfg.Min != "" {
		v, err := r.Resolve(cfg.Min)
		if err != nil {
			return b, fmt.Errorf("boundary.min: %w", err)
		}
		b.Min = v.Time
	}
	if cfg.Max != "" {
		v, err := r.Resolve(cfg.Max)
		if err != nil {
			return b, fmt.Errorf("boundary.max: %w", err)
		}
		b.Max = v.Time
		if !v.HasClock {
			b.Max = model.EndOfDay(v.Time)
		}
	}
	return b, b.Validate()
}

// Initial resolves the starting selection; nil means today.
func (r Resolver) Initial(cfg *config.RangeConfig) (model.DateRange, error) {
	if cfg == nil {
		return model.DateRange{}, nil
	}
	start, end, err := r.Range(cfg.Start, cfg.End)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("initial: %w", err)
	}
	return model.NewRange(start, end), nil
}
