package picker

import (
	"time"

	"rangepick/internal/model"
)

// RawPreset is a host-supplied named range, already resolved to instants.
// Label is display data only.
type RawPreset struct {
	Label string
	Start time.Time
	End   time.Time
}

// Preset is a catalogue entry after clamping to the boundary.
type Preset struct {
	Label    string
	Range    model.DateRange
	Eligible bool
	// Custom marks the trailing "custom range" entry, which has no range.
	Custom bool
}

// Catalog is the ordered, clamped preset list.
type Catalog struct {
	Presets     []Preset
	customLabel string
}

type granularity int

const (
	byDay granularity = iota
	byMinute
	bySecond
)

func truncate(t time.Time, g granularity) time.Time {
	switch g {
	case byMinute:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
	case bySecond:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, t.Location())
	default:
		return model.StartOfDay(t)
	}
}

func sameAt(a, b time.Time, g granularity) bool {
	return truncate(a, g).Equal(truncate(b, g))
}

func beforeAt(a, b time.Time, g granularity) bool {
	return truncate(a, g).Before(truncate(b, g))
}

func afterAt(a, b time.Time, g granularity) bool {
	return truncate(a, g).After(truncate(b, g))
}

// RefreshPresets clamps every raw preset into b and drops those that end
// before Min or start after the effective Max. Eligibility is judged on the
// unclamped endpoints, so a preset lying wholly outside b on the boundary's
// own day is kept but cannot be chosen.
func RefreshPresets(raw []RawPreset, b Boundary, o *Options) Catalog {
	g := byDay
	if o.TimePicker {
		g = byMinute
	}
	cat := Catalog{Presets: make([]Preset, 0, len(raw)+1)}
	seen := make(map[string]bool, len(raw))

	for _, rp := range raw {
		if rp.Label == "" || seen[rp.Label] {
			continue
		}
		rawStart, rawEnd := rp.Start.In(o.Location), rp.End.In(o.Location)
		start, end := rawStart, rawEnd
		if b.HasMin() && start.Before(b.Min) {
			start = b.Min
		}
		limit, hasLimit := b.Max, b.HasMax()
		if b.MaxSpan > 0 {
			if spanEnd := start.Add(b.MaxSpan); !hasLimit || spanEnd.Before(limit) {
				limit, hasLimit = spanEnd, true
			}
		}
		if hasLimit && end.After(limit) {
			end = limit
		}
		if (b.HasMin() && beforeAt(end, b.Min, g)) || (hasLimit && afterAt(start, limit, g)) {
			continue
		}
		seen[rp.Label] = true
		cat.Presets = append(cat.Presets, Preset{
			Label:    rp.Label,
			Range:    model.NewRange(start, end),
			Eligible: !outsideBoundary(rawStart, rawEnd, b),
		})
	}

	// the custom entry only makes sense next to real presets
	if o.ShowCustomRangeLabel && len(cat.Presets) > 0 {
		cat.customLabel = o.CustomRangeLabel
		cat.Presets = append(cat.Presets, Preset{Label: o.CustomRangeLabel, Eligible: true, Custom: true})
	}
	return cat
}

// outsideBoundary reports whether both endpoints fall on the same wrong
// side of the boundary.
func outsideBoundary(start, end time.Time, b Boundary) bool {
	if b.HasMin() && start.Before(b.Min) && end.Before(b.Min) {
		return true
	}
	if b.HasMax() && start.After(b.Max) && end.After(b.Max) {
		return true
	}
	return false
}

// Labels returns the display order, custom entry last.
func (c Catalog) Labels() []string {
	out := make([]string, 0, len(c.Presets))
	for _, p := range c.Presets {
		out = append(out, p.Label)
	}
	return out
}

// Lookup returns the preset with label.
func (c Catalog) Lookup(label string) (Preset, bool) {
	for _, p := range c.Presets {
		if p.Label == label {
			return p, true
		}
	}
	return Preset{}, false
}

// IsCustomLabel reports whether label is the trailing custom entry.
func (c Catalog) IsCustomLabel(label string) bool {
	return c.customLabel != "" && label == c.customLabel
}

// MatchSelection returns the first preset whose range equals r at the
// picker's granularity.
func (c Catalog) MatchSelection(r model.DateRange, o *Options) (string, bool) {
	if !r.HasEnd {
		return "", false
	}
	g := byDay
	if o.TimePicker {
		g = byMinute
		if o.TimePickerSeconds {
			g = bySecond
		}
	}
	for _, p := range c.Presets {
		if p.Custom {
			continue
		}
		if sameAt(r.Start, p.Range.Start, g) && sameAt(r.End, p.Range.End, g) {
			return p.Label, true
		}
	}
	return "", false
}
