package picker

import (
	"math"
	"time"

	"rangepick/internal/model"
)

// Phase is the selection state of the picker.
type Phase int

const (
	// PhaseEmpty holds the initial range before any interaction.
	PhaseEmpty Phase = iota
	PhaseAwaitingEnd
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingEnd:
		return "awaiting-end"
	case PhaseComplete:
		return "complete"
	default:
		return "empty"
	}
}

// Snapshot is a saved selection used by Cancel.
type Snapshot struct {
	Range model.DateRange
	Valid bool
}

// State is everything the picker remembers between inputs. Grids are not
// part of it; they are derived from Anchors on demand.
type State struct {
	Range    model.DateRange
	Touched  bool
	Anchors  Anchors
	Boundary Boundary
	Presets  []RawPreset

	LeftClock  Clock
	RightClock Clock

	// ChosenRange is the preset label matching the selection, the custom
	// label, or empty.
	ChosenRange string
	Label       string

	Shown         bool
	ShowCalendars bool
	Saved         Snapshot
}

func (s State) Phase() Phase {
	switch {
	case !s.Range.HasEnd:
		return PhaseAwaitingEnd
	case !s.Touched:
		return PhaseEmpty
	default:
		return PhaseComplete
	}
}

// reduce applies one input to a copy of st.
func reduce(o *Options, st State, in Input) (State, []Event, error) {
	r := &reduction{opts: o, st: st}
	if err := in.apply(r); err != nil {
		return st, nil, err
	}
	r.finish()
	return r.st, r.events.list(), nil
}

// reduction is the working copy of one transition.
type reduction struct {
	opts   *Options
	st     State
	events eventLog
}

func (r *reduction) emit(e Event) { r.events.emit(e) }

func (r *reduction) finish() {
	r.syncClocks()
	r.updateLabel()
}

func (r *reduction) navigator() MonthNavigator {
	return MonthNavigator{Linked: r.opts.LinkedCalendars, Single: r.opts.SingleDatePicker, Boundary: r.st.Boundary}
}

func (r *reduction) catalog() Catalog {
	return RefreshPresets(r.st.Presets, r.st.Boundary, r.opts)
}

func (r *reduction) classifier() Classifier {
	return Classifier{Options: r.opts, Now: r.opts.now(), Range: r.st.Range, Boundary: r.st.Boundary}
}

func (r *reduction) grid(side model.Side) Grid {
	anchor := r.st.Anchors.Left
	if side == model.SideRight {
		anchor = r.st.Anchors.Right
	}
	return BuildGrid(anchor, side, r.opts.FirstDayOfWeek, r.st.Boundary)
}

func (r *reduction) refreshMonths() {
	r.st.Anchors = r.navigator().Refresh(r.st.Anchors, r.st.Range)
}

func (r *reduction) syncClocks() {
	r.st.LeftClock = clockOf(r.st.Range.Start)
	if r.st.Range.HasEnd {
		r.st.RightClock = clockOf(r.st.Range.End)
	}
}

type rounding int

const (
	roundNearest rounding = iota
	roundUp
	roundDown
)

// roundMinute snaps t's minute to a multiple of step.
func roundMinute(t time.Time, step int, mode rounding) time.Time {
	if step <= 1 {
		return t
	}
	q := float64(t.Minute()) / float64(step)
	switch mode {
	case roundUp:
		q = math.Ceil(q)
	case roundDown:
		q = math.Floor(q)
	default:
		q = math.Round(q)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), int(q)*step, t.Second(), t.Nanosecond(), t.Location())
}

// normalizeStart returns the start the picker would store for t.
func (r *reduction) normalizeStart(t time.Time) time.Time {
	o, b := r.opts, r.st.Boundary
	t = t.In(o.Location)
	if o.TimePicker {
		t = roundMinute(t, o.TimePickerIncrement, roundNearest)
	} else {
		t = model.StartOfDay(t)
	}
	if b.HasMin() && t.Before(b.Min) {
		t = b.Min
		if o.TimePicker {
			t = roundMinute(t, o.TimePickerIncrement, roundUp)
		}
	}
	if b.HasMax() && t.After(b.Max) {
		t = b.Max
		if o.TimePicker {
			t = roundMinute(t, o.TimePickerIncrement, roundDown)
		}
	}
	// min and max inside one increment: keep the raw bound.
	return b.Clamp(t)
}

// normalizeEnd returns the end the picker would store for t given start.
func (r *reduction) normalizeEnd(start, t time.Time) time.Time {
	o := r.opts
	t = t.In(o.Location)
	if o.TimePicker {
		t = roundMinute(t, o.TimePickerIncrement, roundNearest)
	} else {
		t = model.EndOfDay(t)
	}
	if t.Before(start) {
		t = start
	}
	if limit, ok := r.st.Boundary.EffectiveMaxForEnd(start); ok && t.After(limit) {
		t = limit
	}
	return t
}

func (r *reduction) setStartDate(t time.Time) {
	r.st.Range.Start = r.normalizeStart(t)
	r.emit(Event{Kind: EventStartChanged, Start: r.st.Range.Start})
	r.enforceEnd()
	r.refreshMonths()
}

func (r *reduction) setEndDate(t time.Time) {
	r.st.Range.End = r.normalizeEnd(r.st.Range.Start, t)
	r.st.Range.HasEnd = true
	r.emit(Event{Kind: EventEndChanged, End: r.st.Range.End})
	r.refreshMonths()
}

// enforceEnd re-clamps an existing end after start moved.
func (r *reduction) enforceEnd() {
	rng := r.st.Range
	if !rng.HasEnd {
		return
	}
	limit, ok := r.st.Boundary.EffectiveMaxForEnd(rng.Start)
	if rng.End.Before(rng.Start) || (ok && rng.End.After(limit)) {
		r.setEndDate(rng.End)
	}
}

// clampRange normalises a whole range without emitting events.
func (r *reduction) clampRange(rng model.DateRange) model.DateRange {
	start := r.normalizeStart(rng.Start)
	out := model.OpenRange(start)
	if rng.HasEnd {
		out = model.NewRange(start, r.normalizeEnd(start, rng.End))
	}
	return out
}

// reclamp repairs the selection after the boundary changed, emitting
// change events only for endpoints that actually moved.
func (r *reduction) reclamp() {
	rng := r.st.Range
	if s := r.normalizeStart(rng.Start); !s.Equal(rng.Start) {
		r.setStartDate(rng.Start)
	}
	rng = r.st.Range
	if rng.HasEnd {
		if e := r.normalizeEnd(rng.Start, rng.End); !e.Equal(rng.End) {
			r.setEndDate(rng.End)
		}
	}
	r.refreshMonths()
}

func (r *reduction) withClock(day time.Time, side model.Side) time.Time {
	c := r.st.LeftClock
	if side == model.SideRight {
		c = r.st.RightClock
	}
	sec := c.Second
	if !r.opts.TimePickerSeconds {
		sec = 0
	}
	return model.WithClock(day, c.Hour, c.Minute, sec)
}

// clickDay runs the selection state machine for a clicked, available day.
func (r *reduction) clickDay(day time.Time) {
	o := r.opts
	if len(r.catalog().Presets) > 0 {
		r.st.ChosenRange = o.CustomRangeLabel
	}

	start := r.st.Range.Start
	beforeStartDay := model.CompareDay(day, start) < 0
	awaiting := r.st.Phase() == PhaseAwaitingEnd

	switch {
	case (!awaiting || (beforeStartDay && !o.CustomRangeDirection)) && !o.LockStartDate:
		if o.TimePicker {
			day = r.withClock(day, model.SideLeft)
		}
		r.st.Range.End, r.st.Range.HasEnd = time.Time{}, false
		r.setStartDate(day)
	case awaiting && day.Before(start) && !o.CustomRangeDirection:
		// same day as start but an earlier time: zero-length range
		r.setEndDate(start)
	default:
		if o.TimePicker {
			day = r.withClock(day, model.SideRight)
		}
		if beforeStartDay && o.CustomRangeDirection {
			r.setStartDate(day)
			r.setEndDate(start)
		} else {
			r.setEndDate(day)
		}
	}
	r.st.Touched = true

	if o.SingleDatePicker {
		r.setEndDate(r.st.Range.Start)
	}
	r.syncClocks()
	if o.AutoApply && r.st.Range.HasEnd {
		r.apply(true)
	}
}

// apply confirms the selection. auto is true when triggered by AutoApply.
func (r *reduction) apply(auto bool) {
	o := r.opts
	rng := &r.st.Range
	if !o.SingleDatePicker && !rng.HasEnd {
		rng.End, rng.HasEnd = rng.Start, true
	}

	// stop the range before the first invalid day
	if o.IsInvalidDate != nil && rng.HasEnd {
		for d := rng.Start; d.Before(rng.End); d = d.AddDate(0, 0, 1) {
			if !o.invalid(d) {
				continue
			}
			end := d.AddDate(0, 0, -1)
			if !o.TimePicker {
				end = model.EndOfDay(end)
			}
			if end.Before(rng.Start) {
				end = rng.Start
			}
			rng.End = end
			break
		}
	}

	r.updateLabel()
	if r.st.Label != "" {
		r.emit(Event{Kind: EventRangeConfirmed, Label: r.st.Label, Start: rng.Start, End: rng.End})
	}
	r.emit(Event{Kind: EventDatesUpdated, Start: rng.Start, End: rng.End})
	if !auto || o.CloseOnAutoApply {
		r.hide()
	}
}

func (r *reduction) show() {
	if r.st.Shown {
		return
	}
	r.snapshot()
	r.st.Shown = true
}

// hide closes the picker, reverting an incomplete selection.
func (r *reduction) hide() {
	r.emit(Event{Kind: EventRequestClose})
	if !r.st.Shown {
		return
	}
	if !r.st.Range.HasEnd {
		r.restore(r.st.Saved)
	}
	r.updateLabel()
	r.st.Shown = false
}

func (r *reduction) snapshot() {
	r.st.Saved = Snapshot{Range: r.st.Range, Valid: true}
}

func (r *reduction) restore(s Snapshot) {
	if !s.Valid {
		return
	}
	rng := s.Range
	if !rng.HasEnd {
		rng.End, rng.HasEnd = rng.Start, true
	}
	r.st.Range = r.clampRange(rng)
	r.refreshMonths()
}

func (r *reduction) clear() {
	now := r.opts.now()
	r.st.Range = r.clampRange(model.NewRange(model.StartOfDay(now), model.EndOfDay(now)))
	r.st.Touched = false
	r.refreshMonths()
	r.emit(Event{Kind: EventRangeConfirmed})
	r.emit(Event{Kind: EventDatesUpdated})
	r.hide()
}

func (r *reduction) clickPreset(label string) {
	o := r.opts
	cat := r.catalog()
	if cat.IsCustomLabel(label) {
		r.st.ChosenRange = label
		r.st.Shown = true
		r.st.ShowCalendars = true
		return
	}
	p, ok := cat.Lookup(label)
	if !ok || !p.Eligible {
		return
	}
	r.st.ChosenRange = label

	start, end := p.Range.Start, p.Range.End
	if !o.TimePicker {
		start, end = model.StartOfDay(start), model.EndOfDay(end)
	}
	start = r.normalizeStart(start)
	r.st.Range = model.NewRange(start, r.normalizeEnd(start, end))
	r.st.Touched = true
	r.syncClocks()

	r.st.ShowCalendars = o.AlwaysShowCalendars
	if !o.AlwaysShowCalendars {
		r.st.Shown = false
	}
	r.emit(Event{Kind: EventPresetClicked, Label: label, Start: p.Range.Start, End: p.Range.End})

	if !o.KeepCalendarOpeningWithRange || o.AutoApply || !o.AlwaysShowCalendars {
		r.refreshMonths()
		r.apply(true)
		return
	}
	r.st.Anchors = r.presetAnchors(r.st.Range.Start, r.st.Range.End)
}

// presetAnchors shows a preset's months while the calendars stay open.
func (r *reduction) presetAnchors(start, end time.Time) Anchors {
	var a Anchors
	if b := r.st.Boundary; b.HasMax() && model.SameMonth(b.Max, start) {
		a.Right = AnchorFor(start)
		a.Left = a.Right.AddDate(0, -1, 0)
		return a
	}
	a.Left = AnchorFor(start)
	if r.opts.LinkedCalendars || model.SameMonth(start, end) {
		a.Right = a.Left.AddDate(0, 1, 0)
	} else {
		a.Right = AnchorFor(end)
	}
	return a
}

// updateLabel recomputes ChosenRange and the display label.
func (r *reduction) updateLabel() {
	o := r.opts
	rng := r.st.Range
	cat := r.catalog()
	hasPresets := len(cat.Presets) > 0

	if rng.HasEnd && hasPresets {
		if label, ok := cat.MatchSelection(rng, o); ok {
			r.st.ChosenRange = label
		} else {
			r.st.ChosenRange = ""
			if o.ShowCustomRangeLabel {
				r.st.ChosenRange = o.CustomRangeLabel
			}
			r.st.ShowCalendars = true
		}
	}

	layout := o.displayLayout()
	switch {
	case o.SingleDatePicker:
		r.st.Label = rng.Start.Format(layout)
	case rng.HasEnd:
		if hasPresets && o.ShowRangeLabelOnInput && r.st.ChosenRange != "" && !cat.IsCustomLabel(r.st.ChosenRange) {
			r.st.Label = r.st.ChosenRange
		} else {
			r.st.Label = rng.Start.Format(layout) + o.Separator + rng.End.Format(layout)
		}
	}
}
