// Package picker is the selection engine of a two-month date-range picker.
//
// A Picker owns one State. Every host interaction is an Input that runs to
// completion through a pure transition (state, input) -> (state, events);
// the two calendar pages, time pickers and preset list are derived from the
// resulting State by View. A Picker is not safe for concurrent use; hosts
// serialise calls the way an event loop would.
package picker

import (
	"rangepick/internal/model"
)

// Setup is the host-supplied starting point of a picker.
type Setup struct {
	Boundary Boundary
	// Initial defaults to today when Start is zero.
	Initial model.DateRange
	Presets []RawPreset
}

// Picker is one widget instance.
type Picker struct {
	opts    Options
	state   State
	handler func(Event)
}

// New validates the configuration and builds the initial state.
func New(opts Options, setup Setup) (*Picker, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	b := setup.Boundary.In(opts.Location)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	p := &Picker{opts: opts}
	initial := setup.Initial
	if initial.Start.IsZero() {
		now := p.opts.now()
		initial = model.NewRange(model.StartOfDay(now), model.EndOfDay(now))
	}

	r := &reduction{opts: &p.opts, st: State{
		Boundary: b,
		Presets:  append([]RawPreset(nil), setup.Presets...),
	}}
	r.st.Range = r.clampRange(initial)
	r.refreshMonths()
	r.syncClocks()
	if !r.st.Range.HasEnd {
		r.st.RightClock = r.st.LeftClock
	}
	r.st.ShowCalendars = len(r.catalog().Presets) == 0 || opts.AlwaysShowCalendars
	r.snapshot()
	r.finish()

	p.state = r.st
	return p, nil
}

// OnEvent registers the host callback. Events are delivered synchronously
// after the input that produced them has been committed.
func (p *Picker) OnEvent(fn func(Event)) {
	p.handler = fn
}

// Dispatch applies in and returns the events it produced. Only SetBoundary
// can fail, and then the state is left unchanged.
func (p *Picker) Dispatch(in Input) ([]Event, error) {
	next, events, err := reduce(&p.opts, p.state, in)
	if err != nil {
		return nil, err
	}
	p.state = next
	if p.handler != nil {
		for _, e := range events {
			p.handler(e)
		}
	}
	return events, nil
}

// State returns the current state.
func (p *Picker) State() State { return p.state }

// Options returns the normalised options.
func (p *Picker) Options() Options { return p.opts }

// Range returns the current selection.
func (p *Picker) Range() model.DateRange { return p.state.Range }

// Snapshot captures the current selection for a later Restore.
func (p *Picker) Snapshot() Snapshot {
	return Snapshot{Range: p.state.Range, Valid: true}
}

// Restore puts back a snapshot.
func (p *Picker) Restore(s Snapshot) {
	_, _ = p.Dispatch(Restore{Snapshot: s})
}

// View is the structured output a renderer consumes.
type View struct {
	Phase Phase
	Range model.DateRange

	Left  Calendar
	Right Calendar

	// Time pickers are nil unless enabled; RightTime is nil while the end
	// is not picked.
	LeftTime  *TimeSelection
	RightTime *TimeSelection

	Presets       []Preset
	ChosenRange   string
	Label         string
	Shown         bool
	ShowCalendars bool
	Markers       Markers
}

// View derives grids, time pickers and presets from the current state.
func (p *Picker) View() View {
	return render(&p.opts, p.state)
}

func render(o *Options, st State) View {
	c := Classifier{Options: o, Now: o.now(), Range: st.Range, Boundary: st.Boundary}
	v := View{
		Phase:         st.Phase(),
		Range:         st.Range,
		Left:          c.ClassifyGrid(BuildGrid(st.Anchors.Left, model.SideLeft, o.FirstDayOfWeek, st.Boundary)),
		Right:         c.ClassifyGrid(BuildGrid(st.Anchors.Right, model.SideRight, o.FirstDayOfWeek, st.Boundary)),
		Presets:       RefreshPresets(st.Presets, st.Boundary, o).Presets,
		ChosenRange:   st.ChosenRange,
		Label:         st.Label,
		Shown:         st.Shown,
		ShowCalendars: st.ShowCalendars,
		Markers:       o.Markers,
	}
	if o.TimePicker {
		left := ComposeTime(st.Range.Start, st.Boundary.Min, st.Boundary.Max, o)
		v.LeftTime = &left
		if st.Range.HasEnd {
			right := ComposeTime(st.Range.End, st.Range.Start, st.Boundary.Max, o)
			v.RightTime = &right
		}
	}
	return v
}
