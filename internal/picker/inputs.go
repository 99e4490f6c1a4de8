package picker

import (
	"time"

	"rangepick/internal/model"
)

// Input is one host interaction fed to the picker.
type Input interface {
	apply(r *reduction) error
}

func validSide(s model.Side) bool {
	return s == model.SideLeft || s == model.SideRight
}

// ClickDate clicks the cell at Row/Col of Side's page. Clicks on disabled
// cells are ignored.
type ClickDate struct {
	Side model.Side
	Row  int
	Col  int
}

func (in ClickDate) apply(r *reduction) error {
	if !validSide(in.Side) {
		return nil
	}
	g := r.grid(in.Side)
	cell, ok := g.At(in.Row, in.Col)
	if !ok {
		return nil
	}
	if !r.classifier().Classify(cell, g).Available() {
		return nil
	}
	r.clickDay(cell)
	return nil
}

// ClickDay clicks the cell showing Date on Side's page. Days that are not
// visible on that page are ignored. A day disabled only because it lies
// before Min is clamped up to Min instead of being ignored.
type ClickDay struct {
	Side model.Side
	Date time.Time
}

func (in ClickDay) apply(r *reduction) error {
	if !validSide(in.Side) {
		return nil
	}
	g := r.grid(in.Side)
	row, col, ok := g.Locate(in.Date.In(r.opts.Location))
	if !ok {
		return nil
	}
	cell, _ := g.At(row, col)
	c := r.classifier()
	if !c.Classify(cell, g).Available() && !c.belowMinOnly(cell, g) {
		return nil
	}
	r.clickDay(cell)
	return nil
}

// ClickPrev shows the previous month on Side.
type ClickPrev struct{ Side model.Side }

func (in ClickPrev) apply(r *reduction) error {
	if !validSide(in.Side) {
		return nil
	}
	r.st.Anchors = r.navigator().Prev(r.st.Anchors, in.Side)
	return nil
}

// ClickNext shows the next month on Side.
type ClickNext struct{ Side model.Side }

func (in ClickNext) apply(r *reduction) error {
	if !validSide(in.Side) {
		return nil
	}
	r.st.Anchors = r.navigator().Next(r.st.Anchors, in.Side)
	return nil
}

// ChangeMonthYear jumps Side to Month/Year (dropdown selection).
type ChangeMonthYear struct {
	Side  model.Side
	Month time.Month
	Year  int
}

func (in ChangeMonthYear) apply(r *reduction) error {
	if !validSide(in.Side) || in.Month < time.January || in.Month > time.December {
		return nil
	}
	r.st.Anchors = r.navigator().MonthYear(r.st.Anchors, in.Month, in.Year, in.Side)
	return nil
}

// ChangeTime sets the time of day of the start (left) or end (right). Hour
// is 1-12 with PM in 12-hour mode and 0-23 otherwise.
type ChangeTime struct {
	Side   model.Side
	Hour   int
	Minute int
	Second int
	PM     bool
}

func (in ChangeTime) apply(r *reduction) error {
	o := r.opts
	hour := To24Hour(in.Hour, in.PM, o.TimePicker24Hour)
	if hour < 0 || hour > 23 || in.Minute < 0 || in.Minute > 59 || in.Second < 0 || in.Second > 59 {
		return nil
	}
	sec := in.Second
	if !o.TimePickerSeconds {
		sec = 0
	}

	switch {
	case in.Side == model.SideLeft:
		r.setStartDate(model.WithClock(r.st.Range.Start, hour, in.Minute, sec))
		if o.SingleDatePicker {
			r.st.Range.End, r.st.Range.HasEnd = r.st.Range.Start, true
		}
	case in.Side == model.SideRight && r.st.Range.HasEnd:
		r.setEndDate(model.WithClock(r.st.Range.End, hour, in.Minute, sec))
	default:
		return nil
	}
	r.syncClocks()
	if o.AutoApply {
		r.apply(true)
	}
	return nil
}

// ClickPreset selects a catalogue entry by label.
type ClickPreset struct{ Label string }

func (in ClickPreset) apply(r *reduction) error {
	r.clickPreset(in.Label)
	return nil
}

// Apply confirms the current selection.
type Apply struct{}

func (Apply) apply(r *reduction) error {
	r.apply(false)
	return nil
}

// Cancel reverts to the selection saved when the picker was shown.
type Cancel struct{}

func (Cancel) apply(r *reduction) error {
	r.restore(r.st.Saved)
	r.hide()
	return nil
}

// Show opens the picker and saves the selection for Cancel.
type Show struct{}

func (Show) apply(r *reduction) error {
	r.show()
	return nil
}

// Hide closes the picker.
type Hide struct{}

func (Hide) apply(r *reduction) error {
	r.hide()
	return nil
}

// Clear resets the selection to today and notifies the host with empty
// dates.
type Clear struct{}

func (Clear) apply(r *reduction) error {
	r.clear()
	return nil
}

// Restore puts back a selection taken with Picker.Snapshot.
type Restore struct{ Snapshot Snapshot }

func (in Restore) apply(r *reduction) error {
	r.restore(in.Snapshot)
	return nil
}

// SetStartDate sets the start programmatically.
type SetStartDate struct{ Date time.Time }

func (in SetStartDate) apply(r *reduction) error {
	r.setStartDate(in.Date)
	return nil
}

// SetEndDate sets the end programmatically.
type SetEndDate struct{ Date time.Time }

func (in SetEndDate) apply(r *reduction) error {
	r.setEndDate(in.Date)
	return nil
}

// SetBoundary replaces the boundary and repairs the selection. An invalid
// boundary is rejected with a ConfigurationError and changes nothing.
type SetBoundary struct{ Boundary Boundary }

func (in SetBoundary) apply(r *reduction) error {
	b := in.Boundary.In(r.opts.Location)
	if err := b.Validate(); err != nil {
		return err
	}
	r.st.Boundary = b
	r.reclamp()
	return nil
}

// SetPresets replaces the preset catalogue.
type SetPresets struct{ Presets []RawPreset }

func (in SetPresets) apply(r *reduction) error {
	r.st.Presets = append([]RawPreset(nil), in.Presets...)
	r.st.ShowCalendars = len(r.catalog().Presets) == 0 || r.opts.AlwaysShowCalendars
	return nil
}
