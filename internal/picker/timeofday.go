package picker

import (
	"slices"
	"time"
)

// Clock is a time of day in 24-hour form.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

func clockOf(t time.Time) Clock {
	h, m, s := t.Clock()
	return Clock{Hour: h, Minute: m, Second: s}
}

// To24Hour converts a picker hour to 0-23. In 12-hour mode hour is 1-12 and
// pm selects the meridiem.
func To24Hour(hour int, pm, use24 bool) int {
	if use24 {
		return hour
	}
	if pm && hour < 12 {
		return hour + 12
	}
	if !pm && hour == 12 {
		return 0
	}
	return hour
}

// TimeSelection is the state of one side's time picker.
type TimeSelection struct {
	Hours   []int
	Minutes []int
	Seconds []int

	Hour   int
	Minute int
	Second int
	PM     bool

	DisabledHours   []int
	DisabledMinutes []int
	DisabledSeconds []int
	AMDisabled      bool
	PMDisabled      bool

	Selected time.Time
}

func (s TimeSelection) HourDisabled(h int) bool   { return slices.Contains(s.DisabledHours, h) }
func (s TimeSelection) MinuteDisabled(m int) bool { return slices.Contains(s.DisabledMinutes, m) }
func (s TimeSelection) SecondDisabled(x int) bool { return slices.Contains(s.DisabledSeconds, x) }

// ComposeTime enumerates the time picker for selected. floor and ceiling are
// optional (zero = unset); a component is disabled when every instant it can
// still reach lies outside [floor, ceiling].
func ComposeTime(selected, floor, ceiling time.Time, o *Options) TimeSelection {
	y, mo, d := selected.Date()
	loc := selected.Location()
	at := func(h, m, s int) time.Time { return time.Date(y, mo, d, h, m, s, 0, loc) }
	tooEarly := func(t time.Time) bool { return !floor.IsZero() && t.Before(floor) }
	tooLate := func(t time.Time) bool { return !ceiling.IsZero() && t.After(ceiling) }

	h24, minute, sec := selected.Clock()
	sel := TimeSelection{Minute: minute, Selected: selected, PM: h24 >= 12}
	if o.TimePickerSeconds {
		sel.Second = sec
	}

	first, last := 0, 23
	if !o.TimePicker24Hour {
		first, last = 1, 12
	}
	for i := first; i <= last; i++ {
		hour := To24Hour(i, sel.PM, o.TimePicker24Hour)
		sel.Hours = append(sel.Hours, i)
		if tooEarly(at(hour, 59, 59)) || tooLate(at(hour, 0, 0)) {
			sel.DisabledHours = append(sel.DisabledHours, i)
		}
		if hour == h24 {
			sel.Hour = i
		}
	}

	step := max(o.TimePickerIncrement, 1)
	for i := 0; i < 60; i += step {
		sel.Minutes = append(sel.Minutes, i)
		if tooEarly(at(h24, i, 59)) || tooLate(at(h24, i, 0)) {
			sel.DisabledMinutes = append(sel.DisabledMinutes, i)
		}
	}

	if o.TimePickerSeconds {
		for i := 0; i < 60; i++ {
			sel.Seconds = append(sel.Seconds, i)
			if t := at(h24, minute, i); tooEarly(t) || tooLate(t) {
				sel.DisabledSeconds = append(sel.DisabledSeconds, i)
			}
		}
	}

	if !o.TimePicker24Hour {
		sel.AMDisabled = tooEarly(at(12, 0, 0))
		sel.PMDisabled = tooLate(at(0, 0, 0))
	}
	return sel
}
