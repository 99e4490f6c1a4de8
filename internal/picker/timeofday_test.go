package picker

import (
	"slices"
	"testing"
	"time"
)

func at(hour, minute, second int) time.Time {
	return time.Date(2024, 6, 10, hour, minute, second, 0, time.UTC)
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func TestTo24Hour(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hour  int
		pm    bool
		use24 bool
		want  int
	}{
		{hour: 12, pm: false, want: 0},
		{hour: 12, pm: true, want: 12},
		{hour: 1, pm: true, want: 13},
		{hour: 11, pm: false, want: 11},
		{hour: 17, use24: true, want: 17},
	}
	for _, tc := range tests {
		if got := To24Hour(tc.hour, tc.pm, tc.use24); got != tc.want {
			t.Fatalf("expected %d for %d pm=%v, got %d", tc.want, tc.hour, tc.pm, got)
		}
	}
}

func TestComposeTimeFloor(t *testing.T) {
	t.Parallel()

	o := testOptions()
	o.TimePicker, o.TimePicker24Hour = true, true

	sel := ComposeTime(at(10, 0, 0), at(9, 30, 0), time.Time{}, &o)
	if len(sel.Hours) != 24 || sel.Hour != 10 {
		t.Fatalf("expected 24 hours with 10 selected, got %d/%d", len(sel.Hours), sel.Hour)
	}
	if !slices.Equal(sel.DisabledHours, seq(0, 8)) {
		t.Fatalf("expected hours 0-8 disabled, got %v", sel.DisabledHours)
	}
	if len(sel.DisabledMinutes) != 0 {
		t.Fatalf("expected no minutes disabled at 10h, got %v", sel.DisabledMinutes)
	}

	sel = ComposeTime(at(9, 45, 0), at(9, 30, 0), time.Time{}, &o)
	if !slices.Equal(sel.DisabledMinutes, seq(0, 29)) {
		t.Fatalf("expected minutes 0-29 disabled, got %v", sel.DisabledMinutes)
	}
}

func TestComposeTimeCeiling(t *testing.T) {
	t.Parallel()

	o := testOptions()
	o.TimePicker, o.TimePicker24Hour = true, true

	sel := ComposeTime(at(17, 0, 0), time.Time{}, at(17, 15, 0), &o)
	if !slices.Equal(sel.DisabledHours, seq(18, 23)) {
		t.Fatalf("expected hours 18-23 disabled, got %v", sel.DisabledHours)
	}
	if !slices.Equal(sel.DisabledMinutes, seq(16, 59)) {
		t.Fatalf("expected minutes 16-59 disabled, got %v", sel.DisabledMinutes)
	}
}

func TestComposeTimeTwelveHour(t *testing.T) {
	t.Parallel()

	o := testOptions()
	o.TimePicker = true

	sel := ComposeTime(at(14, 0, 0), at(13, 0, 0), time.Time{}, &o)
	if !slices.Equal(sel.Hours, seq(1, 12)) {
		t.Fatalf("expected hours 1-12, got %v", sel.Hours)
	}
	if sel.Hour != 2 || !sel.PM {
		t.Fatalf("expected 2 PM, got %d pm=%v", sel.Hour, sel.PM)
	}
	if !sel.HourDisabled(12) || sel.HourDisabled(1) {
		t.Fatalf("expected only noon disabled, got %v", sel.DisabledHours)
	}
	if !sel.AMDisabled || sel.PMDisabled {
		t.Fatalf("expected AM disabled and PM enabled, got am=%v pm=%v", sel.AMDisabled, sel.PMDisabled)
	}
}

func TestComposeTimeMeridiemCeiling(t *testing.T) {
	t.Parallel()

	o := testOptions()
	o.TimePicker = true

	tests := []struct {
		name    string
		ceiling time.Time
		wantPM  bool
	}{
		{name: "same day before noon", ceiling: at(11, 0, 0), wantPM: false},
		{name: "same day midnight", ceiling: at(0, 0, 0), wantPM: false},
		{name: "previous day", ceiling: at(0, 0, 0).Add(-time.Second), wantPM: true},
	}
	for _, tc := range tests {
		sel := ComposeTime(at(9, 0, 0), time.Time{}, tc.ceiling, &o)
		if sel.PMDisabled != tc.wantPM {
			t.Fatalf("%s: expected pm disabled=%v, got %v", tc.name, tc.wantPM, sel.PMDisabled)
		}
		if sel.AMDisabled {
			t.Fatalf("%s: expected AM enabled without a floor", tc.name)
		}
	}
}

func TestComposeTimeIncrementAndSeconds(t *testing.T) {
	t.Parallel()

	o := testOptions()
	o.TimePicker, o.TimePicker24Hour = true, true
	o.TimePickerIncrement = 15

	sel := ComposeTime(at(10, 0, 0), time.Time{}, time.Time{}, &o)
	if !slices.Equal(sel.Minutes, []int{0, 15, 30, 45}) {
		t.Fatalf("expected quarter hours, got %v", sel.Minutes)
	}
	if sel.Seconds != nil {
		t.Fatalf("expected no seconds list, got %v", sel.Seconds)
	}

	o.TimePickerIncrement = 1
	o.TimePickerSeconds = true
	sel = ComposeTime(at(10, 0, 45), at(10, 0, 30), time.Time{}, &o)
	if len(sel.Seconds) != 60 || sel.Second != 45 {
		t.Fatalf("expected 60 seconds with 45 selected, got %d/%d", len(sel.Seconds), sel.Second)
	}
	if !slices.Equal(sel.DisabledSeconds, seq(0, 29)) {
		t.Fatalf("expected seconds 0-29 disabled, got %v", sel.DisabledSeconds)
	}
	if !sel.SecondDisabled(29) || sel.SecondDisabled(30) {
		t.Fatal("expected second 30 to be the first enabled")
	}
}
