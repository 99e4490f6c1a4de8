package picker

import (
	"time"

	"rangepick/internal/model"
)

const (
	defaultCustomRangeLabel = "Custom range"
	defaultSeparator        = " - "
	defaultDateFormat       = model.DayLayout
	defaultDateTimeFormat   = "2006-01-02 15:04"
)

// Markers holds optional class names for boundary days of a page. An empty
// name disables the marker.
type Markers struct {
	FirstDayOfNextMonth    string
	LastDayOfPreviousMonth string
	FirstMonthDay          string
	LastMonthDay           string
	EmptyWeekRow           string
}

// Options are the static flags and host hooks of a picker.
type Options struct {
	SingleDatePicker     bool
	LinkedCalendars      bool
	LockStartDate        bool
	CustomRangeDirection bool
	AutoApply            bool
	CloseOnAutoApply     bool
	AlwaysShowCalendars  bool

	TimePicker          bool
	TimePicker24Hour    bool
	TimePickerSeconds   bool
	TimePickerIncrement int

	ShowCustomRangeLabel         bool
	CustomRangeLabel             string
	ShowRangeLabelOnInput        bool
	KeepCalendarOpeningWithRange bool
	ShowWeekNumbers              bool

	FirstDayOfWeek time.Weekday
	// Format and DisplayFormat are Go time layouts.
	Format        string
	DisplayFormat string
	Separator     string

	Markers Markers

	Location *time.Location
	Now      func() time.Time

	// Host predicates. A panicking predicate counts as "no".
	IsInvalidDate func(time.Time) bool
	IsCustomDate  func(time.Time) []string
	IsTooltipDate func(time.Time) string
}

// DefaultOptions mirrors the widget defaults.
func DefaultOptions() Options {
	return Options{
		CloseOnAutoApply:     true,
		TimePickerIncrement:  1,
		ShowCustomRangeLabel: true,
		CustomRangeLabel:     defaultCustomRangeLabel,
		FirstDayOfWeek:       time.Monday,
		Separator:            defaultSeparator,
		Location:             time.Local,
		Now:                  time.Now,
	}
}

func (o *Options) normalize() error {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.TimePickerIncrement == 0 {
		o.TimePickerIncrement = 1
	}
	if o.TimePickerIncrement < 1 || o.TimePickerIncrement > 60 {
		return &ConfigurationError{Field: "time_picker_increment", Reason: "must be between 1 and 60"}
	}
	if o.FirstDayOfWeek < time.Sunday || o.FirstDayOfWeek > time.Saturday {
		return &ConfigurationError{Field: "first_day_of_week", Reason: "must be a weekday"}
	}
	if o.CustomRangeLabel == "" {
		o.CustomRangeLabel = defaultCustomRangeLabel
	}
	if o.Separator == "" {
		o.Separator = defaultSeparator
	}
	if o.Format == "" {
		o.Format = defaultDateFormat
		if o.TimePicker {
			o.Format = defaultDateTimeFormat
		}
	}
	return nil
}

func (o *Options) displayLayout() string {
	if o.DisplayFormat != "" {
		return o.DisplayFormat
	}
	return o.Format
}

func (o *Options) now() time.Time {
	return o.Now().In(o.Location)
}

func (o *Options) invalid(t time.Time) (invalid bool) {
	if o.IsInvalidDate == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			invalid = false
		}
	}()
	return o.IsInvalidDate(t)
}

func (o *Options) custom(t time.Time) (classes []string) {
	if o.IsCustomDate == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			classes = nil
		}
	}()
	return o.IsCustomDate(t)
}

func (o *Options) tooltip(t time.Time) (text string) {
	if o.IsTooltipDate == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	return o.IsTooltipDate(t)
}
