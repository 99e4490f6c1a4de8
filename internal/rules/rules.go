// Package rules turns configured recurrence rules and marker calendars into
// the day predicates of the picker.
//
// A Set is precomputed for a window of days around "now" and is read-only
// once built; callers rebuild it when the window moves.
package rules

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"rangepick/internal/config"
	"rangepick/internal/ics"
	appLog "rangepick/internal/log"
	"rangepick/internal/model"
)

// Day is everything the predicates know about one calendar day.
type Day struct {
	Invalid  bool
	Classes  []string
	Tooltips []string
}

// Set answers the predicates for days inside its window. Days outside the
// window are plain.
type Set struct {
	loc  *time.Location
	from time.Time
	to   time.Time
	days map[string]*Day
}

// Build compiles the RRULE rules of cfg for the window of cfg.WindowDays
// before and after now. Broken rules are skipped and reported together.
func Build(cfg config.RulesConfig, loc *time.Location, now time.Time) (*Set, error) {
	if loc == nil {
		loc = time.Local
	}
	window := cfg.WindowDays
	if window <= 0 {
		window = 365
	}
	today := model.StartOfDay(now.In(loc))
	s := &Set{
		loc:  loc,
		from: today.AddDate(0, 0, -window),
		to:   model.EndOfDay(today.AddDate(0, 0, window)),
		days: make(map[string]*Day),
	}

	var errs []error
	for i, rc := range cfg.Invalid {
		if err := s.addRule(rc, true); err != nil {
			errs = append(errs, fmt.Errorf("invalid[%d]: %w", i, err))
		}
	}
	for i, rc := range cfg.Custom {
		if err := s.addRule(rc, false); err != nil {
			errs = append(errs, fmt.Errorf("custom[%d]: %w", i, err))
		}
	}
	return s, errors.Join(errs...)
}

// Window returns the covered instants.
func (s *Set) Window() (from, to time.Time) { return s.from, s.to }

func (s *Set) addRule(rc config.RuleConfig, invalid bool) error {
	opt, err := rrule.StrToROptionInLocation(rc.RRule, s.loc)
	if err != nil {
		return err
	}
	if opt.Dtstart.IsZero() {
		// fixed per year so weekday-less weekly rules stay put
		opt.Dtstart = time.Date(s.from.Year(), time.January, 1, 0, 0, 0, 0, s.loc)
	}
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return err
	}
	for _, occ := range r.Between(s.from, s.to, true) {
		s.mark(occ, invalid, rc.Class, rc.Tooltip)
	}
	return nil
}

func (s *Set) mark(t time.Time, invalid bool, class, tooltip string) {
	key := model.DayKey(t.In(s.loc))
	d := s.days[key]
	if d == nil {
		d = &Day{}
		s.days[key] = d
	}
	d.Invalid = d.Invalid || invalid
	if class != "" && !slices.Contains(d.Classes, class) {
		d.Classes = append(d.Classes, class)
	}
	if tooltip != "" && !slices.Contains(d.Tooltips, tooltip) {
		d.Tooltips = append(d.Tooltips, tooltip)
	}
}

// AddMarkers marks the days of an expanded calendar.
func (s *Set) AddMarkers(cal config.CalendarConfig, markers []ics.Marker) {
	for _, m := range markers {
		tooltip := ""
		if cal.Tooltip {
			tooltip = m.Summary
		}
		s.mark(m.Day, cal.Invalid, cal.Class, tooltip)
	}
}

// LoadCalendars fetches, parses and expands every calendar into s. A
// failing calendar is logged and skipped; the joined error lists them.
func (s *Set) LoadCalendars(ctx context.Context, f *ics.Fetcher, cals []config.CalendarConfig) error {
	var errs []error
	for _, cal := range cals {
		if err := s.loadCalendar(ctx, f, cal); err != nil {
			appLog.Error("marker calendar skipped", err, "id", cal.ID)
			errs = append(errs, fmt.Errorf("calendar %s: %w", cal.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Set) loadCalendar(ctx context.Context, f *ics.Fetcher, cal config.CalendarConfig) error {
	src := ics.Source{ID: cal.ID, URL: cal.URL}
	res, err := f.FetchOne(ctx, src)
	if err != nil {
		return err
	}
	events, err := ics.Parse(src, res.Body, s.loc)
	if err != nil {
		return err
	}
	markers, err := ics.ExpandMarkers(events, ics.Window{Location: s.loc, From: s.from, To: s.to})
	if err != nil {
		return err
	}
	s.AddMarkers(cal, markers)
	appLog.Info("marker calendar loaded", "id", cal.ID, "events", len(events), "days", len(markers), "from_cache", res.FromCache)
	return nil
}

// Lookup returns what is known about t's day.
func (s *Set) Lookup(t time.Time) Day {
	if s == nil {
		return Day{}
	}
	if d := s.days[model.DayKey(t.In(s.loc))]; d != nil {
		return *d
	}
	return Day{}
}

func (s *Set) IsInvalidDate(t time.Time) bool {
	return s.Lookup(t).Invalid
}

// IsCustomDate returns the extra classes of t's day.
func (s *Set) IsCustomDate(t time.Time) []string {
	return slices.Clone(s.Lookup(t).Classes)
}

// IsTooltipDate joins the tooltips of t's day.
func (s *Set) IsTooltipDate(t time.Time) string {
	return strings.Join(s.Lookup(t).Tooltips, ", ")
}
