package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "rangepick/internal/log"
	"rangepick/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// Window bounds an expansion. Days are computed in Location.
type Window struct {
	Location *time.Location
	From     time.Time
	To       time.Time

	MaxOccurrencesPerEvent int
}

// Marker is one calendar day touched by an event occurrence.
type Marker struct {
	SourceID string
	UID      string
	Summary  string
	Day      time.Time
}

// DayKey is the lookup key of the marker's day.
func (m Marker) DayKey() string { return model.DayKey(m.Day) }

// ExpandMarkers expands events into per-day markers inside w. Recurring
// events honour EXDATE; RECURRENCE-ID overrides replace the instance they
// name. Timed events mark every day they overlap, all-day events every
// date before their exclusive end.
func ExpandMarkers(events []Event, w Window) ([]Marker, error) {
	if w.To.Before(w.From) {
		return nil, errors.New("expand: window ends before it starts")
	}
	if w.Location == nil {
		w.Location = time.Local
	}
	if w.MaxOccurrencesPerEvent <= 0 {
		w.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}
	w.From, w.To = w.From.In(w.Location), w.To.In(w.Location)

	overrides := make(map[string][]Event)
	for _, ev := range events {
		if ev.isOverride() {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
		}
	}

	var out []Marker
	for _, ev := range events {
		if ev.isOverride() {
			continue
		}
		for _, occ := range occurrences(ev, overrides[ev.UID], w) {
			out = append(out, markDays(occ, w)...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

// occurrences returns the concrete instances of ev that overlap w.
func occurrences(ev Event, overrides []Event, w Window) []Event {
	if ev.RawRRule == "" {
		if overlaps(ev, w) {
			return []Event{ev}
		}
		return nil
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Warn("ics rrule skipped", "uid", ev.UID, "rrule", ev.RawRRule, "reason", err)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// widen by the event length so instances starting before From still count
	dur := ev.End.Sub(ev.Start)
	starts := set.Between(w.From.Add(-dur).In(ev.Start.Location()), w.To.In(ev.Start.Location()), true)
	if len(starts) > w.MaxOccurrencesPerEvent {
		appLog.Warn("ics occurrences truncated", "uid", ev.UID, "cap", w.MaxOccurrencesPerEvent)
		starts = starts[:w.MaxOccurrencesPerEvent]
	}

	out := make([]Event, 0, len(starts))
	for _, s := range starts {
		inst := ev
		inst.Start, inst.End = s, s.Add(dur)
		for _, ov := range overrides {
			if ov.Recurrence.Equal(s) {
				inst = ov
				break
			}
		}
		if overlaps(inst, w) {
			out = append(out, inst)
		}
	}
	return out
}

func overlaps(ev Event, w Window) bool {
	return !ev.End.Before(w.From) && !ev.Start.After(w.To)
}

func markDays(ev Event, w Window) []Marker {
	var first, last time.Time
	if ev.AllDay {
		// all-day dates are floating: keep the calendar date as written
		first = time.Date(ev.Start.Year(), ev.Start.Month(), ev.Start.Day(), 0, 0, 0, 0, w.Location)
		last = time.Date(ev.End.Year(), ev.End.Month(), ev.End.Day(), 0, 0, 0, 0, w.Location).AddDate(0, 0, -1)
	} else {
		first = model.StartOfDay(ev.Start.In(w.Location))
		end := ev.End.In(w.Location)
		last = model.StartOfDay(end)
		if end.Equal(last) && end.After(ev.Start) {
			last = last.AddDate(0, 0, -1)
		}
	}

	var out []Marker
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if model.CompareDay(d, w.From) < 0 || model.CompareDay(d, w.To) > 0 {
			continue
		}
		out = append(out, Marker{SourceID: ev.Source.ID, UID: ev.UID, Summary: ev.Summary, Day: d})
	}
	return out
}
