// Package app wires configuration, predicates and presets into a running
// picker and keeps the time-relative parts of it fresh.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"rangepick/internal/config"
	"rangepick/internal/ics"
	appLog "rangepick/internal/log"
	"rangepick/internal/model"
	"rangepick/internal/picker"
	"rangepick/internal/preset"
	"rangepick/internal/rules"
)

// App owns one picker and the state that feeds its predicates.
type App struct {
	cfg      *config.Config
	loc      *time.Location
	now      func() time.Time
	fetcher  *ics.Fetcher
	resolver preset.Resolver
	maxSpan  time.Duration

	mu     sync.Mutex
	picker *picker.Picker
	rules  *rules.Set
	events []picker.Event
}

// Option customises New.
type Option func(*App)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithFetcher replaces the marker calendar fetcher.
func WithFetcher(f *ics.Fetcher) Option {
	return func(a *App) { a.fetcher = f }
}

// New validates cfg and builds the picker. Marker calendars are not
// fetched here; call RefreshMarkers.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	maxSpan, err := cfg.MaxSpan()
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, loc: loc, now: time.Now, maxSpan: maxSpan}
	for _, opt := range opts {
		opt(a)
	}
	if a.fetcher == nil {
		a.fetcher = ics.NewFetcher(cfg.CacheDir)
	}
	a.resolver = preset.Resolver{Location: loc, Now: a.now, WeekStart: cfg.FirstDay()}

	set, err := rules.Build(cfg.Rules, loc, a.now())
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	a.rules = set

	b, err := a.resolver.Boundary(cfg.Boundary, maxSpan)
	if err != nil {
		return nil, err
	}
	initial, err := a.resolver.Initial(cfg.Initial)
	if err != nil {
		return nil, err
	}
	raw, err := a.resolver.Presets(cfg.Presets)
	if err != nil {
		// a broken preset is dropped, not fatal
		appLog.Error("presets partially resolved", err, "kept", len(raw))
	}

	p, err := picker.New(a.pickerOptions(), picker.Setup{Boundary: b, Initial: initial, Presets: raw})
	if err != nil {
		return nil, err
	}
	p.OnEvent(a.record)
	a.picker = p

	appLog.Debug("picker ready",
		"timezone", loc.String(),
		"week_start", cfg.FirstDay().String(),
		"presets", len(raw),
		"min", formatOrEmpty(b.Min),
		"max", formatOrEmpty(b.Max),
	)
	return a, nil
}

func (a *App) pickerOptions() picker.Options {
	pc := a.cfg.Picker
	o := picker.DefaultOptions()
	o.SingleDatePicker = pc.SingleDatePicker
	o.LinkedCalendars = pc.LinkedCalendars
	o.LockStartDate = pc.LockStartDate
	o.CustomRangeDirection = pc.CustomRangeDirection
	o.AutoApply = pc.AutoApply
	o.CloseOnAutoApply = pc.CloseOnAutoApply == nil || *pc.CloseOnAutoApply
	o.AlwaysShowCalendars = pc.AlwaysShowCalendars
	o.TimePicker = pc.TimePicker
	o.TimePicker24Hour = pc.TimePicker24Hour
	o.TimePickerSeconds = pc.TimePickerSeconds
	o.TimePickerIncrement = pc.TimePickerIncrement
	o.ShowCustomRangeLabel = pc.ShowCustomRangeLabel == nil || *pc.ShowCustomRangeLabel
	o.CustomRangeLabel = pc.CustomRangeLabel
	o.ShowRangeLabelOnInput = pc.ShowRangeLabelOnInput
	o.KeepCalendarOpeningWithRange = pc.KeepCalendarOpeningWithRange
	o.ShowWeekNumbers = pc.ShowWeekNumbers
	o.FirstDayOfWeek = a.cfg.FirstDay()
	o.Format = pc.Format
	o.DisplayFormat = pc.DisplayFormat
	o.Separator = pc.Separator
	o.Markers = picker.Markers{
		FirstDayOfNextMonth:    pc.Markers.FirstDayOfNextMonth,
		LastDayOfPreviousMonth: pc.Markers.LastDayOfPreviousMonth,
		FirstMonthDay:          pc.Markers.FirstMonthDay,
		LastMonthDay:           pc.Markers.LastMonthDay,
		EmptyWeekRow:           pc.Markers.EmptyWeekRow,
	}
	o.Location = a.loc
	o.Now = a.now

	// predicates read the current set, which refreshes swap under mu
	o.IsInvalidDate = func(t time.Time) bool { return a.rules.IsInvalidDate(t) }
	o.IsCustomDate = func(t time.Time) []string { return a.rules.IsCustomDate(t) }
	o.IsTooltipDate = func(t time.Time) string { return a.rules.IsTooltipDate(t) }
	return o
}

func (a *App) record(e picker.Event) {
	a.events = append(a.events, e)
	appLog.Debug("picker event", "kind", string(e.Kind), "label", e.Label,
		"start", formatOrEmpty(e.Start), "end", formatOrEmpty(e.End))
}

// Config returns the configuration the app was built from.
func (a *App) Config() *config.Config { return a.cfg }

// Location returns the configured timezone.
func (a *App) Location() *time.Location { return a.loc }

// Do runs fn with exclusive access to the picker.
func (a *App) Do(fn func(p *picker.Picker) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fn(a.picker)
}

// Dispatch applies inputs in order under one lock and returns the resulting
// view together with the events they produced. No other caller observes the
// picker between two of the inputs.
func (a *App) Dispatch(inputs ...picker.Input) (picker.View, []picker.Event, error) {
	var (
		view   picker.View
		events []picker.Event
	)
	err := a.Do(func(p *picker.Picker) error {
		for _, in := range inputs {
			evs, err := p.Dispatch(in)
			if err != nil {
				return err
			}
			events = append(events, evs...)
		}
		view = p.View()
		return nil
	})
	if err != nil {
		return picker.View{}, nil, err
	}
	return view, events, nil
}

// View returns the current view.
func (a *App) View() picker.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.picker.View()
}

// Events drains the events recorded since the last call.
func (a *App) Events() []picker.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.events
	a.events = nil
	return out
}

// ResolveTime evaluates an endpoint expression such as "today -3d". A
// day-granular value used as an end covers its whole day.
func (a *App) ResolveTime(expr string, end bool) (time.Time, error) {
	v, err := a.resolver.Resolve(expr)
	if err != nil {
		return time.Time{}, err
	}
	if end && !v.HasClock {
		return model.EndOfDay(v.Time), nil
	}
	return v.Time, nil
}

// ResolveBoundary evaluates boundary expressions against the current clock.
func (a *App) ResolveBoundary(bc config.BoundaryConfig) (picker.Boundary, error) {
	span, err := bc.Span()
	if err != nil {
		return picker.Boundary{}, fmt.Errorf("max_span: %w", err)
	}
	return a.resolver.Boundary(bc, span)
}

// RefreshPresets re-resolves the relative presets and boundary against the
// current clock and hands them to the picker.
func (a *App) RefreshPresets() error {
	raw, presetErr := a.resolver.Presets(a.cfg.Presets)
	b, err := a.resolver.Boundary(a.cfg.Boundary, a.maxSpan)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.picker.Dispatch(picker.SetPresets{Presets: raw}); err != nil {
		return err
	}
	if _, err := a.picker.Dispatch(picker.SetBoundary{Boundary: b}); err != nil {
		return err
	}
	appLog.Info("presets refreshed", "count", len(raw))
	return presetErr
}

// RefreshMarkers rebuilds the rule set for a window around now and loads
// every marker calendar into it. Calendars that fail keep the rest usable.
func (a *App) RefreshMarkers(ctx context.Context) error {
	set, err := rules.Build(a.cfg.Rules, a.loc, a.now())
	if err != nil {
		return err
	}
	loadErr := set.LoadCalendars(ctx, a.fetcher, a.cfg.Rules.Calendars)

	a.mu.Lock()
	a.rules = set
	a.mu.Unlock()

	from, to := set.Window()
	appLog.Info("markers refreshed",
		"calendars", len(a.cfg.Rules.Calendars),
		"from", from.Format(time.DateOnly),
		"to", to.Format(time.DateOnly),
	)
	return loadErr
}

// Start runs the refresh schedule until ctx is done. Markers are loaded
// once right away.
func (a *App) Start(ctx context.Context) error {
	if err := a.RefreshMarkers(ctx); err != nil {
		appLog.Error("initial marker refresh incomplete", err)
	}

	c := cron.New(cron.WithLocation(a.loc))
	_, err := c.AddFunc(a.cfg.PresetRefresh, func() {
		if err := a.RefreshPresets(); err != nil {
			appLog.Error("scheduled preset refresh failed", err)
		}
		if err := a.RefreshMarkers(ctx); err != nil {
			appLog.Error("scheduled marker refresh incomplete", err)
		}
	})
	if err != nil {
		return fmt.Errorf("preset_refresh: %w", err)
	}
	c.Start()
	appLog.Info("refresh scheduler started", "spec", a.cfg.PresetRefresh, "timezone", a.loc.String())

	<-ctx.Done()
	<-c.Stop().Done()
	appLog.Info("refresh scheduler stopped")
	return nil
}

func formatOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
