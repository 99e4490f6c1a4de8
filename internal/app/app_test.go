package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"rangepick/internal/config"
	"rangepick/internal/ics"
	"rangepick/internal/picker"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestApp(t *testing.T, mutate func(cfg *config.Config)) (*App, *fakeClock) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	if mutate != nil {
		mutate(cfg)
	}
	clock := &fakeClock{now: time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)}
	a, err := New(cfg, WithClock(clock.Now), WithFetcher(ics.NewFetcher(cfg.CacheDir)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return a, clock
}

func presetByLabel(v picker.View, label string) (picker.Preset, bool) {
	for _, p := range v.Presets {
		if p.Label == label {
			return p, true
		}
	}
	return picker.Preset{}, false
}

func TestNewBuildsPickerFromConfig(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, nil)
	v := a.View()

	if !v.Range.Start.Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected today as the initial start, got %s", v.Range.Start)
	}
	if len(v.Presets) != 7 {
		t.Fatalf("expected 6 presets plus the custom entry, got %d", len(v.Presets))
	}
	last, ok := presetByLabel(v, "Last Month")
	if !ok || !last.Range.Start.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected last month preset %+v", last)
	}
	if v.Left.Grid.Anchor.Month() != time.June {
		t.Fatalf("expected June on the left, got %s", v.Left.Grid.Anchor.Month())
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
		want   string
	}{
		{name: "timezone", mutate: func(c *config.Config) { c.Timezone = "Nowhere/City" }, want: "timezone"},
		{name: "boundary", mutate: func(c *config.Config) { c.Boundary.Min = "tomorrow"; c.Boundary.Max = "yesterday" }, want: "min"},
		{name: "rule", mutate: func(c *config.Config) {
			c.Rules.Invalid = []config.RuleConfig{{RRule: "FREQ=SOMETIMES"}}
		}, want: "rules"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.DefaultConfig()
			tc.mutate(cfg)
			_, err := New(cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDispatchRecordsEvents(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, nil)
	v, events, err := a.Dispatch(picker.ClickPreset{Label: "Yesterday"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !v.Range.Start.Equal(time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected yesterday selected, got %s", v.Range.Start)
	}
	if len(events) == 0 || events[0].Kind != picker.EventPresetClicked {
		t.Fatalf("expected preset-clicked first, got %+v", events)
	}

	drained := a.Events()
	if len(drained) != len(events) {
		t.Fatalf("expected %d recorded events, got %d", len(events), len(drained))
	}
	if again := a.Events(); len(again) != 0 {
		t.Fatalf("expected events drained, got %d", len(again))
	}
}

func TestDispatchAppliesInputsTogether(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, nil)
	pairs := [][2]time.Time{
		{time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)},
	}

	var wg sync.WaitGroup
	errs := make(chan string, 2*50)
	for _, pair := range pairs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				v, events, err := a.Dispatch(picker.SetStartDate{Date: pair[0]}, picker.SetEndDate{Date: pair[1]})
				if err != nil {
					errs <- err.Error()
					return
				}
				got := v.Range.Start.Format(time.DateOnly) + "/" + v.Range.End.Format(time.DateOnly)
				want := pair[0].Format(time.DateOnly) + "/" + pair[1].Format(time.DateOnly)
				if got != want {
					errs <- "expected " + want + ", got " + got
					return
				}
				if len(events) == 0 || events[0].Kind != picker.EventStartChanged {
					errs <- "expected start-changed first"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
}

func TestRefreshPresetsFollowsClock(t *testing.T) {
	t.Parallel()

	a, clock := newTestApp(t, func(cfg *config.Config) {
		cfg.Boundary.Max = "today"
	})
	clock.Set(time.Date(2024, 7, 2, 9, 0, 0, 0, time.UTC))
	if err := a.RefreshPresets(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	v := a.View()
	today, ok := presetByLabel(v, "Today")
	if !ok || !today.Range.Start.Equal(time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected Today to move to 2024-07-02, got %+v", today)
	}
	err := a.Do(func(p *picker.Picker) error {
		if got := p.State().Boundary.Max; !got.Equal(time.Date(2024, 7, 2, 23, 59, 59, 0, time.UTC)) {
			t.Fatalf("expected max to follow the clock, got %s", got)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRefreshMarkersMarksCalendarDays(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	body := strings.ReplaceAll(`BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//rangepick//test//EN
BEGIN:VEVENT
UID:closure-1
DTSTART;VALUE=DATE:20240619
SUMMARY:Office closed
END:VEVENT
END:VCALENDAR
`, "\n", "\r\n")
	path := filepath.Join(dir, "closures.ics")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	a, _ := newTestApp(t, func(cfg *config.Config) {
		cfg.Rules.Calendars = []config.CalendarConfig{
			{ID: "closures", URL: path, Class: "closed", Invalid: true, Tooltip: true},
		}
	})
	if err := a.RefreshMarkers(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	v := a.View()
	row, col, ok := v.Left.Grid.Locate(time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC))
	if !ok {
		t.Fatal("expected 2024-06-19 on the left page")
	}
	cell := v.Left.Cells[row][col]
	if !cell.Tags.Has(picker.TagInvalid) || !cell.Tags.Has(picker.TagDisabled) {
		t.Fatalf("expected the closure day invalid and disabled, got %v", cell.Tags.Names(v.Markers))
	}
	if cell.Tooltip != "Office closed" || len(cell.Custom) != 1 || cell.Custom[0] != "closed" {
		t.Fatalf("unexpected decorations %q %v", cell.Tooltip, cell.Custom)
	}
}

func TestStartStopsWithContext(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean stop, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("expected Start to return after cancel")
	}
}
