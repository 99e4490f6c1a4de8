package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadCreatesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Listen != defaultListen || len(cfg.Presets) == 0 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected config file written, got %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600, got %o", perm)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("expected reload to succeed, got %v", err)
	}
	if len(again.Presets) != len(cfg.Presets) || !*again.Picker.CloseOnAutoApply {
		t.Fatalf("expected round-tripped defaults, got %+v", again)
	}
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
timezone: UTC
week_start: Sunday
picker:
  linked_calendars: true
  close_on_auto_apply: false
boundary:
  min: today -1y
  max_span: 72h
rules:
  calendars:
    - url: ./holidays.ics
      invalid: true
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.FirstDay() != time.Sunday {
		t.Fatalf("expected sunday, got %s", cfg.FirstDay())
	}
	if !cfg.Picker.LinkedCalendars || *cfg.Picker.CloseOnAutoApply || !*cfg.Picker.ShowCustomRangeLabel {
		t.Fatalf("unexpected picker flags %+v", cfg.Picker)
	}
	if span, _ := cfg.MaxSpan(); span != 72*time.Hour {
		t.Fatalf("expected 72h, got %s", span)
	}
	if cfg.Rules.Calendars[0].ID != "calendar-1" || cfg.Rules.WindowDays != defaultWindowDays {
		t.Fatalf("expected calendar defaults, got %+v", cfg.Rules)
	}
	if cfg.Picker.Separator != " - " || cfg.PresetRefresh != defaultPresetRefresh {
		t.Fatalf("expected separator and refresh defaults, got %q %q", cfg.Picker.Separator, cfg.PresetRefresh)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, wantErr: "timezone"},
		{name: "week start", mutate: func(c *Config) { c.WeekStart = "someday" }, wantErr: "week_start"},
		{name: "cron", mutate: func(c *Config) { c.PresetRefresh = "every day" }, wantErr: "preset_refresh"},
		{name: "increment", mutate: func(c *Config) { c.Picker.TimePickerIncrement = 90 }, wantErr: "time_picker_increment"},
		{name: "span", mutate: func(c *Config) { c.Boundary.MaxSpan = "soon" }, wantErr: "max_span"},
		{name: "negative span", mutate: func(c *Config) { c.Boundary.MaxSpan = "-1h" }, wantErr: "max_span"},
		{name: "label", mutate: func(c *Config) { c.Presets = append(c.Presets, PresetConfig{Start: "today", End: "today"}) }, wantErr: "label is empty"},
		{name: "rule", mutate: func(c *Config) { c.Rules.Invalid = []RuleConfig{{Class: "x"}} }, wantErr: "rrule is empty"},
		{name: "calendar", mutate: func(c *Config) { c.Rules.Calendars = []CalendarConfig{{ID: "h"}} }, wantErr: "url is empty"},
		{name: "auth", mutate: func(c *Config) { c.BasicAuth = &BasicAuthConfig{Password: "x"} }, wantErr: "basic_auth"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestParseWeekday(t *testing.T) {
	t.Parallel()

	tests := map[string]time.Weekday{
		"monday": time.Monday,
		"SUN":    time.Sunday,
		" sat ":  time.Saturday,
	}
	for in, want := range tests {
		got, err := ParseWeekday(in)
		if err != nil || got != want {
			t.Fatalf("%q: expected %s, got %s (%v)", in, want, got, err)
		}
	}
	if _, err := ParseWeekday("funday"); err == nil {
		t.Fatal("expected error for unknown weekday")
	}
}
