package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// MarkersConfig names the optional CSS-like classes put on boundary days.
type MarkersConfig struct {
	FirstDayOfNextMonth    string `yaml:"first_day_of_next_month,omitempty" json:"first_day_of_next_month,omitempty"`
	LastDayOfPreviousMonth string `yaml:"last_day_of_previous_month,omitempty" json:"last_day_of_previous_month,omitempty"`
	FirstMonthDay          string `yaml:"first_month_day,omitempty" json:"first_month_day,omitempty"`
	LastMonthDay           string `yaml:"last_month_day,omitempty" json:"last_month_day,omitempty"`
	EmptyWeekRow           string `yaml:"empty_week_row,omitempty" json:"empty_week_row,omitempty"`
}

// PickerConfig holds the widget behaviour flags.
type PickerConfig struct {
	SingleDatePicker     bool `yaml:"single_date_picker" json:"single_date_picker"`
	LinkedCalendars      bool `yaml:"linked_calendars" json:"linked_calendars"`
	LockStartDate        bool `yaml:"lock_start_date" json:"lock_start_date"`
	CustomRangeDirection bool `yaml:"custom_range_direction" json:"custom_range_direction"`
	AutoApply            bool `yaml:"auto_apply" json:"auto_apply"`
	// CloseOnAutoApply defaults to true when omitted.
	CloseOnAutoApply    *bool `yaml:"close_on_auto_apply,omitempty" json:"close_on_auto_apply,omitempty"`
	AlwaysShowCalendars bool  `yaml:"always_show_calendars" json:"always_show_calendars"`

	TimePicker          bool `yaml:"time_picker" json:"time_picker"`
	TimePicker24Hour    bool `yaml:"time_picker_24_hour" json:"time_picker_24_hour"`
	TimePickerSeconds   bool `yaml:"time_picker_seconds" json:"time_picker_seconds"`
	TimePickerIncrement int  `yaml:"time_picker_increment" json:"time_picker_increment"`

	// ShowCustomRangeLabel defaults to true when omitted.
	ShowCustomRangeLabel         *bool  `yaml:"show_custom_range_label,omitempty" json:"show_custom_range_label,omitempty"`
	CustomRangeLabel             string `yaml:"custom_range_label" json:"custom_range_label"`
	ShowRangeLabelOnInput        bool   `yaml:"show_range_label_on_input" json:"show_range_label_on_input"`
	KeepCalendarOpeningWithRange bool   `yaml:"keep_calendar_opening_with_range" json:"keep_calendar_opening_with_range"`
	ShowWeekNumbers              bool   `yaml:"show_week_numbers" json:"show_week_numbers"`

	// Format and DisplayFormat are Go time layouts.
	Format        string `yaml:"format,omitempty" json:"format,omitempty"`
	DisplayFormat string `yaml:"display_format,omitempty" json:"display_format,omitempty"`
	Separator     string `yaml:"separator" json:"separator"`

	Markers MarkersConfig `yaml:"markers,omitempty" json:"markers,omitempty"`
}

// BoundaryConfig limits the selectable range. Min and Max are endpoint
// expressions (see internal/preset).
type BoundaryConfig struct {
	Min           string `yaml:"min,omitempty" json:"min,omitempty"`
	Max           string `yaml:"max,omitempty" json:"max,omitempty"`
	DateLimitDays int    `yaml:"date_limit_days,omitempty" json:"date_limit_days,omitempty"`
	// MaxSpan is a Go duration such as "72h".
	MaxSpan string `yaml:"max_span,omitempty" json:"max_span,omitempty"`
}

// RangeConfig is a pair of endpoint expressions.
type RangeConfig struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// PresetConfig is one named range of the preset list.
type PresetConfig struct {
	Label string `yaml:"label" json:"label"`
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// RuleConfig marks the days matched by an RRULE.
type RuleConfig struct {
	RRule   string `yaml:"rrule" json:"rrule"`
	Class   string `yaml:"class,omitempty" json:"class,omitempty"`
	Tooltip string `yaml:"tooltip,omitempty" json:"tooltip,omitempty"`
}

// CalendarConfig is an ICS feed whose event days are marked.
type CalendarConfig struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	// URL is http(s), file:// or a plain path.
	URL   string `yaml:"url" json:"url"`
	Class string `yaml:"class,omitempty" json:"class,omitempty"`
	// Invalid makes the marked days unselectable.
	Invalid bool `yaml:"invalid,omitempty" json:"invalid,omitempty"`
	// Tooltip shows the event summary on marked days.
	Tooltip bool `yaml:"tooltip,omitempty" json:"tooltip,omitempty"`
}

// RulesConfig feeds the day predicates.
type RulesConfig struct {
	Invalid   []RuleConfig     `yaml:"invalid,omitempty" json:"invalid,omitempty"`
	Custom    []RuleConfig     `yaml:"custom,omitempty" json:"custom,omitempty"`
	Calendars []CalendarConfig `yaml:"calendars,omitempty" json:"calendars,omitempty"`
	// WindowDays is how far around today calendars are expanded.
	WindowDays int `yaml:"window_days,omitempty" json:"window_days,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone all dates are interpreted in.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is the first column of the calendar, any weekday name.
	WeekStart string `yaml:"week_start" json:"week_start"`

	LogLevel string `yaml:"log_level" json:"log_level"`
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	Picker   PickerConfig   `yaml:"picker" json:"picker"`
	Boundary BoundaryConfig `yaml:"boundary" json:"boundary"`
	// Initial defaults to today when omitted.
	Initial *RangeConfig   `yaml:"initial,omitempty" json:"initial,omitempty"`
	Presets []PresetConfig `yaml:"presets" json:"presets"`

	// PresetRefresh is a standard 5-field cron spec. Relative presets are
	// re-resolved on this schedule.
	PresetRefresh string `yaml:"preset_refresh" json:"preset_refresh"`

	Rules RulesConfig `yaml:"rules" json:"rules"`

	// BasicAuth, if non-nil, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen        = "127.0.0.1:8080"
	defaultTimezone      = "UTC"
	defaultWeekStart     = "monday"
	defaultLogLevel      = "info"
	defaultCacheDir      = "./var/ics-cache"
	defaultPresetRefresh = "5 0 * * *"
	defaultSeparator     = " - "
	defaultCustomLabel   = "Custom range"
	defaultWindowDays    = 730
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	cfg := &Config{
		Presets: []PresetConfig{
			{Label: "Today", Start: "today", End: "today"},
			{Label: "Yesterday", Start: "yesterday", End: "yesterday"},
			{Label: "Last 7 Days", Start: "today -6d", End: "today"},
			{Label: "Last 30 Days", Start: "today -29d", End: "today"},
			{Label: "This Month", Start: "month_start", End: "month_end"},
			{Label: "Last Month", Start: "month_start -1m", End: "month_start -1d"},
		},
	}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing values so partially written configs still
// behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	if c.WeekStart == "" {
		c.WeekStart = defaultWeekStart
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.PresetRefresh == "" {
		c.PresetRefresh = defaultPresetRefresh
	}
	if c.Picker.TimePickerIncrement == 0 {
		c.Picker.TimePickerIncrement = 1
	}
	if c.Picker.Separator == "" {
		c.Picker.Separator = defaultSeparator
	}
	if c.Picker.CustomRangeLabel == "" {
		c.Picker.CustomRangeLabel = defaultCustomLabel
	}
	if c.Picker.CloseOnAutoApply == nil {
		c.Picker.CloseOnAutoApply = boolPtr(true)
	}
	if c.Picker.ShowCustomRangeLabel == nil {
		c.Picker.ShowCustomRangeLabel = boolPtr(true)
	}
	if c.Presets == nil {
		c.Presets = []PresetConfig{}
	}
	if c.Rules.WindowDays <= 0 {
		c.Rules.WindowDays = defaultWindowDays
	}
	for i := range c.Rules.Calendars {
		if c.Rules.Calendars[i].ID == "" {
			c.Rules.Calendars[i].ID = fmt.Sprintf("calendar-%d", i+1)
		}
	}
}

func boolPtr(b bool) *bool { return &b }

// Validate reports every problem that would stop the application from
// starting. Endpoint expressions are checked where they are resolved.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if _, err := ParseWeekday(c.WeekStart); err != nil {
		errs = append(errs, fmt.Errorf("week_start: %w", err))
	}
	if _, err := cron.ParseStandard(c.PresetRefresh); err != nil {
		errs = append(errs, fmt.Errorf("preset_refresh: %w", err))
	}
	if inc := c.Picker.TimePickerIncrement; inc < 1 || inc > 60 {
		errs = append(errs, fmt.Errorf("picker.time_picker_increment: %d is outside 1..60", inc))
	}
	if c.Boundary.DateLimitDays < 0 {
		errs = append(errs, errors.New("boundary.date_limit_days: must not be negative"))
	}
	if _, err := c.MaxSpan(); err != nil {
		errs = append(errs, fmt.Errorf("boundary.max_span: %w", err))
	}
	for i, p := range c.Presets {
		if strings.TrimSpace(p.Label) == "" {
			errs = append(errs, fmt.Errorf("presets[%d]: label is empty", i))
		}
	}
	for i, r := range append(append([]RuleConfig(nil), c.Rules.Invalid...), c.Rules.Custom...) {
		if strings.TrimSpace(r.RRule) == "" {
			errs = append(errs, fmt.Errorf("rules[%d]: rrule is empty", i))
		}
	}
	for _, cal := range c.Rules.Calendars {
		if cal.URL == "" {
			errs = append(errs, fmt.Errorf("rules.calendars[%s]: url is empty", cal.ID))
		}
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" {
		errs = append(errs, errors.New("basic_auth: username is empty"))
	}
	return errors.Join(errs...)
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// FirstDay returns the configured first weekday, Monday when invalid.
func (c *Config) FirstDay() time.Weekday {
	wd, err := ParseWeekday(c.WeekStart)
	if err != nil {
		return time.Monday
	}
	return wd
}

// MaxSpan parses Boundary.MaxSpan; empty means no limit.
func (c *Config) MaxSpan() (time.Duration, error) {
	return c.Boundary.Span()
}

// Span parses MaxSpan; empty means no limit.
func (b BoundaryConfig) Span() (time.Duration, error) {
	if strings.TrimSpace(b.MaxSpan) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(b.MaxSpan)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New("must not be negative")
	}
	return d, nil
}

// ParseWeekday accepts full English weekday names and three-letter
// abbreviations.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return time.Monday, fmt.Errorf("unknown weekday %q", s)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is read, normalized and validated.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// caller decides whether an unsaved default is acceptable
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg atomically (temp file + rename) with 0600 permissions,
// creating the parent directory with 0700.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".rangepick-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
