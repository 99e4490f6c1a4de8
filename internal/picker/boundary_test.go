package picker

import (
	"errors"
	"testing"
	"time"
)

func TestBoundaryValidate(t *testing.T) {
	t.Parallel()

	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan9 := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		boundary  Boundary
		wantField string
	}{
		{name: "unset", boundary: Boundary{}},
		{name: "ordered", boundary: Boundary{Min: jan1, Max: jan9}},
		{name: "min equals max", boundary: Boundary{Min: jan1, Max: jan1}},
		{name: "min after max", boundary: Boundary{Min: jan9, Max: jan1}, wantField: "boundary.min"},
		{name: "negative day limit", boundary: Boundary{DateLimitDays: -1}, wantField: "boundary.date_limit_days"},
		{name: "negative span", boundary: Boundary{MaxSpan: -time.Hour}, wantField: "boundary.max_span"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.boundary.Validate()
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cfgErr.Field != tc.wantField {
				t.Fatalf("expected field %q, got %q", tc.wantField, cfgErr.Field)
			}
		})
	}
}

func TestBoundaryClampIsWithin(t *testing.T) {
	t.Parallel()

	b := Boundary{
		Min: time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC),
		Max: time.Date(2024, 3, 20, 17, 0, 0, 0, time.UTC),
	}
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30*24; i++ {
		instant := base.Add(time.Duration(i) * time.Hour)
		clamped := b.Clamp(instant)
		if !b.IsWithin(clamped) {
			t.Fatalf("expected clamp(%s) inside boundary, got %s", instant, clamped)
		}
		if b.IsWithin(instant) && !clamped.Equal(instant) {
			t.Fatalf("expected clamp to keep %s, got %s", instant, clamped)
		}
	}

	if got := b.Clamp(base); !got.Equal(b.Min) {
		t.Fatalf("expected min, got %s", got)
	}
	if got := b.Clamp(base.AddDate(0, 1, 0)); !got.Equal(b.Max) {
		t.Fatalf("expected max, got %s", got)
	}
	if got := (Boundary{}).Clamp(base); !got.Equal(base) {
		t.Fatalf("expected unbounded clamp to be identity, got %s", got)
	}
}

func TestEffectiveMaxForEnd(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	max := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		b      Boundary
		want   time.Time
		wantOK bool
	}{
		{name: "unset", b: Boundary{}},
		{name: "max only", b: Boundary{Max: max}, want: max, wantOK: true},
		{name: "day limit tighter", b: Boundary{Max: max, DateLimitDays: 2}, want: time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC), wantOK: true},
		{name: "max tighter", b: Boundary{Max: max, DateLimitDays: 10}, want: max, wantOK: true},
		{name: "span tightest", b: Boundary{Max: max, DateLimitDays: 2, MaxSpan: 6 * time.Hour}, want: start.Add(6 * time.Hour), wantOK: true},
		{name: "span only", b: Boundary{MaxSpan: 48 * time.Hour}, want: start.Add(48 * time.Hour), wantOK: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := tc.b.EffectiveMaxForEnd(start)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got %v", tc.wantOK, ok)
			}
			if ok && !got.Equal(tc.want) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
