package picker

import (
	"slices"
	"testing"
	"time"

	"rangepick/internal/model"
)

func TestRefreshPresetsClampsAndDrops(t *testing.T) {
	t.Parallel()

	o := testOptions()
	raw := []RawPreset{
		{Label: "Last 7 Days", Start: ymd("2024-06-09"), End: model.EndOfDay(ymd("2024-06-15"))},
		{Label: "Next Week", Start: ymd("2024-06-20"), End: model.EndOfDay(ymd("2024-06-26"))},
		{Label: "Last Month", Start: ymd("2024-05-01"), End: model.EndOfDay(ymd("2024-05-31"))},
		{Label: "Last 7 Days", Start: ymd("2024-06-01"), End: ymd("2024-06-02")},
		{Label: "", Start: ymd("2024-06-01"), End: ymd("2024-06-02")},
	}
	b := Boundary{Min: ymd("2024-06-01"), Max: ymd("2024-06-13")}

	cat := RefreshPresets(raw, b, &o)
	if got := cat.Labels(); !slices.Equal(got, []string{"Last 7 Days", "Custom range"}) {
		t.Fatalf("unexpected labels %v", got)
	}
	p, ok := cat.Lookup("Last 7 Days")
	if !ok {
		t.Fatal("expected Last 7 Days in the catalogue")
	}
	if !p.Range.End.Equal(ymd("2024-06-13")) {
		t.Fatalf("expected end clamped to max, got %s", p.Range.End)
	}
	if !p.Range.Start.Equal(ymd("2024-06-09")) || !p.Eligible {
		t.Fatalf("expected untouched eligible start, got %+v", p)
	}
	if !cat.IsCustomLabel("Custom range") || cat.IsCustomLabel("Last 7 Days") {
		t.Fatal("expected only the trailing entry to be custom")
	}
}

func TestRefreshPresetsEligibility(t *testing.T) {
	t.Parallel()

	o := testOptions()
	floor := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ceiling := time.Date(2024, 6, 13, 10, 0, 0, 0, time.UTC)
	raw := []RawPreset{
		{Label: "Early", Start: ymd("2024-05-31"), End: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)},
		{Label: "Late", Start: time.Date(2024, 6, 13, 18, 0, 0, 0, time.UTC), End: ymd("2024-06-14")},
		{Label: "Straddling", Start: ymd("2024-05-31"), End: ymd("2024-06-05")},
	}

	cat := RefreshPresets(raw, Boundary{Min: floor, Max: ceiling}, &o)
	tests := []struct {
		label string
		want  bool
	}{
		{label: "Early", want: false},
		{label: "Late", want: false},
		{label: "Straddling", want: true},
	}
	for _, tc := range tests {
		p, ok := cat.Lookup(tc.label)
		if !ok {
			t.Fatalf("expected %q kept in the catalogue", tc.label)
		}
		if p.Eligible != tc.want {
			t.Fatalf("%s: expected eligible=%v, got %v", tc.label, tc.want, p.Eligible)
		}
	}

	straddling, _ := cat.Lookup("Straddling")
	if !straddling.Range.Start.Equal(floor) {
		t.Fatalf("expected start clamped to min, got %s", straddling.Range.Start)
	}
}

func TestRefreshPresetsMaxSpan(t *testing.T) {
	t.Parallel()

	o := testOptions()
	raw := []RawPreset{{Label: "First ten", Start: ymd("2024-06-01"), End: model.EndOfDay(ymd("2024-06-10"))}}

	cat := RefreshPresets(raw, Boundary{MaxSpan: 48 * time.Hour}, &o)
	p, _ := cat.Lookup("First ten")
	if !p.Range.End.Equal(ymd("2024-06-03")) {
		t.Fatalf("expected end two days after start, got %s", p.Range.End)
	}
}

func TestRefreshPresetsWithoutEntries(t *testing.T) {
	t.Parallel()

	o := testOptions()
	if cat := RefreshPresets(nil, Boundary{}, &o); len(cat.Presets) != 0 {
		t.Fatalf("expected empty catalogue, got %v", cat.Labels())
	}

	o.ShowCustomRangeLabel = false
	raw := []RawPreset{{Label: "Today", Start: ymd("2024-06-15"), End: model.EndOfDay(ymd("2024-06-15"))}}
	if got := RefreshPresets(raw, Boundary{}, &o).Labels(); !slices.Equal(got, []string{"Today"}) {
		t.Fatalf("expected no custom entry, got %v", got)
	}
}

func TestCatalogMatchSelection(t *testing.T) {
	t.Parallel()

	o := testOptions()
	raw := []RawPreset{
		{Label: "Today", Start: ymd("2024-06-15"), End: model.EndOfDay(ymd("2024-06-15"))},
		{Label: "Also today", Start: ymd("2024-06-15"), End: model.EndOfDay(ymd("2024-06-15"))},
		{Label: "Yesterday", Start: ymd("2024-06-14"), End: model.EndOfDay(ymd("2024-06-14"))},
	}
	cat := RefreshPresets(raw, Boundary{}, &o)

	tests := []struct {
		name   string
		rng    model.DateRange
		opts   func(*Options)
		want   string
		wantOK bool
	}{
		{
			name:   "first match wins",
			rng:    model.NewRange(ymd("2024-06-15").Add(3*time.Hour), model.EndOfDay(ymd("2024-06-15"))),
			want:   "Today",
			wantOK: true,
		},
		{
			name:   "day granularity",
			rng:    model.NewRange(ymd("2024-06-14"), ymd("2024-06-14")),
			want:   "Yesterday",
			wantOK: true,
		},
		{
			name: "minute granularity with time picker",
			rng:  model.NewRange(ymd("2024-06-14"), ymd("2024-06-14")),
			opts: func(o *Options) { o.TimePicker = true },
		},
		{
			name: "open range",
			rng:  model.OpenRange(ymd("2024-06-15")),
		},
		{
			name: "no preset",
			rng:  model.NewRange(ymd("2024-06-01"), ymd("2024-06-03")),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			opts := testOptions()
			if tc.opts != nil {
				tc.opts(&opts)
			}
			got, ok := cat.MatchSelection(tc.rng, &opts)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("expected %q/%v, got %q/%v", tc.want, tc.wantOK, got, ok)
			}
		})
	}
}
