package web

import (
	"errors"
	"fmt"
	"time"

	"rangepick/internal/config"
	"rangepick/internal/model"
	"rangepick/internal/picker"
)

// viewDTO is the JSON shape of GET /api/picker.
type viewDTO struct {
	Phase         string      `json:"phase"`
	Start         time.Time   `json:"start"`
	End           *time.Time  `json:"end,omitempty"`
	Label         string      `json:"label"`
	ChosenRange   string      `json:"chosen_range,omitempty"`
	Shown         bool        `json:"shown"`
	ShowCalendars bool        `json:"show_calendars"`
	Timezone      string      `json:"timezone"`
	Left          calendarDTO `json:"left"`
	Right         calendarDTO `json:"right"`
	LeftTime      *timeDTO    `json:"left_time,omitempty"`
	RightTime     *timeDTO    `json:"right_time,omitempty"`
	Presets       []presetDTO `json:"presets"`
}

type calendarDTO struct {
	Month    int         `json:"month"`
	Year     int         `json:"year"`
	Weeks    []weekDTO   `json:"weeks"`
	Dropdown dropdownDTO `json:"dropdown"`
}

type weekDTO struct {
	Number int      `json:"number,omitempty"`
	Empty  bool     `json:"empty,omitempty"`
	Days   []dayDTO `json:"days"`
}

type dayDTO struct {
	Date      string   `json:"date"`
	Classes   string   `json:"classes"`
	Tags      []string `json:"tags"`
	Available bool     `json:"available"`
	Tooltip   string   `json:"tooltip,omitempty"`
}

type dropdownDTO struct {
	MinYear   int  `json:"min_year"`
	MaxYear   int  `json:"max_year"`
	InMinYear bool `json:"in_min_year"`
	InMaxYear bool `json:"in_max_year"`
}

type timeDTO struct {
	Hours           []int `json:"hours"`
	Minutes         []int `json:"minutes"`
	Seconds         []int `json:"seconds,omitempty"`
	Hour            int   `json:"hour"`
	Minute          int   `json:"minute"`
	Second          int   `json:"second"`
	PM              bool  `json:"pm"`
	DisabledHours   []int `json:"disabled_hours,omitempty"`
	DisabledMinutes []int `json:"disabled_minutes,omitempty"`
	DisabledSeconds []int `json:"disabled_seconds,omitempty"`
	AMDisabled      bool  `json:"am_disabled,omitempty"`
	PMDisabled      bool  `json:"pm_disabled,omitempty"`
}

type presetDTO struct {
	Label    string     `json:"label"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
	Eligible bool       `json:"eligible"`
	Custom   bool       `json:"custom,omitempty"`
}

type eventDTO struct {
	Kind  string     `json:"kind"`
	Label string     `json:"label,omitempty"`
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

type eventsResponse struct {
	Events []eventDTO `json:"events"`
}

type dispatchResponse struct {
	View   viewDTO    `json:"view"`
	Events []eventDTO `json:"events"`
}

type refreshResponse struct {
	View  viewDTO `json:"view"`
	Error string  `json:"error,omitempty"`
}

func toViewDTO(v picker.View, loc *time.Location) viewDTO {
	out := viewDTO{
		Phase:         v.Phase.String(),
		Start:         v.Range.Start,
		Label:         v.Label,
		ChosenRange:   v.ChosenRange,
		Shown:         v.Shown,
		ShowCalendars: v.ShowCalendars,
		Timezone:      loc.String(),
		Left:          toCalendarDTO(v.Left, v.Markers),
		Right:         toCalendarDTO(v.Right, v.Markers),
		LeftTime:      toTimeDTO(v.LeftTime),
		RightTime:     toTimeDTO(v.RightTime),
		Presets:       make([]presetDTO, 0, len(v.Presets)),
	}
	if v.Range.HasEnd {
		out.End = timePtr(v.Range.End)
	}
	for _, p := range v.Presets {
		dto := presetDTO{Label: p.Label, Eligible: p.Eligible, Custom: p.Custom}
		if !p.Custom {
			dto.Start, dto.End = timePtr(p.Range.Start), timePtr(p.Range.End)
		}
		out.Presets = append(out.Presets, dto)
	}
	return out
}

func toCalendarDTO(c picker.Calendar, markers picker.Markers) calendarDTO {
	out := calendarDTO{
		Month: int(c.Grid.Anchor.Month()),
		Year:  c.Grid.Anchor.Year(),
		Weeks: make([]weekDTO, 0, picker.GridRows),
		Dropdown: dropdownDTO{
			MinYear:   c.Dropdown.MinYear,
			MaxYear:   c.Dropdown.MaxYear,
			InMinYear: c.Dropdown.InMinYear,
			InMaxYear: c.Dropdown.InMaxYear,
		},
	}
	for r := 0; r < picker.GridRows; r++ {
		week := weekDTO{Number: c.WeekNumbers[r], Empty: c.EmptyRows[r], Days: make([]dayDTO, 0, picker.GridCols)}
		for col := 0; col < picker.GridCols; col++ {
			cell := c.Cells[r][col]
			week.Days = append(week.Days, dayDTO{
				Date:      model.DayKey(cell.Date),
				Classes:   cell.Classes(markers),
				Tags:      cell.Tags.Names(markers),
				Available: cell.Available(),
				Tooltip:   cell.Tooltip,
			})
		}
		out.Weeks = append(out.Weeks, week)
	}
	return out
}

func toTimeDTO(ts *picker.TimeSelection) *timeDTO {
	if ts == nil {
		return nil
	}
	return &timeDTO{
		Hours:           ts.Hours,
		Minutes:         ts.Minutes,
		Seconds:         ts.Seconds,
		Hour:            ts.Hour,
		Minute:          ts.Minute,
		Second:          ts.Second,
		PM:              ts.PM,
		DisabledHours:   ts.DisabledHours,
		DisabledMinutes: ts.DisabledMinutes,
		DisabledSeconds: ts.DisabledSeconds,
		AMDisabled:      ts.AMDisabled,
		PMDisabled:      ts.PMDisabled,
	}
}

func toEventDTOs(events []picker.Event) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, e := range events {
		dto := eventDTO{Kind: string(e.Kind), Label: e.Label}
		if !e.Start.IsZero() {
			dto.Start = timePtr(e.Start)
		}
		if !e.End.IsZero() {
			dto.End = timePtr(e.End)
		}
		out = append(out, dto)
	}
	return out
}

func timePtr(t time.Time) *time.Time { return &t }

func inputName(in picker.Input) string {
	return fmt.Sprintf("%T", in)
}

type sideRequest struct {
	Side string `json:"side"`
}

// side defaults to left.
func (r sideRequest) side() (model.Side, error) {
	if r.Side == "" {
		return model.SideLeft, nil
	}
	return model.ParseSide(r.Side)
}

// clickRequest addresses a day by grid position or by date.
type clickRequest struct {
	Side string `json:"side"`
	Row  *int   `json:"row,omitempty"`
	Col  *int   `json:"col,omitempty"`
	Date string `json:"date,omitempty"`
}

func (r clickRequest) input(loc *time.Location) (picker.Input, error) {
	side, err := sideRequest{Side: r.Side}.side()
	if err != nil {
		return nil, err
	}
	if r.Date != "" {
		d, err := time.ParseInLocation(model.DayLayout, r.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("date: %w", err)
		}
		return picker.ClickDay{Side: side, Date: d}, nil
	}
	if r.Row == nil || r.Col == nil {
		return nil, errors.New("either date or row and col are required")
	}
	return picker.ClickDate{Side: side, Row: *r.Row, Col: *r.Col}, nil
}

type monthYearRequest struct {
	Side  string `json:"side"`
	Month int    `json:"month"`
	Year  int    `json:"year"`
}

func (r monthYearRequest) input() (picker.Input, error) {
	side, err := sideRequest{Side: r.Side}.side()
	if err != nil {
		return nil, err
	}
	if r.Month < 1 || r.Month > 12 {
		return nil, fmt.Errorf("month %d is outside 1..12", r.Month)
	}
	if r.Year < 1 {
		return nil, errors.New("year is required")
	}
	return picker.ChangeMonthYear{Side: side, Month: time.Month(r.Month), Year: r.Year}, nil
}

type timeRequest struct {
	Side   string `json:"side"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Second int    `json:"second"`
	PM     bool   `json:"pm"`
}

func (r timeRequest) input() (picker.Input, error) {
	side, err := sideRequest{Side: r.Side}.side()
	if err != nil {
		return nil, err
	}
	return picker.ChangeTime{Side: side, Hour: r.Hour, Minute: r.Minute, Second: r.Second, PM: r.PM}, nil
}

type presetRequest struct {
	Label string `json:"label"`
}

// datesRequest sets endpoints from expressions ("2024-06-01", "today -3d").
type datesRequest struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type resolver interface {
	ResolveTime(expr string, end bool) (time.Time, error)
}

func (r datesRequest) inputs(res resolver) ([]picker.Input, error) {
	var out []picker.Input
	if r.Start != "" {
		t, err := res.ResolveTime(r.Start, false)
		if err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
		out = append(out, picker.SetStartDate{Date: t})
	}
	if r.End != "" {
		t, err := res.ResolveTime(r.End, true)
		if err != nil {
			return nil, fmt.Errorf("end: %w", err)
		}
		out = append(out, picker.SetEndDate{Date: t})
	}
	if len(out) == 0 {
		return nil, errors.New("start or end is required")
	}
	return out, nil
}

// boundaryRequest mirrors the boundary section of the config file.
type boundaryRequest config.BoundaryConfig
