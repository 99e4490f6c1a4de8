package picker

import "time"

// EventKind names a notification for the host.
type EventKind string

const (
	EventStartChanged   EventKind = "start-changed"
	EventEndChanged     EventKind = "end-changed"
	EventRangeConfirmed EventKind = "range-confirmed"
	EventPresetClicked  EventKind = "preset-clicked"
	EventDatesUpdated   EventKind = "dates-updated"
	EventRequestClose   EventKind = "request-close"
)

// Event is emitted by an input. Zero Start/End mean "no date" (Clear).
type Event struct {
	Kind  EventKind
	Label string
	Start time.Time
	End   time.Time
}

// eventLog keeps at most one event per kind, ordered by first emission;
// a repeated kind overwrites the earlier payload.
type eventLog struct {
	events []Event
}

func (l *eventLog) emit(e Event) {
	for i := range l.events {
		if l.events[i].Kind == e.Kind {
			l.events[i] = e
			return
		}
	}
	l.events = append(l.events, e)
}

func (l *eventLog) list() []Event {
	if len(l.events) == 0 {
		return nil
	}
	return append([]Event(nil), l.events...)
}
