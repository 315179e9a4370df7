package domain

import (
	"sort"
	"time"
)

// UntitledEvent is the placeholder summary for events without a title.
const UntitledEvent = "(no title)"

// EventStatus is the confirmation status of a calendar event.
type EventStatus string

const (
	StatusConfirmed EventStatus = "confirmed"
	StatusTentative EventStatus = "tentative"
	StatusCancelled EventStatus = "cancelled"
)

// CalendarEvent is a normalised calendar event. Produced by the
// calendar connector; read-only to consumers.
type CalendarEvent struct {
	// ID is the provider's event id.
	ID string `json:"id"`
	// Summary is the event title, never empty (UntitledEvent placeholder).
	Summary string `json:"summary"`
	// Description is the event body, if any.
	Description string `json:"description,omitempty"`
	// Location is the event location, if any.
	Location string `json:"location,omitempty"`
	// Start is the event start instant. For all-day events this is
	// midnight of the first day in the event's zone.
	Start time.Time `json:"start"`
	// End is the event end instant (exclusive for all-day events).
	End time.Time `json:"end"`
	// AllDay is true for date-only events with no time of day.
	AllDay bool `json:"all_day"`
	// CalendarID identifies the calendar the event belongs to.
	CalendarID string `json:"calendar_id"`
	// HTMLLink is the provider's web URL for the event, if any.
	HTMLLink string `json:"html_link,omitempty"`
	// Status is confirmed, tentative, or cancelled.
	Status EventStatus `json:"status"`
}

// SortEvents orders events by start instant ascending, breaking ties by
// id so the order is deterministic.
func SortEvents(events []CalendarEvent) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID < events[j].ID
	})
}
