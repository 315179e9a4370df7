package calendar

import (
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

// NormalizeEvent converts a Google Calendar event to the engine's
// CalendarEvent. A missing summary becomes the untitled placeholder;
// date-only start/end fields mark the event all-day.
func NormalizeEvent(event *gcal.Event, calendarID string) domain.CalendarEvent {
	summary := event.Summary
	if summary == "" {
		summary = domain.UntitledEvent
	}

	start, allDay := parseEventTime(event.Start)
	end, _ := parseEventTime(event.End)

	return domain.CalendarEvent{
		ID:          event.Id,
		Summary:     summary,
		Description: event.Description,
		Location:    event.Location,
		Start:       start,
		End:         end,
		AllDay:      allDay,
		CalendarID:  calendarID,
		HTMLLink:    event.HtmlLink,
		Status:      normalizeStatus(event.Status),
	}
}

// parseEventTime extracts an instant from an EventDateTime. The Date
// field (all-day events) is interpreted as local midnight, matching
// the local-day window semantics of the fetcher.
func parseEventTime(edt *gcal.EventDateTime) (t time.Time, allDay bool) {
	if edt == nil {
		return time.Time{}, false
	}
	if edt.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, false
	}
	if edt.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", edt.Date, time.Local)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

func normalizeStatus(status string) domain.EventStatus {
	switch status {
	case "tentative":
		return domain.StatusTentative
	case "cancelled":
		return domain.StatusCancelled
	default:
		return domain.StatusConfirmed
	}
}
