package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortEvents(t *testing.T) {
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	events := []CalendarEvent{
		{ID: "c", Start: base.Add(time.Hour)},
		{ID: "b", Start: base},
		{ID: "a", Start: base},
	}
	SortEvents(events)

	// Start ascending, id as tiebreak.
	assert.Equal(t, []string{"a", "b", "c"}, []string{events[0].ID, events[1].ID, events[2].ID})
}

func TestSortEvents_Empty(t *testing.T) {
	SortEvents(nil)
	SortEvents([]CalendarEvent{})
}
