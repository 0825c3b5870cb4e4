package entity

import (
	"slices"
	"time"
)

// DayLayout is the calendar day key format.
const DayLayout = "2006-01-02"

// EventPhase classifies a calendar day relative to today.
type EventPhase string

const (
	EventPhaseOngoing  EventPhase = "ongoing"
	EventPhaseUpcoming EventPhase = "upcoming"
	EventPhasePast     EventPhase = "past"
)

// DayKey returns the UTC calendar day of t.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// EventDays returns the distinct days that have at least one event, in ascending order.
func EventDays(posts []Post) []string {
	days := make([]string, 0)
	for _, post := range posts {
		if !post.IsEvent || post.EventDate == nil {
			continue
		}
		day := DayKey(*post.EventDate)
		if !slices.Contains(days, day) {
			days = append(days, day)
		}
	}
	slices.Sort(days)

	return days
}

// EventsOn returns the event posts scheduled on the given day, in storage order.
func EventsOn(posts []Post, day string) []Post {
	events := make([]Post, 0)
	for _, post := range posts {
		if post.IsEvent && post.EventDate != nil && DayKey(*post.EventDate) == day {
			events = append(events, post.Clone())
		}
	}

	return events
}

// PhaseOf labels day as ongoing, upcoming or past relative to today. Both are DayLayout keys.
func PhaseOf(day, today string) EventPhase {
	switch {
	case day == today:
		return EventPhaseOngoing
	case day > today:
		return EventPhaseUpcoming
	default:
		return EventPhasePast
	}
}
