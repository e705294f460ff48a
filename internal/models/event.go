package models

import (
	"fmt"
	"strconv"
	"strings"
)

// EventColor is one of the fixed planner palette colors
type EventColor string

const (
	EventColorCyan   EventColor = "cyan"
	EventColorIndigo EventColor = "indigo"
	EventColorTeal   EventColor = "teal"
	EventColorRose   EventColor = "rose"
)

const (
	// PlannerWindowStart is the first hour shown on the daily planner
	PlannerWindowStart = 6
	// PlannerWindowEnd is the last hour shown on the daily planner
	PlannerWindowEnd = 22
)

// CalendarEvent is a scheduled block on the daily planner.
// Overlapping events are allowed; only the time window and color are
// validated.
type CalendarEvent struct {
	ID       int64      `json:"id"`
	Time     string     `json:"time"`     // "HH:MM", 24-hour
	Duration float64    `json:"duration"` // hours, may be fractional
	Title    string     `json:"title"`
	Color    EventColor `json:"color"`
}

// ParseEventTime parses an "HH:MM" value and validates it falls within
// the planner's displayed window
func ParseEventTime(value string) (hour, minute int, err error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hour in %q: %w", value, err)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minute in %q: %w", value, err)
	}
	if minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	if hour < PlannerWindowStart || hour > PlannerWindowEnd || (hour == PlannerWindowEnd && minute > 0) {
		return 0, 0, fmt.Errorf("time %q outside planner window %02d:00-%02d:00", value, PlannerWindowStart, PlannerWindowEnd)
	}
	return hour, minute, nil
}
