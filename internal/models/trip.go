package models

import (
	"regexp"
	"strconv"
	"time"
)

var (
	durationPattern = regexp.MustCompile(`(\d+)`)
	costPattern     = regexp.MustCompile(`([0-9.]+)`)
)

// TripHistory is a page of the current user's trips.
type TripHistory struct {
	Count int    `json:"count"`
	Trips []Trip `json:"trips"`
}

// Trip is a single completed rental.
// Duration and Cost are display strings such as "12 minutes" and "12.5 kr".
type Trip struct {
	ID        string `json:"id"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Cost      string `json:"cost,omitempty"`
	Scooter   string `json:"scooter,omitempty"`
}

// StartedAt parses StartTime as an RFC 3339 timestamp.
func (t Trip) StartedAt() (time.Time, bool) {
	started, err := time.Parse(time.RFC3339, t.StartTime)
	if err != nil {
		return time.Time{}, false
	}
	return started, true
}

// DurationMinutes extracts the leading whole number of minutes from Duration.
func (t Trip) DurationMinutes() (int, bool) {
	m := durationPattern.FindStringSubmatch(t.Duration)
	if m == nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return minutes, true
}

// CostValue extracts the numeric amount from Cost.
func (t Trip) CostValue() (float64, bool) {
	m := costPattern.FindStringSubmatch(t.Cost)
	if m == nil {
		return 0, false
	}
	cost, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return cost, true
}
