package utils

import (
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate parses YYYY-MM-DD in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.UTC)
}

// ParseDateTime accepts RFC3339 or "YYYY-MM-DD HH:MM:SS" (UTC).
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.ParseInLocation(layoutDateTime, s, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(layoutDate)
}

func FormatDateTime(t time.Time) string {
	return t.UTC().Format(layoutDateTime)
}

// RollForward moves arrival forward by whole days until it is after departure.
func RollForward(departure, arrival time.Time) time.Time {
	for !arrival.After(departure) {
		arrival = arrival.AddDate(0, 0, 1)
	}
	return arrival
}
