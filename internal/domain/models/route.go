package models

import (
	"fmt"
	"strings"
	"time"
)

// TransportMode tags a route edge.
type TransportMode string

const (
	ModeBus      TransportMode = "bus"
	ModeTrain    TransportMode = "train"
	ModeAirplane TransportMode = "airplane"
	ModeShip     TransportMode = "ship"
)

// ParseTransportMode accepts only the four supported modes (case-insensitive).
func ParseTransportMode(s string) (TransportMode, error) {
	switch m := TransportMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeBus, ModeTrain, ModeAirplane, ModeShip:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported transport mode %q", s)
	}
}

// RouteEdge is a directed connection between two locations. Several edges
// may join the same ordered pair.
type RouteEdge struct {
	ID        int64         `json:"id"`
	Departure Location      `json:"departure"`
	Arrival   Location      `json:"arrival"`
	Mode      TransportMode `json:"mode"`
	CompanyID int64         `json:"companyId,omitempty"`
	Schedules []Schedule    `json:"schedules,omitempty"`
}

// Schedule is a timed, priced instance of a RouteEdge.
type Schedule struct {
	ID            int64         `json:"id"`
	RouteID       int64         `json:"routeId"`
	DepartureTime time.Time     `json:"departureTime"`
	ArrivalTime   time.Time     `json:"arrivalTime"`
	Price         int64         `json:"price"`
	Frequency     time.Duration `json:"frequency"`
	ValidFrom     time.Time     `json:"validFrom"`
	ValidUntil    time.Time     `json:"validUntil"`
}

// Duration is arrival minus departure. ok is false when the arrival is not
// after the departure.
func (s Schedule) Duration() (d time.Duration, ok bool) {
	if !s.ArrivalTime.After(s.DepartureTime) {
		return 0, false
	}
	return s.ArrivalTime.Sub(s.DepartureTime), true
}

// Hours is Duration expressed in hours; zero for anomalous schedules.
func (s Schedule) Hours() float64 {
	d, ok := s.Duration()
	if !ok {
		return 0
	}
	return d.Hours()
}

// InWindow reports whether the departure date lies inside the inclusive
// validity window. Zero bounds are open.
func (s Schedule) InWindow() bool {
	day := dateOnly(s.DepartureTime)
	if !s.ValidFrom.IsZero() && day.Before(dateOnly(s.ValidFrom)) {
		return false
	}
	if !s.ValidUntil.IsZero() && day.After(dateOnly(s.ValidUntil)) {
		return false
	}
	return true
}

// Usable combines the duration and validity checks.
func (s Schedule) Usable() bool {
	_, ok := s.Duration()
	return ok && s.InWindow()
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
