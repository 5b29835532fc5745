package models

import "time"

// Passenger is a booked traveller seen from the boarding desk.
type Passenger struct {
	BookingDetailID int64     `json:"bookingDetailId"`
	Name            string    `json:"name"`
	Boarded         bool      `json:"boarded"`
	ArrivalName     string    `json:"arrivalName"`
	DepartureTime   time.Time `json:"departureTime"`
}

// Trip is an upcoming departure from a location.
type Trip struct {
	ScheduleID    int64     `json:"scheduleId"`
	DepartureTime time.Time `json:"departureTime"`
	ArrivalName   string    `json:"arrivalName"`
}
