package models

import "time"

// Booking is a passenger-level reservation record. A booking without
// details must not persist.
type Booking struct {
	ID          int64     `json:"id"`
	Reference   string    `json:"reference"`
	UserID      int64     `json:"userId"`
	CompanyID   int64     `json:"companyId"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	PhoneNumber string    `json:"phoneNumber"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BookingDetail links a booking to one reserved schedule.
type BookingDetail struct {
	ID         int64 `json:"id"`
	BookingID  int64 `json:"bookingId"`
	ScheduleID int64 `json:"scheduleId"`
	Boarded    bool  `json:"boarded"`
}

// BookingReference is returned by a successful reservation.
type BookingReference struct {
	BookingID   int64   `json:"bookingId"`
	Reference   string  `json:"reference"`
	ScheduleIDs []int64 `json:"scheduleIds"`
}

// CancelResult describes what a cancellation removed.
type CancelResult struct {
	BookingID      int64 `json:"bookingId"`
	DetailsRemoved int   `json:"detailsRemoved"`
	BookingDeleted bool  `json:"bookingDeleted"`
}

// Reservation is one booked leg as listed for a passenger.
type Reservation struct {
	BookingID     int64     `json:"bookingId"`
	Reference     string    `json:"reference"`
	ScheduleID    int64     `json:"scheduleId"`
	DepartureName string    `json:"departureName"`
	ArrivalName   string    `json:"arrivalName"`
	DepartureTime time.Time `json:"departureTime"`
	ArrivalTime   time.Time `json:"arrivalTime"`
	Price         int64     `json:"price"`
	Hours         float64   `json:"hours"`
	Boarded       bool      `json:"boarded"`
}

// BookingTicket is everything the e-ticket renderer prints.
type BookingTicket struct {
	Booking Booking       `json:"booking"`
	Legs    []Reservation `json:"legs"`
}
