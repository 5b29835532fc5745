package handlers

import (
	"context"
	"database/sql"

	intdb "travelwizards/internal/db"
	"travelwizards/internal/domain/models"
	"travelwizards/internal/pathfinder"
)

type Reservations interface {
	Reserve(ctx context.Context, it models.Itinerary, passengerFullName string) (models.BookingReference, error)
	Cancel(ctx context.Context, it models.Itinerary, firstName, lastName string) (models.CancelResult, error)
	ListReservations(ctx context.Context, firstName, lastName string) ([]models.Reservation, error)
}

type Catalog interface {
	ListLocations(ctx context.Context) ([]models.Location, error)
	AddService(ctx context.Context, in models.NewService) (models.RouteEdge, error)
	ListServices(ctx context.Context, location string) ([]models.ServiceListing, error)
	UpdatePrice(ctx context.Context, scheduleID, price int64) (models.Schedule, error)
	DeleteSchedule(ctx context.Context, scheduleID int64) error
	DeleteSchedules(ctx context.Context, ids []int64) (int, error)
}

type Boarding interface {
	UpcomingTrips(ctx context.Context, location string) ([]models.Trip, error)
	Passengers(ctx context.Context, location string) ([]models.Passenger, error)
	ToggleBoarded(ctx context.Context, bookingDetailID int64) (bool, error)
}

type Documents interface {
	GenerateETicket(ctx context.Context, bookingID int64) ([]byte, string, error)
	GenerateInvoice(ctx context.Context, bookingID int64) ([]byte, string, error)
}

type Accounts interface {
	CompanyName(ctx context.Context, companyID int64) (string, error)
}

// Handler holds the collaborators behind the JSON API.
type Handler struct {
	DB           *sql.DB
	Dialect      intdb.Dialect
	Search       *pathfinder.Enumerator
	Reservations Reservations
	Catalog      Catalog
	Boarding     Boarding
	Documents    Documents
	Accounts     Accounts
}
