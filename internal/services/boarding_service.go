package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intdb "travelwizards/internal/db"
	"travelwizards/internal/domain"
	"travelwizards/internal/domain/models"
	"travelwizards/internal/repositories"
	"travelwizards/internal/utils"
)

const (
	TripWindow      = 24 * time.Hour
	PassengerWindow = 7 * 24 * time.Hour
)

// BoardingService backs the boarding agent desk at one location.
type BoardingService struct {
	DB            *sql.DB
	Dialect       intdb.Dialect
	PassengerRepo repositories.PassengerRepository
	Now           func() time.Time
}

func NewBoardingService(conn *sql.DB, d intdb.Dialect) BoardingService {
	return BoardingService{
		DB:            conn,
		Dialect:       d,
		PassengerRepo: repositories.PassengerRepository{DB: conn, Dialect: d},
	}
}

func (s BoardingService) db() (*sql.DB, intdb.Dialect) { return resolveDB(s.DB, s.Dialect) }

func (s BoardingService) repo() repositories.PassengerRepository {
	conn, d := s.db()
	r := s.PassengerRepo
	if r.DB == nil {
		r.DB = conn
	}
	r.Dialect = d
	return r
}

func (s BoardingService) now() time.Time {
	t := utils.NowUTC()
	if s.Now != nil {
		t = s.Now().UTC()
	}
	return t.Truncate(time.Second)
}

// UpcomingTrips lists departures from location over the next 24 hours.
func (s BoardingService) UpcomingTrips(ctx context.Context, location string) ([]models.Trip, error) {
	location = utils.NormalizeSpace(location)
	if location == "" {
		return nil, domain.ValidationError{Field: "location", Msg: "location is required"}
	}
	now := s.now()
	return s.repo().UpcomingTrips(ctx, location, now, now.Add(TripWindow))
}

// Passengers lists booked passengers departing from location over the next
// week.
func (s BoardingService) Passengers(ctx context.Context, location string) ([]models.Passenger, error) {
	location = utils.NormalizeSpace(location)
	if location == "" {
		return nil, domain.ValidationError{Field: "location", Msg: "location is required"}
	}
	now := s.now()
	return s.repo().Passengers(ctx, location, now, now.Add(PassengerWindow))
}

// ToggleBoarded flips the boarded flag of one booking detail and returns the
// new value.
func (s BoardingService) ToggleBoarded(ctx context.Context, bookingDetailID int64) (bool, error) {
	if bookingDetailID <= 0 {
		return false, domain.ValidationError{Field: "booking_detail_id", Msg: "booking detail id is required"}
	}
	conn, d := s.db()
	repo := s.repo()
	var boarded bool
	err := intdb.WithTx(ctx, conn, d.TxOptions(), func(tx *sql.Tx) error {
		b, ok, err := repo.ToggleBoarded(ctx, tx, bookingDetailID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError{Resource: "booking detail"}
		}
		boarded = b
		return nil
	})
	if err != nil {
		return false, wrapTx("toggle_boarded", err)
	}
	utils.LogEvent(domain.RequestIDFromContext(ctx), "boarding", "toggle",
		fmt.Sprintf("booking_detail_id=%d boarded=%t", bookingDetailID, boarded))
	return boarded, nil
}
