package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intdb "travelwizards/internal/db"
	"travelwizards/internal/domain/models"
)

// PassengerRepository serves the boarding desk.
type PassengerRepository struct {
	DB      *sql.DB
	Dialect intdb.Dialect
}

func (r PassengerRepository) db() (*sql.DB, intdb.Dialect) { return resolve(r.DB, r.Dialect) }

// UpcomingTrips lists departures from location within [from, to].
func (r PassengerRepository) UpcomingTrips(ctx context.Context, location string, from, to time.Time) ([]models.Trip, error) {
	conn, d := r.db()
	if conn == nil {
		return nil, fmt.Errorf("db not available")
	}
	rows, err := conn.QueryContext(ctx, d.Rebind(`
		SELECT rs.id, rs.departure_time, l2.full_name
		FROM route_schedules rs
		JOIN travel_routes tr ON tr.id = rs.route_id
		JOIN locations l1 ON l1.id = tr.departure_location_id
		JOIN locations l2 ON l2.id = tr.arrival_location_id
		WHERE l1.full_name = ? AND rs.departure_time >= ? AND rs.departure_time <= ?
		ORDER BY rs.departure_time, rs.id`), strings.TrimSpace(location), utc(from), utc(to))
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		var t models.Trip
		if err := rows.Scan(&t.ScheduleID, &t.DepartureTime, &t.ArrivalName); err != nil {
			return nil, err
		}
		t.DepartureTime = utc(t.DepartureTime)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Passengers lists booked passengers departing from location within [from, to].
func (r PassengerRepository) Passengers(ctx context.Context, location string, from, to time.Time) ([]models.Passenger, error) {
	conn, d := r.db()
	if conn == nil {
		return nil, fmt.Errorf("db not available")
	}
	rows, err := conn.QueryContext(ctx, d.Rebind(`
		SELECT bd.id, b.first_name, b.last_name, bd.boarded, l2.full_name, rs.departure_time
		FROM booking_details bd
		JOIN bookings b ON b.id = bd.booking_id
		JOIN route_schedules rs ON rs.id = bd.schedule_id
		JOIN travel_routes tr ON tr.id = rs.route_id
		JOIN locations l1 ON l1.id = tr.departure_location_id
		JOIN locations l2 ON l2.id = tr.arrival_location_id
		WHERE l1.full_name = ? AND rs.departure_time >= ? AND rs.departure_time <= ?
		ORDER BY rs.departure_time, bd.id`), strings.TrimSpace(location), utc(from), utc(to))
	if err != nil {
		return nil, fmt.Errorf("list passengers: %w", err)
	}
	defer rows.Close()

	out := []models.Passenger{}
	for rows.Next() {
		var (
			p           models.Passenger
			first, last string
		)
		if err := rows.Scan(&p.BookingDetailID, &first, &last, &p.Boarded, &p.ArrivalName, &p.DepartureTime); err != nil {
			return nil, err
		}
		p.Name = strings.TrimSpace(first + " " + last)
		p.DepartureTime = utc(p.DepartureTime)
		out = append(out, p)
	}
	return out, rows.Err()
}

// ToggleBoarded flips the boarded flag inside q and returns the new value.
// ok is false when the booking detail does not exist.
func (r PassengerRepository) ToggleBoarded(ctx context.Context, q intdb.Querier, detailID int64) (boarded, ok bool, err error) {
	_, d := r.db()
	res, err := q.ExecContext(ctx, d.Rebind(`UPDATE booking_details SET boarded = NOT boarded WHERE id = ?`), detailID)
	if err != nil {
		return false, false, fmt.Errorf("toggle boarded: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return false, false, err
	}
	err = q.QueryRowContext(ctx, d.Rebind(`SELECT boarded FROM booking_details WHERE id = ?`), detailID).Scan(&boarded)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("read boarded: %w", err)
	}
	return boarded, true, nil
}
