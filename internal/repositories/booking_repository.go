package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intdb "travelwizards/internal/db"
	"travelwizards/internal/domain"
	"travelwizards/internal/domain/models"
	"travelwizards/internal/utils"
)

// BookingRepository holds the booking and booking detail statements. Write
// methods take the caller's transaction; only the reservation service calls
// them.
type BookingRepository struct {
	DB      *sql.DB
	Dialect intdb.Dialect
}

func (r BookingRepository) db() (*sql.DB, intdb.Dialect) { return resolve(r.DB, r.Dialect) }

// InsertBooking creates the booking header and returns its id.
func (r BookingRepository) InsertBooking(ctx context.Context, q intdb.Querier, b models.Booking) (int64, error) {
	_, d := r.db()
	id, err := d.InsertID(ctx, q,
		`INSERT INTO bookings (reference, user_id, company_id, first_name, last_name, phone_number) VALUES (?, ?, ?, ?, ?, ?)`,
		b.Reference, b.UserID, b.CompanyID, b.FirstName, b.LastName, b.PhoneNumber)
	if err != nil {
		return 0, fmt.Errorf("insert booking: %w", err)
	}
	return id, nil
}

const scheduleMatch = `
	FROM route_schedules rs
	JOIN travel_routes tr ON tr.id = rs.route_id
	JOIN locations l1 ON l1.id = tr.departure_location_id
	JOIN locations l2 ON l2.id = tr.arrival_location_id`

// ResolveSchedule finds the schedule matching a leg exactly on departure
// name, arrival name, departure time, arrival time and price.
func (r BookingRepository) ResolveSchedule(ctx context.Context, q intdb.Querier, leg models.Leg) (int64, bool, error) {
	_, d := r.db()
	var id int64
	err := q.QueryRowContext(ctx, d.Rebind(`SELECT rs.id`+scheduleMatch+`
	WHERE l1.full_name = ? AND l2.full_name = ?
		AND rs.departure_time = ? AND rs.arrival_time = ? AND rs.price = ?
	ORDER BY rs.id LIMIT 1`),
		leg.DepartureName, leg.ArrivalName, utc(leg.DepartureTime), utc(leg.ArrivalTime), leg.Price).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolve schedule: %w", err)
	}
	return id, true, nil
}

// InsertDetail links a booking to a schedule with boarded = false.
func (r BookingRepository) InsertDetail(ctx context.Context, q intdb.Querier, bookingID, scheduleID int64) (int64, error) {
	_, d := r.db()
	id, err := d.InsertID(ctx, q,
		`INSERT INTO booking_details (booking_id, schedule_id, boarded) VALUES (?, ?, FALSE)`,
		bookingID, scheduleID)
	if err != nil {
		return 0, fmt.Errorf("insert booking detail: %w", err)
	}
	return id, nil
}

// DetailMatch identifies one booked leg.
type DetailMatch struct {
	DetailID   int64
	BookingID  int64
	ScheduleID int64
}

// FindReservation returns the first booking detail for the passenger on the
// leg. bookingID restricts the search to one booking when positive.
func (r BookingRepository) FindReservation(ctx context.Context, q intdb.Querier, firstName, lastName string, leg models.Leg, bookingID int64) (DetailMatch, bool, error) {
	_, d := r.db()
	query := `SELECT bd.id, b.id, rs.id` + scheduleMatch + `
	JOIN booking_details bd ON bd.schedule_id = rs.id
	JOIN bookings b ON b.id = bd.booking_id
	WHERE b.first_name = ? AND b.last_name = ?
		AND l1.full_name = ? AND l2.full_name = ?
		AND rs.departure_time = ? AND rs.arrival_time = ? AND rs.price = ?`
	args := []any{firstName, lastName, leg.DepartureName, leg.ArrivalName, utc(leg.DepartureTime), utc(leg.ArrivalTime), leg.Price}
	if bookingID > 0 {
		query += ` AND b.id = ?`
		args = append(args, bookingID)
	}
	query += ` ORDER BY b.id, bd.id LIMIT 1`

	var m DetailMatch
	err := q.QueryRowContext(ctx, d.Rebind(query), args...).Scan(&m.DetailID, &m.BookingID, &m.ScheduleID)
	if errors.Is(err, sql.ErrNoRows) {
		return DetailMatch{}, false, nil
	}
	if err != nil {
		return DetailMatch{}, false, fmt.Errorf("find reservation: %w", err)
	}
	return m, true, nil
}

// CandidateBookings lists, lowest id first, the bookings under the passenger
// name that hold the leg.
func (r BookingRepository) CandidateBookings(ctx context.Context, q intdb.Querier, firstName, lastName string, leg models.Leg) ([]int64, error) {
	_, d := r.db()
	rows, err := q.QueryContext(ctx, d.Rebind(`SELECT DISTINCT b.id`+scheduleMatch+`
	JOIN booking_details bd ON bd.schedule_id = rs.id
	JOIN bookings b ON b.id = bd.booking_id
	WHERE b.first_name = ? AND b.last_name = ?
		AND l1.full_name = ? AND l2.full_name = ?
		AND rs.departure_time = ? AND rs.arrival_time = ? AND rs.price = ?
	ORDER BY b.id`),
		firstName, lastName, leg.DepartureName, leg.ArrivalName, utc(leg.DepartureTime), utc(leg.ArrivalTime), leg.Price)
	if err != nil {
		return nil, fmt.Errorf("candidate bookings: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("candidate bookings: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteDetail removes one booking detail by id.
func (r BookingRepository) DeleteDetail(ctx context.Context, q intdb.Querier, detailID int64) error {
	_, d := r.db()
	if _, err := q.ExecContext(ctx, d.Rebind(`DELETE FROM booking_details WHERE id = ?`), detailID); err != nil {
		return fmt.Errorf("delete booking detail: %w", err)
	}
	return nil
}

// DeleteBookingIfEmpty drops the booking when it has no details left and
// reports whether it did.
func (r BookingRepository) DeleteBookingIfEmpty(ctx context.Context, q intdb.Querier, bookingID int64) (bool, error) {
	_, d := r.db()
	res, err := q.ExecContext(ctx, d.Rebind(`
		DELETE FROM bookings
		WHERE id = ? AND NOT EXISTS (SELECT 1 FROM booking_details WHERE booking_id = ?)`), bookingID, bookingID)
	if err != nil {
		return false, fmt.Errorf("delete empty booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const reservationSelect = `
	SELECT b.id, b.reference, rs.id, l1.full_name, l2.full_name, rs.departure_time, rs.arrival_time, rs.price, bd.boarded`

// ListReservations returns every booked leg for a passenger name.
func (r BookingRepository) ListReservations(ctx context.Context, firstName, lastName string) ([]models.Reservation, error) {
	conn, d := r.db()
	if conn == nil {
		return nil, fmt.Errorf("db not available")
	}
	rows, err := conn.QueryContext(ctx, d.Rebind(reservationSelect+scheduleMatch+`
	JOIN booking_details bd ON bd.schedule_id = rs.id
	JOIN bookings b ON b.id = bd.booking_id
	WHERE b.first_name = ? AND b.last_name = ?
	ORDER BY rs.departure_time, bd.id`), strings.TrimSpace(firstName), strings.TrimSpace(lastName))
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

// GetTicket loads a booking with all of its legs.
func (r BookingRepository) GetTicket(ctx context.Context, bookingID int64) (models.BookingTicket, error) {
	conn, d := r.db()
	if conn == nil {
		return models.BookingTicket{}, fmt.Errorf("db not available")
	}
	var t models.BookingTicket
	err := conn.QueryRowContext(ctx, d.Rebind(`
		SELECT id, reference, user_id, company_id, first_name, last_name, phone_number, created_at
		FROM bookings WHERE id = ? LIMIT 1`), bookingID).Scan(
		&t.Booking.ID, &t.Booking.Reference, &t.Booking.UserID, &t.Booking.CompanyID,
		&t.Booking.FirstName, &t.Booking.LastName, &t.Booking.PhoneNumber, &t.Booking.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BookingTicket{}, domain.NotFoundError{Resource: "booking"}
	}
	if err != nil {
		return models.BookingTicket{}, fmt.Errorf("get booking: %w", err)
	}

	rows, err := conn.QueryContext(ctx, d.Rebind(reservationSelect+scheduleMatch+`
	JOIN booking_details bd ON bd.schedule_id = rs.id
	JOIN bookings b ON b.id = bd.booking_id
	WHERE b.id = ?
	ORDER BY rs.departure_time, bd.id`), bookingID)
	if err != nil {
		return models.BookingTicket{}, fmt.Errorf("get booking legs: %w", err)
	}
	defer rows.Close()
	if t.Legs, err = scanReservations(rows); err != nil {
		return models.BookingTicket{}, err
	}
	return t, nil
}

func scanReservations(rows *sql.Rows) ([]models.Reservation, error) {
	out := []models.Reservation{}
	for rows.Next() {
		var res models.Reservation
		if err := rows.Scan(&res.BookingID, &res.Reference, &res.ScheduleID, &res.DepartureName, &res.ArrivalName,
			&res.DepartureTime, &res.ArrivalTime, &res.Price, &res.Boarded); err != nil {
			return nil, err
		}
		res.DepartureTime, res.ArrivalTime = utc(res.DepartureTime), utc(res.ArrivalTime)
		res.Hours = utils.Round2(res.ArrivalTime.Sub(res.DepartureTime).Hours())
		out = append(out, res)
	}
	return out, rows.Err()
}

// CountRows returns booking and booking detail counts.
func (r BookingRepository) CountRows(ctx context.Context) (bookings, details int, err error) {
	conn, _ := r.db()
	if conn == nil {
		return 0, 0, fmt.Errorf("db not available")
	}
	if err = conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&bookings); err != nil {
		return 0, 0, err
	}
	if err = conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM booking_details`).Scan(&details); err != nil {
		return 0, 0, err
	}
	return bookings, details, nil
}
