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
	"travelwizards/internal/utils"
)

// RouteRepository is the SQL schedule graph store. It satisfies
// pathfinder.GraphSource.
type RouteRepository struct {
	DB      *sql.DB
	Dialect intdb.Dialect
}

func (r RouteRepository) db() (*sql.DB, intdb.Dialect) { return resolve(r.DB, r.Dialect) }

func (r RouteRepository) locations() LocationRepository {
	return LocationRepository{DB: r.DB, Dialect: r.Dialect}
}

func (r RouteRepository) FindLocationID(ctx context.Context, name string) (int64, bool, error) {
	return r.locations().FindLocationID(ctx, name)
}

func (r RouteRepository) ListLocations(ctx context.Context) ([]models.Location, error) {
	return r.locations().ListLocations(ctx)
}

const edgeSelect = `
	SELECT
		r.id, r.transport_type, COALESCE(r.company_id, 0),
		d.id, d.full_name, d.abbreviation,
		a.id, a.full_name, a.abbreviation,
		s.id, s.departure_time, s.arrival_time, s.price, s.frequency_seconds, s.valid_from, s.valid_until
	FROM travel_routes r
	JOIN locations d ON d.id = r.departure_location_id
	JOIN locations a ON a.id = r.arrival_location_id
	LEFT JOIN route_schedules s ON s.route_id = r.id`

// ListEdgesFrom loads every route leaving locationID with its schedules in
// one round trip.
func (r RouteRepository) ListEdgesFrom(ctx context.Context, locationID int64) ([]models.RouteEdge, error) {
	conn, d := r.db()
	if conn == nil {
		return nil, fmt.Errorf("db not available")
	}
	rows, err := conn.QueryContext(ctx, d.Rebind(edgeSelect+`
	WHERE r.departure_location_id = ?
	ORDER BY r.id, s.id`), locationID)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

// ListAllEdges loads the whole graph, used by the neo4j projection.
func (r RouteRepository) ListAllEdges(ctx context.Context) ([]models.RouteEdge, error) {
	conn, _ := r.db()
	if conn == nil {
		return nil, fmt.Errorf("db not available")
	}
	rows, err := conn.QueryContext(ctx, edgeSelect+`
	ORDER BY r.id, s.id`)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

func scanEdges(rows *sql.Rows) ([]models.RouteEdge, error) {
	out := []models.RouteEdge{}
	for rows.Next() {
		var (
			e                          models.RouteEdge
			mode                       string
			schedID, price, freq       sql.NullInt64
			dep, arr, validFrom, until sql.NullTime
		)
		if err := rows.Scan(
			&e.ID, &mode, &e.CompanyID,
			&e.Departure.ID, &e.Departure.FullName, &e.Departure.Abbreviation,
			&e.Arrival.ID, &e.Arrival.FullName, &e.Arrival.Abbreviation,
			&schedID, &dep, &arr, &price, &freq, &validFrom, &until,
		); err != nil {
			return nil, err
		}
		e.Mode = models.TransportMode(strings.ToLower(mode))

		if n := len(out); n == 0 || out[n-1].ID != e.ID {
			out = append(out, e)
		}
		if !schedID.Valid {
			continue
		}
		last := &out[len(out)-1]
		last.Schedules = append(last.Schedules, models.Schedule{
			ID:            schedID.Int64,
			RouteID:       e.ID,
			DepartureTime: nullTime(dep),
			ArrivalTime:   nullTime(arr),
			Price:         price.Int64,
			Frequency:     time.Duration(freq.Int64) * time.Second,
			ValidFrom:     nullTime(validFrom),
			ValidUntil:    nullTime(until),
		})
	}
	return out, rows.Err()
}

// InsertRoute stores a route edge inside q (usually a transaction).
func (r RouteRepository) InsertRoute(ctx context.Context, q intdb.Querier, e models.RouteEdge) (int64, error) {
	_, d := r.db()
	var company any
	if e.CompanyID > 0 {
		company = e.CompanyID
	}
	id, err := d.InsertID(ctx, q,
		`INSERT INTO travel_routes (departure_location_id, arrival_location_id, transport_type, company_id) VALUES (?, ?, ?, ?)`,
		e.Departure.ID, e.Arrival.ID, string(e.Mode), company)
	if err != nil {
		return 0, fmt.Errorf("insert route: %w", err)
	}
	return id, nil
}

// InsertSchedule stores a schedule inside q.
func (r RouteRepository) InsertSchedule(ctx context.Context, q intdb.Querier, s models.Schedule) (int64, error) {
	_, d := r.db()
	id, err := d.InsertID(ctx, q,
		`INSERT INTO route_schedules (route_id, departure_time, arrival_time, price, frequency_seconds, valid_from, valid_until) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.RouteID, utc(s.DepartureTime), utc(s.ArrivalTime), s.Price, int64(s.Frequency/time.Second),
		intdb.NullIfZero(s.ValidFrom), intdb.NullIfZero(s.ValidUntil))
	if err != nil {
		return 0, fmt.Errorf("insert schedule: %w", err)
	}
	return id, nil
}

// ListServices is the company listing. An empty location returns every
// schedule; otherwise schedules departing from or arriving at it.
func (r RouteRepository) ListServices(ctx context.Context, location string) ([]models.ServiceListing, error) {
	conn, d := r.db()
	if conn == nil {
		return nil, fmt.Errorf("db not available")
	}
	query := `
		SELECT s.id, r.id, d.abbreviation, a.abbreviation, r.transport_type, s.price, s.departure_time, s.arrival_time
		FROM travel_routes r
		JOIN route_schedules s ON s.route_id = r.id
		JOIN locations d ON d.id = r.departure_location_id
		JOIN locations a ON a.id = r.arrival_location_id`
	args := []any{}
	if loc := strings.TrimSpace(location); loc != "" {
		query += ` WHERE d.full_name = ? OR a.full_name = ?`
		args = append(args, loc, loc)
	}
	query += ` ORDER BY s.departure_time, s.id`

	rows, err := conn.QueryContext(ctx, d.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	out := []models.ServiceListing{}
	for rows.Next() {
		var (
			l    models.ServiceListing
			mode string
		)
		if err := rows.Scan(&l.ScheduleID, &l.RouteID, &l.Departure, &l.Arrival, &mode, &l.Price, &l.DepartureTime, &l.ArrivalTime); err != nil {
			return nil, err
		}
		l.Mode = models.TransportMode(mode)
		l.DepartureTime, l.ArrivalTime = utc(l.DepartureTime), utc(l.ArrivalTime)
		l.PriceRatio = utils.PriceRatio(l.Price, l.ArrivalTime.Sub(l.DepartureTime).Hours())
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetSchedule fetches one schedule by id.
func (r RouteRepository) GetSchedule(ctx context.Context, q intdb.Querier, id int64) (models.Schedule, bool, error) {
	_, d := r.db()
	var (
		s                models.Schedule
		freq             int64
		validFrom, until sql.NullTime
	)
	err := q.QueryRowContext(ctx, d.Rebind(`
		SELECT id, route_id, departure_time, arrival_time, price, frequency_seconds, valid_from, valid_until
		FROM route_schedules WHERE id = ? LIMIT 1`), id).
		Scan(&s.ID, &s.RouteID, &s.DepartureTime, &s.ArrivalTime, &s.Price, &freq, &validFrom, &until)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Schedule{}, false, nil
	}
	if err != nil {
		return models.Schedule{}, false, fmt.Errorf("get schedule: %w", err)
	}
	s.DepartureTime, s.ArrivalTime = utc(s.DepartureTime), utc(s.ArrivalTime)
	s.Frequency = time.Duration(freq) * time.Second
	s.ValidFrom, s.ValidUntil = nullTime(validFrom), nullTime(until)
	return s, true, nil
}

// UpdatePrice reports false when no schedule has that id.
func (r RouteRepository) UpdatePrice(ctx context.Context, scheduleID, price int64) (bool, error) {
	conn, d := r.db()
	if conn == nil {
		return false, fmt.Errorf("db not available")
	}
	res, err := conn.ExecContext(ctx, d.Rebind(`UPDATE route_schedules SET price = ? WHERE id = ?`), price, scheduleID)
	if err != nil {
		return false, fmt.Errorf("update price: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountDetailsForSchedule counts booking details that reference a schedule.
func (r RouteRepository) CountDetailsForSchedule(ctx context.Context, q intdb.Querier, scheduleID int64) (int, error) {
	_, d := r.db()
	var n int
	if err := q.QueryRowContext(ctx, d.Rebind(`SELECT COUNT(*) FROM booking_details WHERE schedule_id = ?`), scheduleID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count details: %w", err)
	}
	return n, nil
}

// DeleteSchedule removes a schedule inside q and drops its route when no
// schedules remain.
func (r RouteRepository) DeleteSchedule(ctx context.Context, q intdb.Querier, scheduleID int64) (bool, error) {
	_, d := r.db()
	var routeID int64
	err := q.QueryRowContext(ctx, d.Rebind(`SELECT route_id FROM route_schedules WHERE id = ? LIMIT 1`), scheduleID).Scan(&routeID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup schedule: %w", err)
	}
	if _, err := q.ExecContext(ctx, d.Rebind(`DELETE FROM route_schedules WHERE id = ?`), scheduleID); err != nil {
		return false, fmt.Errorf("delete schedule: %w", err)
	}
	if _, err := q.ExecContext(ctx, d.Rebind(`
		DELETE FROM travel_routes
		WHERE id = ? AND NOT EXISTS (SELECT 1 FROM route_schedules WHERE route_id = ?)`), routeID, routeID); err != nil {
		return false, fmt.Errorf("delete empty route: %w", err)
	}
	return true, nil
}
