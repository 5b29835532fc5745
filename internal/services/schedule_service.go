package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intdb "travelwizards/internal/db"
	"travelwizards/internal/domain"
	"travelwizards/internal/domain/models"
	"travelwizards/internal/repositories"
	"travelwizards/internal/utils"
)

// ScheduleService is the transportation company catalogue: routes, their
// schedules and prices.
type ScheduleService struct {
	DB        *sql.DB
	Dialect   intdb.Dialect
	Routes    repositories.RouteRepository
	Locations repositories.LocationRepository
}

func NewScheduleService(conn *sql.DB, d intdb.Dialect) ScheduleService {
	return ScheduleService{
		DB:        conn,
		Dialect:   d,
		Routes:    repositories.RouteRepository{DB: conn, Dialect: d},
		Locations: repositories.LocationRepository{DB: conn, Dialect: d},
	}
}

func (s ScheduleService) db() (*sql.DB, intdb.Dialect) { return resolveDB(s.DB, s.Dialect) }

func (s ScheduleService) routes() repositories.RouteRepository {
	conn, d := s.db()
	r := s.Routes
	if r.DB == nil {
		r.DB = conn
	}
	r.Dialect = d
	return r
}

func (s ScheduleService) locations() repositories.LocationRepository {
	conn, d := s.db()
	r := s.Locations
	if r.DB == nil {
		r.DB = conn
	}
	r.Dialect = d
	return r
}

// ListLocations returns every known location.
func (s ScheduleService) ListLocations(ctx context.Context) ([]models.Location, error) {
	return s.locations().ListLocations(ctx)
}

// AddService stores a new route edge with its first schedule. An arrival
// clock time earlier than the departure is read as the next day.
func (s ScheduleService) AddService(ctx context.Context, in models.NewService) (models.RouteEdge, error) {
	reqID := domain.RequestIDFromContext(ctx)

	if in.CompanyID == 0 {
		if sess, ok := domain.SessionFromContext(ctx); ok {
			in.CompanyID = int64(sess.CompanyID)
		}
	}
	depName, arrName := utils.NormalizeSpace(in.DepartureName), utils.NormalizeSpace(in.ArrivalName)
	if depName == "" || arrName == "" {
		return models.RouteEdge{}, domain.ValidationError{Field: "location", Msg: "departure and arrival are required"}
	}
	if strings.EqualFold(depName, arrName) {
		return models.RouteEdge{}, domain.ValidationError{Field: "location", Msg: "departure and arrival must differ"}
	}
	mode, err := models.ParseTransportMode(in.Mode)
	if err != nil {
		return models.RouteEdge{}, domain.ValidationError{Field: "mode", Msg: err.Error(), Err: err}
	}
	if in.Price < 0 {
		return models.RouteEdge{}, domain.ValidationError{Field: "price", Msg: "price must not be negative"}
	}
	if in.Frequency < 0 {
		return models.RouteEdge{}, domain.ValidationError{Field: "frequency", Msg: "frequency must not be negative"}
	}
	if in.DepartureTime.IsZero() || in.ArrivalTime.IsZero() {
		return models.RouteEdge{}, domain.ValidationError{Field: "time", Msg: "departure and arrival times are required"}
	}
	if !in.ValidFrom.IsZero() && !in.ValidUntil.IsZero() && in.ValidUntil.Before(in.ValidFrom) {
		return models.RouteEdge{}, domain.ValidationError{Field: "valid_until", Msg: "validity window ends before it starts"}
	}

	locs := s.locations()
	depID, ok, err := locs.FindLocationID(ctx, depName)
	if err != nil {
		return models.RouteEdge{}, err
	}
	if !ok {
		return models.RouteEdge{}, domain.NotFoundError{Resource: "location", Err: fmt.Errorf("departure location %q not found", depName)}
	}
	arrID, ok, err := locs.FindLocationID(ctx, arrName)
	if err != nil {
		return models.RouteEdge{}, err
	}
	if !ok {
		return models.RouteEdge{}, domain.NotFoundError{Resource: "location", Err: fmt.Errorf("arrival location %q not found", arrName)}
	}

	edge := models.RouteEdge{
		Departure: models.Location{ID: depID, FullName: depName},
		Arrival:   models.Location{ID: arrID, FullName: arrName},
		Mode:      mode,
		CompanyID: in.CompanyID,
	}
	sched := models.Schedule{
		DepartureTime: in.DepartureTime.UTC(),
		ArrivalTime:   utils.RollForward(in.DepartureTime.UTC(), in.ArrivalTime.UTC()),
		Price:         in.Price,
		Frequency:     in.Frequency,
		ValidFrom:     in.ValidFrom,
		ValidUntil:    in.ValidUntil,
	}

	conn, d := s.db()
	routes := s.routes()
	err = intdb.WithTx(ctx, conn, d.TxOptions(), func(tx *sql.Tx) error {
		routeID, err := routes.InsertRoute(ctx, tx, edge)
		if err != nil {
			return err
		}
		sched.RouteID = routeID
		if sched.ID, err = routes.InsertSchedule(ctx, tx, sched); err != nil {
			return err
		}
		edge.ID = routeID
		return nil
	})
	if err != nil {
		return models.RouteEdge{}, wrapTx("add_service", err)
	}
	edge.Schedules = []models.Schedule{sched}

	utils.LogEvent(reqID, "catalog", "add_service",
		fmt.Sprintf("route_id=%d schedule_id=%d %s -> %s mode=%s", edge.ID, sched.ID, depName, arrName, mode))
	return edge, nil
}

// ListServices returns the catalogue, optionally filtered to schedules that
// depart from or arrive at one location.
func (s ScheduleService) ListServices(ctx context.Context, location string) ([]models.ServiceListing, error) {
	return s.routes().ListServices(ctx, utils.NormalizeSpace(location))
}

// UpdatePrice sets the price of one schedule and returns it.
func (s ScheduleService) UpdatePrice(ctx context.Context, scheduleID, price int64) (models.Schedule, error) {
	if scheduleID <= 0 {
		return models.Schedule{}, domain.ValidationError{Field: "schedule_id", Msg: "schedule id is required"}
	}
	if price < 0 {
		return models.Schedule{}, domain.ValidationError{Field: "price", Msg: "price must not be negative"}
	}
	routes := s.routes()
	ok, err := routes.UpdatePrice(ctx, scheduleID, price)
	if err != nil {
		return models.Schedule{}, err
	}
	if !ok {
		return models.Schedule{}, domain.NotFoundError{Resource: "schedule"}
	}
	conn, _ := s.db()
	sched, found, err := routes.GetSchedule(ctx, conn, scheduleID)
	if err != nil {
		return models.Schedule{}, err
	}
	if !found {
		return models.Schedule{}, domain.NotFoundError{Resource: "schedule"}
	}
	utils.LogEvent(domain.RequestIDFromContext(ctx), "catalog", "update_price",
		fmt.Sprintf("schedule_id=%d price=%d", scheduleID, price))
	return sched, nil
}

// DeleteSchedule removes one schedule. A schedule that is still booked is a
// conflict.
func (s ScheduleService) DeleteSchedule(ctx context.Context, scheduleID int64) error {
	_, err := s.DeleteSchedules(ctx, []int64{scheduleID})
	return err
}

// DeleteSchedules removes all listed schedules in one transaction or none of
// them. Routes left without schedules are dropped with them.
func (s ScheduleService) DeleteSchedules(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, domain.ValidationError{Field: "ids", Msg: "at least one schedule id is required"}
	}
	seen := make(map[int64]bool, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return 0, domain.ValidationError{Field: "ids", Msg: fmt.Sprintf("invalid schedule id %d", id)}
		}
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	conn, d := s.db()
	routes := s.routes()
	err := intdb.WithTx(ctx, conn, d.TxOptions(), func(tx *sql.Tx) error {
		for _, id := range unique {
			booked, err := routes.CountDetailsForSchedule(ctx, tx, id)
			if err != nil {
				return err
			}
			if booked > 0 {
				return domain.ConflictError{Resource: "schedule", Msg: fmt.Sprintf("schedule %d has %d reservations", id, booked)}
			}
			ok, err := routes.DeleteSchedule(ctx, tx, id)
			if err != nil {
				return err
			}
			if !ok {
				return domain.NotFoundError{Resource: "schedule", Err: fmt.Errorf("schedule %d not found", id)}
			}
		}
		return nil
	})
	if err != nil {
		return 0, wrapTx("delete_schedules", err)
	}
	utils.LogEvent(domain.RequestIDFromContext(ctx), "catalog", "delete_schedules", fmt.Sprintf("count=%d", len(unique)))
	return len(unique), nil
}
