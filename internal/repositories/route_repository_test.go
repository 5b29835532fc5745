package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	intdb "travelwizards/internal/db"
	"travelwizards/internal/domain/models"
)

var edgeColumns = []string{
	"id", "transport_type", "company_id",
	"id", "full_name", "abbreviation",
	"id", "full_name", "abbreviation",
	"id", "departure_time", "arrival_time", "price", "frequency_seconds", "valid_from", "valid_until",
}

func TestListEdgesFromGroupsSchedulesPerRoute(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	dep := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM travel_routes r").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(edgeColumns).
			AddRow(10, "BUS", 3, 1, "Iasi", "IAS", 2, "Bucuresti", "BUC", 100, dep, dep.Add(4*time.Hour), 45, 3600, nil, nil).
			AddRow(10, "BUS", 3, 1, "Iasi", "IAS", 2, "Bucuresti", "BUC", 101, dep.Add(time.Hour), dep.Add(5*time.Hour), 50, 0, dep, nil).
			AddRow(11, "train", 0, 1, "Iasi", "IAS", 3, "Cluj", "CLJ", nil, nil, nil, nil, nil, nil, nil))

	repo := RouteRepository{DB: db, Dialect: intdb.MySQL}
	edges, err := repo.ListEdgesFrom(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(edges))
	}
	first := edges[0]
	if first.Mode != models.ModeBus || first.CompanyID != 3 || first.Arrival.FullName != "Bucuresti" {
		t.Fatalf("unexpected route: %+v", first)
	}
	if len(first.Schedules) != 2 || first.Schedules[0].Frequency != time.Hour || first.Schedules[1].ValidFrom.IsZero() {
		t.Fatalf("unexpected schedules: %+v", first.Schedules)
	}
	if first.Schedules[0].RouteID != 10 || !first.Schedules[0].ValidUntil.IsZero() {
		t.Fatalf("schedule fields not mapped: %+v", first.Schedules[0])
	}
	if len(edges[1].Schedules) != 0 {
		t.Fatalf("route without schedules should have none, got %+v", edges[1].Schedules)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindLocationIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id FROM locations WHERE full_name = \\?").WithArgs("Atlantis").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	id, ok, err := RouteRepository{DB: db, Dialect: intdb.MySQL}.FindLocationID(context.Background(), " Atlantis ")
	if err != nil || ok || id != 0 {
		t.Fatalf("expected clean miss, got %d %v %v", id, ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindLocationIDRebindsForPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("WHERE full_name = \\$1").WithArgs("Iasi").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	id, ok, err := LocationRepository{DB: db, Dialect: intdb.Postgres}.FindLocationID(context.Background(), "Iasi")
	if err != nil || !ok || id != 1 {
		t.Fatalf("unexpected result %d %v %v", id, ok, err)
	}
}

func TestListServicesComputesPriceRatio(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	dep := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	mock.ExpectQuery("WHERE d.full_name = \\? OR a.full_name = \\?").WithArgs("Iasi", "Iasi").
		WillReturnRows(sqlmock.NewRows([]string{"id", "id", "abbreviation", "abbreviation", "transport_type", "price", "departure_time", "arrival_time"}).
			AddRow(100, 10, "IAS", "BUC", "bus", 100, dep, dep.Add(3*time.Hour)))

	got, err := RouteRepository{DB: db, Dialect: intdb.MySQL}.ListServices(context.Background(), "Iasi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].PriceRatio != 33.33 || got[0].Departure != "IAS" {
		t.Fatalf("unexpected listing: %+v", got)
	}
}

func TestUpdatePriceReportsMissingSchedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE route_schedules SET price").WithArgs(int64(60), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := RouteRepository{DB: db, Dialect: intdb.MySQL}.UpdatePrice(context.Background(), 99, 60)
	if err != nil || ok {
		t.Fatalf("expected not found, got %v %v", ok, err)
	}
}
