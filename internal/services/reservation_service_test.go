package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	intdb "travelwizards/internal/db"
	"travelwizards/internal/domain"
	"travelwizards/internal/domain/models"
	"travelwizards/internal/events"
)

var legStart = time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)

func agentCtx() context.Context {
	ctx := domain.WithRequestID(context.Background(), "req-test")
	return domain.WithSession(ctx, domain.Session{UserID: 3, CompanyID: 9, Role: domain.RoleTravelAgent})
}

func directItinerary() models.Itinerary {
	return models.Itinerary{
		DepartureName: "Iasi",
		ArrivalName:   "Bucuresti",
		DepartureTime: legStart,
		ArrivalTime:   legStart.Add(4 * time.Hour),
		TotalPrice:    45,
		TotalHours:    4,
	}
}

func twoLegItinerary() models.Itinerary {
	return models.Itinerary{
		DepartureName: "Cluj",
		ArrivalName:   "Constanta",
		Legs: []models.Leg{
			{DepartureName: "Cluj", ArrivalName: "Bucuresti", DepartureTime: legStart, ArrivalTime: legStart.Add(5 * time.Hour), Price: 20},
			{DepartureName: "Bucuresti", ArrivalName: "Constanta", DepartureTime: legStart.Add(6 * time.Hour), ArrivalTime: legStart.Add(8 * time.Hour), Price: 15},
		},
	}
}

func newMockReservations(t *testing.T) (ReservationService, sqlmock.Sqlmock, *events.Recorder) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	rec := &events.Recorder{}
	svc := NewReservationService(db, intdb.MySQL, rec)
	svc.NewReference = func() string { return "ref-1" }
	return svc, mock, rec
}

func TestReserveDirectItinerary(t *testing.T) {
	svc, mock, rec := newMockReservations(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs("ref-1", int64(3), int64(9), "Jane", "van Doe", PlaceholderPhone).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT rs.id").
		WithArgs("Iasi", "Bucuresti", legStart, legStart.Add(4*time.Hour), int64(45)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
	mock.ExpectExec("INSERT INTO booking_details").WithArgs(int64(7), int64(100)).
		WillReturnResult(sqlmock.NewResult(70, 1))
	mock.ExpectCommit()

	ref, err := svc.Reserve(agentCtx(), directItinerary(), "  Jane   van Doe ")
	if err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if ref.BookingID != 7 || ref.Reference != "ref-1" || len(ref.ScheduleIDs) != 1 || ref.ScheduleIDs[0] != 100 {
		t.Fatalf("unexpected reference: %+v", ref)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}

	evs := rec.Events()
	if len(evs) != 1 || evs[0].Type != events.BookingReserved || evs[0].BookingID != 7 || evs[0].RequestID != "req-test" {
		t.Fatalf("unexpected events: %+v", evs)
	}
}

func TestReserveMultiLegResolvesEveryLeg(t *testing.T) {
	svc, mock, _ := newMockReservations(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectQuery("SELECT rs.id").WithArgs("Cluj", "Bucuresti", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(20)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(201))
	mock.ExpectExec("INSERT INTO booking_details").WithArgs(int64(8), int64(201)).
		WillReturnResult(sqlmock.NewResult(80, 1))
	mock.ExpectQuery("SELECT rs.id").WithArgs("Bucuresti", "Constanta", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(15)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(202))
	mock.ExpectExec("INSERT INTO booking_details").WithArgs(int64(8), int64(202)).
		WillReturnResult(sqlmock.NewResult(81, 1))
	mock.ExpectCommit()

	ref, err := svc.Reserve(agentCtx(), twoLegItinerary(), "Ana")
	if err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if len(ref.ScheduleIDs) != 2 || ref.ScheduleIDs[0] != 201 || ref.ScheduleIDs[1] != 202 {
		t.Fatalf("unexpected schedules: %v", ref.ScheduleIDs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveRollsBackWhenScheduleGone(t *testing.T) {
	svc, mock, rec := newMockReservations(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT rs.id").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := svc.Reserve(agentCtx(), directItinerary(), "Jane Doe")
	if !domain.IsNotFound(err) || !errors.Is(err, domain.ErrNoMatchingSchedule) {
		t.Fatalf("expected no matching schedule, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
	if len(rec.Events()) != 0 {
		t.Fatalf("no event expected after rollback")
	}
}

func TestReserveRollsBackOnStoreFailure(t *testing.T) {
	svc, mock, _ := newMockReservations(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT rs.id").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
	mock.ExpectExec("INSERT INTO booking_details").WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	_, err := svc.Reserve(agentCtx(), directItinerary(), "Jane Doe")
	if !domain.IsTransaction(err) {
		t.Fatalf("expected transaction error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveRejectsInputBeforeTouchingStore(t *testing.T) {
	svc, mock, _ := newMockReservations(t)

	if _, err := svc.Reserve(context.Background(), directItinerary(), "Jane Doe"); !domain.IsValidation(err) || !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected missing session error, got %v", err)
	}
	if _, err := svc.Reserve(agentCtx(), directItinerary(), "   "); !domain.IsValidation(err) {
		t.Fatalf("expected blank name error, got %v", err)
	}
	it := directItinerary()
	it.DepartureTime = time.Time{}
	if _, err := svc.Reserve(agentCtx(), it, "Jane"); !domain.IsValidation(err) {
		t.Fatalf("expected leg validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("store must not be touched: %v", err)
	}
}

func TestReserveSurvivesPublisherFailure(t *testing.T) {
	svc, mock, _ := newMockReservations(t)
	svc.Events = &events.Recorder{Err: errors.New("broker down")}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT rs.id").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
	mock.ExpectExec("INSERT INTO booking_details").WillReturnResult(sqlmock.NewResult(70, 1))
	mock.ExpectCommit()

	if _, err := svc.Reserve(agentCtx(), directItinerary(), "Jane Doe"); err != nil {
		t.Fatalf("publish failure must not fail the reservation: %v", err)
	}
}

func TestCancelMultiLegDeletesEmptyBooking(t *testing.T) {
	svc, mock, rec := newMockReservations(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT DISTINCT b.id").
		WithArgs("Ana", "", "Cluj", "Bucuresti", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(20)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectQuery("AND b.id = \\?").
		WithArgs("Ana", "", "Cluj", "Bucuresti", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(20), int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "id", "id"}).AddRow(80, 8, 201))
	mock.ExpectQuery("AND b.id = \\?").
		WithArgs("Ana", "", "Bucuresti", "Constanta", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(15), int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "id", "id"}).AddRow(81, 8, 202))
	mock.ExpectExec("DELETE FROM booking_details").WithArgs(int64(80)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM booking_details").WithArgs(int64(81)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM bookings").WithArgs(int64(8), int64(8)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.Cancel(agentCtx(), twoLegItinerary(), "Ana", "")
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if res.BookingID != 8 || res.DetailsRemoved != 2 || !res.BookingDeleted {
		t.Fatalf("unexpected result: %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
	evs := rec.Events()
	if len(evs) != 1 || evs[0].Type != events.BookingCancelled || !evs[0].BookingDeleted || len(evs[0].ScheduleIDs) != 2 {
		t.Fatalf("unexpected events: %+v", evs)
	}
}

func TestCancelSkipsBookingMissingLaterLegs(t *testing.T) {
	svc, mock, _ := newMockReservations(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT DISTINCT b.id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5).AddRow(8))
	mock.ExpectQuery("AND b.id = \\?").
		WithArgs("Ana", "", "Cluj", "Bucuresti", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(20), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "id", "id"}).AddRow(50, 5, 201))
	mock.ExpectQuery("AND b.id = \\?").
		WithArgs("Ana", "", "Bucuresti", "Constanta", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(15), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "id", "id"}))
	mock.ExpectQuery("AND b.id = \\?").
		WithArgs("Ana", "", "Cluj", "Bucuresti", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(20), int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "id", "id"}).AddRow(80, 8, 201))
	mock.ExpectQuery("AND b.id = \\?").
		WithArgs("Ana", "", "Bucuresti", "Constanta", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(15), int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "id", "id"}).AddRow(81, 8, 202))
	mock.ExpectExec("DELETE FROM booking_details").WithArgs(int64(80)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM booking_details").WithArgs(int64(81)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM bookings").WithArgs(int64(8), int64(8)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.Cancel(agentCtx(), twoLegItinerary(), "Ana", "")
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if res.BookingID != 8 || res.DetailsRemoved != 2 {
		t.Fatalf("expected booking 8 to be cancelled, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelKeepsBookingWithRemainingDetails(t *testing.T) {
	svc, mock, _ := newMockReservations(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT DISTINCT b.id").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("SELECT bd.id, b.id, rs.id").WillReturnRows(sqlmock.NewRows([]string{"id", "id", "id"}).AddRow(70, 7, 100))
	mock.ExpectExec("DELETE FROM booking_details").WithArgs(int64(70)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM bookings").WithArgs(int64(7), int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	res, err := svc.Cancel(agentCtx(), directItinerary(), "Jane", "Doe")
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if res.BookingDeleted || res.DetailsRemoved != 1 {
		t.Fatalf("booking with other legs must stay: %+v", res)
	}
}

func TestCancelWithoutReservation(t *testing.T) {
	svc, mock, rec := newMockReservations(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT DISTINCT b.id").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := svc.Cancel(agentCtx(), directItinerary(), "Jane", "Doe")
	if !domain.IsNotFound(err) || !errors.Is(err, domain.ErrNoMatchingReservation) {
		t.Fatalf("expected no matching reservation, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
	if len(rec.Events()) != 0 {
		t.Fatalf("no event expected")
	}
}

func TestCancelSecondLegOnOtherBookingRollsBack(t *testing.T) {
	svc, mock, _ := newMockReservations(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT DISTINCT b.id").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectQuery("AND b.id = \\?").WillReturnRows(sqlmock.NewRows([]string{"id", "id", "id"}).AddRow(80, 8, 201))
	mock.ExpectQuery("AND b.id = \\?").WillReturnRows(sqlmock.NewRows([]string{"id", "id", "id"}))
	mock.ExpectRollback()

	_, err := svc.Cancel(agentCtx(), twoLegItinerary(), "Ana", "")
	if !errors.Is(err, domain.ErrNoMatchingReservation) {
		t.Fatalf("expected no matching reservation, got %v", err)
	}
	if !strings.Contains(err.Error(), "leg 2") {
		t.Fatalf("expected the missing leg to be named, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
