package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	intdb "travelwizards/internal/db"
	"travelwizards/internal/domain"
	"travelwizards/internal/domain/models"
	"travelwizards/internal/events"
	"travelwizards/internal/repositories"
	"travelwizards/internal/utils"

	"github.com/google/uuid"
)

// PlaceholderPhone is stored on every booking; phone capture is not part of
// the reservation flow.
const PlaceholderPhone = "+0000000000"

// ReservationService reserves and cancels itineraries. Each call is one
// transaction against the store.
type ReservationService struct {
	DB       *sql.DB
	Dialect  intdb.Dialect
	Bookings repositories.BookingRepository
	Events   events.Publisher

	// NewReference and Now are replaced in tests.
	NewReference func() string
	Now          func() time.Time
}

func NewReservationService(conn *sql.DB, d intdb.Dialect, pub events.Publisher) ReservationService {
	return ReservationService{
		DB:       conn,
		Dialect:  d,
		Bookings: repositories.BookingRepository{DB: conn, Dialect: d},
		Events:   pub,
	}
}

func (s ReservationService) db() (*sql.DB, intdb.Dialect) { return resolveDB(s.DB, s.Dialect) }

func (s ReservationService) reference() string {
	if s.NewReference != nil {
		return s.NewReference()
	}
	return uuid.NewString()
}

func (s ReservationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}

// Reserve books the itinerary for the passenger on behalf of the session
// user. Either the booking and all of its details are stored or nothing is.
func (s ReservationService) Reserve(ctx context.Context, it models.Itinerary, passengerFullName string) (models.BookingReference, error) {
	reqID := domain.RequestIDFromContext(ctx)

	sess, ok := domain.SessionFromContext(ctx)
	if !ok || !sess.Valid() {
		return models.BookingReference{}, domain.ValidationError{Field: "session", Msg: "acting user and company are required", Err: domain.ErrNoSession}
	}
	first, last := utils.SplitName(passengerFullName)
	if first == "" {
		return models.BookingReference{}, domain.ValidationError{Field: "passenger_name", Msg: "passenger name is required"}
	}
	legs := it.BookedLegs()
	if err := validateLegs(legs); err != nil {
		return models.BookingReference{}, err
	}

	conn, d := s.db()
	repo := s.Bookings
	repo.Dialect = d

	booking := models.Booking{
		Reference:   s.reference(),
		UserID:      int64(sess.UserID),
		CompanyID:   int64(sess.CompanyID),
		FirstName:   first,
		LastName:    last,
		PhoneNumber: PlaceholderPhone,
	}

	out := models.BookingReference{Reference: booking.Reference}
	err := intdb.WithTx(ctx, conn, d.TxOptions(), func(tx *sql.Tx) error {
		bookingID, err := repo.InsertBooking(ctx, tx, booking)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(legs))
		for i, leg := range legs {
			scheduleID, found, err := repo.ResolveSchedule(ctx, tx, leg)
			if err != nil {
				return err
			}
			if !found {
				return domain.NotFoundError{
					Resource: "schedule",
					Err:      fmt.Errorf("leg %d %s -> %s at %s: %w", i+1, leg.DepartureName, leg.ArrivalName, utils.FormatDateTime(leg.DepartureTime), domain.ErrNoMatchingSchedule),
				}
			}
			if _, err := repo.InsertDetail(ctx, tx, bookingID, scheduleID); err != nil {
				return err
			}
			ids = append(ids, scheduleID)
		}
		out.BookingID = bookingID
		out.ScheduleIDs = ids
		return nil
	})
	if err != nil {
		utils.LogWarn(reqID, "reservation", "reserve", "rolled back: "+err.Error())
		return models.BookingReference{}, wrapTx("reserve", err)
	}

	utils.LogEvent(reqID, "reservation", "reserve",
		fmt.Sprintf("booking_id=%d reference=%s legs=%d", out.BookingID, out.Reference, len(out.ScheduleIDs)))
	s.publish(ctx, events.BookingEvent{
		Type:        events.BookingReserved,
		BookingID:   out.BookingID,
		Reference:   out.Reference,
		ScheduleIDs: out.ScheduleIDs,
		FirstName:   first,
		LastName:    last,
	})
	return out, nil
}

// Cancel removes the passenger's reservation of the itinerary. Every leg
// must be held by one booking; the lowest such booking is used. The booking
// itself goes once no details remain.
func (s ReservationService) Cancel(ctx context.Context, it models.Itinerary, firstName, lastName string) (models.CancelResult, error) {
	reqID := domain.RequestIDFromContext(ctx)

	firstName, lastName = strings.TrimSpace(firstName), utils.NormalizeSpace(lastName)
	if firstName == "" {
		return models.CancelResult{}, domain.ValidationError{Field: "first_name", Msg: "first name is required"}
	}
	legs := it.BookedLegs()
	if err := validateLegs(legs); err != nil {
		return models.CancelResult{}, err
	}

	conn, d := s.db()
	repo := s.Bookings
	repo.Dialect = d

	var (
		out         models.CancelResult
		scheduleIDs []int64
	)
	err := intdb.WithTx(ctx, conn, d.TxOptions(), func(tx *sql.Tx) error {
		candidates, err := repo.CandidateBookings(ctx, tx, firstName, lastName, legs[0])
		if err != nil {
			return err
		}
		var (
			bookingID int64
			matches   []repositories.DetailMatch
			furthest  int
		)
		for _, cand := range candidates {
			ms, missing, err := legsOnBooking(ctx, repo, tx, firstName, lastName, legs, cand)
			if err != nil {
				return err
			}
			if missing < 0 {
				bookingID, matches = cand, ms
				break
			}
			furthest = max(furthest, missing)
		}
		if matches == nil {
			leg := legs[furthest]
			return domain.NotFoundError{
				Resource: "reservation",
				Err:      fmt.Errorf("leg %d %s -> %s: %w", furthest+1, leg.DepartureName, leg.ArrivalName, domain.ErrNoMatchingReservation),
			}
		}
		for _, m := range matches {
			if err := repo.DeleteDetail(ctx, tx, m.DetailID); err != nil {
				return err
			}
			scheduleIDs = append(scheduleIDs, m.ScheduleID)
		}
		deleted, err := repo.DeleteBookingIfEmpty(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		out = models.CancelResult{BookingID: bookingID, DetailsRemoved: len(matches), BookingDeleted: deleted}
		return nil
	})
	if err != nil {
		utils.LogWarn(reqID, "reservation", "cancel", "rolled back: "+err.Error())
		return models.CancelResult{}, wrapTx("cancel", err)
	}

	utils.LogEvent(reqID, "reservation", "cancel",
		fmt.Sprintf("booking_id=%d removed=%d booking_deleted=%t", out.BookingID, out.DetailsRemoved, out.BookingDeleted))
	s.publish(ctx, events.BookingEvent{
		Type:           events.BookingCancelled,
		BookingID:      out.BookingID,
		ScheduleIDs:    scheduleIDs,
		FirstName:      firstName,
		LastName:       lastName,
		BookingDeleted: out.BookingDeleted,
	})
	return out, nil
}

// legsOnBooking returns the booked detail of every leg on one booking, or the
// index of the first leg the booking does not hold (-1 when all are held).
func legsOnBooking(ctx context.Context, repo repositories.BookingRepository, q intdb.Querier, firstName, lastName string, legs []models.Leg, bookingID int64) ([]repositories.DetailMatch, int, error) {
	matches := make([]repositories.DetailMatch, 0, len(legs))
	for i, leg := range legs {
		m, found, err := repo.FindReservation(ctx, q, firstName, lastName, leg, bookingID)
		if err != nil {
			return nil, i, err
		}
		if !found {
			return nil, i, nil
		}
		matches = append(matches, m)
	}
	return matches, -1, nil
}

// ListReservations returns the booked legs stored under a passenger name.
func (s ReservationService) ListReservations(ctx context.Context, firstName, lastName string) ([]models.Reservation, error) {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return nil, domain.ValidationError{Field: "first_name", Msg: "first name is required"}
	}
	conn, d := s.db()
	repo := s.Bookings
	repo.DB, repo.Dialect = conn, d
	return repo.ListReservations(ctx, firstName, utils.NormalizeSpace(lastName))
}

// publish is best effort; the booking is already committed.
func (s ReservationService) publish(ctx context.Context, ev events.BookingEvent) {
	if s.Events == nil {
		return
	}
	ev.RequestID = domain.RequestIDFromContext(ctx)
	ev.OccurredAt = s.now()
	if err := s.Events.Publish(ctx, ev); err != nil {
		utils.LogWarn(ev.RequestID, "events", "publish", fmt.Sprintf("%s booking_id=%d: %v", ev.Type, ev.BookingID, err))
	}
}
