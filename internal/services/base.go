package services

import (
	"database/sql"
	"fmt"
	"strings"

	intconfig "travelwizards/internal/config"
	intdb "travelwizards/internal/db"
	"travelwizards/internal/domain"
	"travelwizards/internal/domain/models"
)

func resolveDB(conn *sql.DB, d intdb.Dialect) (*sql.DB, intdb.Dialect) {
	if conn == nil {
		conn = intconfig.DB
	}
	if d == "" {
		d = intconfig.Dialect
	}
	return conn, d
}

// validateLegs rejects legs that cannot match any stored schedule.
func validateLegs(legs []models.Leg) error {
	if len(legs) == 0 {
		return domain.ValidationError{Field: "legs", Msg: "itinerary has no legs"}
	}
	for i, leg := range legs {
		field := fmt.Sprintf("legs[%d]", i)
		if strings.TrimSpace(leg.DepartureName) == "" || strings.TrimSpace(leg.ArrivalName) == "" {
			return domain.ValidationError{Field: field, Msg: "departure and arrival names are required"}
		}
		if leg.DepartureTime.IsZero() || leg.ArrivalTime.IsZero() {
			return domain.ValidationError{Field: field, Msg: "departure and arrival times are required"}
		}
	}
	return nil
}

// wrapTx keeps domain errors raised inside a unit of work and reports any
// other failure as a rolled back transaction.
func wrapTx(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsNotFound(err) || domain.IsValidation(err) || domain.IsConflict(err) {
		return err
	}
	return domain.TransactionError{Op: op, Err: err}
}
