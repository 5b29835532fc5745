package repositories

import (
	"database/sql"
	"time"

	intconfig "travelwizards/internal/config"
	intdb "travelwizards/internal/db"
)

// resolve falls back to the shared pool and dialect when a repository was
// built as a zero value.
func resolve(conn *sql.DB, d intdb.Dialect) (*sql.DB, intdb.Dialect) {
	if conn == nil {
		conn = intconfig.DB
	}
	if d == "" {
		d = intconfig.Dialect
	}
	return conn, d
}

func utc(t time.Time) time.Time { return t.UTC() }

func nullTime(nt sql.NullTime) time.Time {
	if !nt.Valid {
		return time.Time{}
	}
	return nt.Time.UTC()
}
