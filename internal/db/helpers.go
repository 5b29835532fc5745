package db

import (
	"context"
	"database/sql"
	"time"
)

// NullIfEmpty helps store optional strings without wiping existing data.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NullIfZero keeps zero times out of DATE/DATETIME columns.
func NullIfZero(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// HasTable reports whether table exists in the current schema.
func HasTable(ctx context.Context, q Querier, d Dialect, table string) bool {
	var query string
	switch d {
	case SQLite:
		query = `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ? LIMIT 1`
	case Postgres:
		query = `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ? LIMIT 1`
	default:
		query = `SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ? LIMIT 1`
	}
	var name sql.NullString
	if err := q.QueryRowContext(ctx, d.Rebind(query), table).Scan(&name); err != nil {
		return false
	}
	return name.Valid && name.String != ""
}
