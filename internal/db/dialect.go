package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the few places where the supported SQL stores differ.
// Queries are written with '?' placeholders and rebound per dialect.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect maps a DB_DRIVER value to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mysql":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported db driver %q", s)
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	switch d {
	case Postgres:
		return "pgx"
	case SQLite:
		return "sqlite"
	default:
		return "mysql"
	}
}

// Rebind rewrites '?' placeholders to '$n' for PostgreSQL.
func (d Dialect) Rebind(query string) string {
	if d != Postgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TxOptions returns the isolation used for reservation units of work.
// SQLite serialises writers on its single connection, so it keeps the default.
func (d Dialect) TxOptions() *sql.TxOptions {
	if d == SQLite {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
}

// InsertID runs an INSERT and returns the generated id.
func (d Dialect) InsertID(ctx context.Context, q Querier, query string, args ...any) (int64, error) {
	if d == Postgres {
		var id int64
		if err := q.QueryRowContext(ctx, d.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := q.ExecContext(ctx, d.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
