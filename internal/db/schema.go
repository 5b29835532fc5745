package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Tables lists the tables EnsureSchema creates, in dependency order.
var Tables = []string{
	"companies",
	"users",
	"locations",
	"travel_routes",
	"route_schedules",
	"bookings",
	"booking_details",
}

// SchemaSQL returns the embedded DDL for the dialect.
func SchemaSQL(d Dialect) (string, error) {
	b, err := schemaFS.ReadFile("schema/" + string(d) + ".sql")
	if err != nil {
		return "", fmt.Errorf("schema for %s: %w", d, err)
	}
	return string(b), nil
}

// EnsureSchema creates missing tables. Statements run one by one since the
// MySQL driver rejects multi-statement Exec by default.
func EnsureSchema(ctx context.Context, conn *sql.DB, d Dialect) error {
	ddl, err := SchemaSQL(d)
	if err != nil {
		return err
	}
	for _, stmt := range splitStatements(ddl) {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func splitStatements(ddl string) []string {
	out := []string{}
	for _, part := range strings.Split(ddl, ";") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
