package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intdb "travelwizards/internal/db"
	"travelwizards/internal/domain/models"
	"travelwizards/internal/utils"
)

type LocationRepository struct {
	DB      *sql.DB
	Dialect intdb.Dialect
}

func (r LocationRepository) db() (*sql.DB, intdb.Dialect) { return resolve(r.DB, r.Dialect) }

// ListLocations returns every location ordered by name.
func (r LocationRepository) ListLocations(ctx context.Context) ([]models.Location, error) {
	conn, _ := r.db()
	if conn == nil {
		return nil, fmt.Errorf("db not available")
	}
	rows, err := conn.QueryContext(ctx, `SELECT id, full_name, abbreviation FROM locations ORDER BY full_name, id`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	out := []models.Location{}
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.ID, &l.FullName, &l.Abbreviation); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// FindLocationID resolves a location by exact full name.
func (r LocationRepository) FindLocationID(ctx context.Context, name string) (int64, bool, error) {
	conn, d := r.db()
	if conn == nil {
		return 0, false, fmt.Errorf("db not available")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, nil
	}
	var id int64
	err := conn.QueryRowContext(ctx, d.Rebind(`SELECT id FROM locations WHERE full_name = ? ORDER BY id LIMIT 1`), name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find location %q: %w", name, err)
	}
	return id, true, nil
}

// InsertLocation stores a new location and returns its id.
func (r LocationRepository) InsertLocation(ctx context.Context, loc models.Location) (int64, error) {
	conn, d := r.db()
	if conn == nil {
		return 0, fmt.Errorf("db not available")
	}
	abbr := strings.ToUpper(strings.TrimSpace(loc.Abbreviation))
	if abbr == "" {
		abbr = utils.Abbreviate(loc.FullName)
	}
	id, err := d.InsertID(ctx, conn, `INSERT INTO locations (full_name, abbreviation) VALUES (?, ?)`,
		strings.TrimSpace(loc.FullName), abbr)
	if err != nil {
		return 0, fmt.Errorf("insert location: %w", err)
	}
	return id, nil
}
