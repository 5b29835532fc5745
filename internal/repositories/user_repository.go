package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intdb "travelwizards/internal/db"
	"travelwizards/internal/domain"
)

// UserRecord is the subset of users the session collaborator needs.
type UserRecord struct {
	ID        int64
	Email     string
	CompanyID int64
	Role      string
}

type UserRepository struct {
	DB      *sql.DB
	Dialect intdb.Dialect
}

func (r UserRepository) db() (*sql.DB, intdb.Dialect) { return resolve(r.DB, r.Dialect) }

// FindByEmail looks a user up by email (case-insensitive).
func (r UserRepository) FindByEmail(ctx context.Context, email string) (UserRecord, error) {
	conn, d := r.db()
	if conn == nil {
		return UserRecord{}, fmt.Errorf("db not available")
	}
	var u UserRecord
	err := conn.QueryRowContext(ctx, d.Rebind(`
		SELECT id, email, COALESCE(company_id, 0), role
		FROM users WHERE LOWER(email) = ? LIMIT 1`), strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Email, &u.CompanyID, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return UserRecord{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return UserRecord{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// CompanyName returns the name of a company, "" when it does not exist.
func (r UserRepository) CompanyName(ctx context.Context, companyID int64) (string, error) {
	conn, d := r.db()
	if conn == nil {
		return "", fmt.Errorf("db not available")
	}
	var name string
	err := conn.QueryRowContext(ctx, d.Rebind(`SELECT company_name FROM companies WHERE id = ? LIMIT 1`), companyID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("company name: %w", err)
	}
	return name, nil
}
