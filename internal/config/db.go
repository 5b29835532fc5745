package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"travelwizards/internal/db"
)

var (
	DB      *sql.DB
	Dialect db.Dialect = db.MySQL
	dbMu    sync.Mutex
)

const (
	defaultMySQLDSN = "root:@tcp(127.0.0.1:3306)/travel_wizards"
	sqlitePragmas   = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"
)

// OpenDB opens and pings a pool for the configured driver.
func OpenDB(env Env) (*sql.DB, db.Dialect, error) {
	dialect, err := db.ParseDialect(env.DBDriver)
	if err != nil {
		return nil, "", err
	}

	dsn := buildDSN(dialect, env.DBDSN)
	conn, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", dialect, err)
	}

	if dialect == db.SQLite {
		// single writer
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(time.Hour)
	} else {
		maxOpen := env.DBMaxOpenConns
		if maxOpen <= 0 {
			maxOpen = 25
		}
		conn.SetMaxOpenConns(maxOpen)
		conn.SetMaxIdleConns(maxOpen)
		conn.SetConnMaxLifetime(10 * time.Minute)
		conn.SetConnMaxIdleTime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, "", fmt.Errorf("ping %s: %w", dialect, err)
	}
	return conn, dialect, nil
}

// ConnectDB initializes the shared DB connection (idempotent).
func ConnectDB(env Env) *sql.DB {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		return DB
	}

	conn, dialect, err := OpenDB(env)
	if err != nil {
		log.Fatalf("database unavailable: %v", err)
	}

	DB = conn
	Dialect = dialect
	log.Printf("connected to %s database", dialect)
	return DB
}

// EnsureDB pings the shared pool.
func EnsureDB(ctx context.Context) error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB == nil {
		return fmt.Errorf("db not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return DB.PingContext(ctx)
}

func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		_ = DB.Close()
		DB = nil
	}
}

func buildDSN(d db.Dialect, dsn string) string {
	dsn = strings.TrimSpace(dsn)
	switch d {
	case db.SQLite:
		if dsn == "" {
			dsn = "travel_wizards.db"
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?" + sqlitePragmas
		}
		return dsn
	case db.Postgres:
		return dsn
	default:
		if dsn == "" {
			dsn = defaultMySQLDSN
		}
		if !strings.Contains(dsn, "parseTime") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
		}
		return dsn
	}
}
