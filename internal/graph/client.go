package graph

import (
	"context"
	"errors"
)

// Client is the slice of a Bolt driver the schedule mirror needs.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result holds the fully consumed records of one statement.
type Result struct {
	Records []Record
}

// Record maps return aliases to values.
type Record map[string]any

// Int64 reads an integer column, accepting the numeric types drivers return.
func (r Record) Int64(key string) (int64, bool) {
	switch v := r[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// String reads a string column; missing or null values yield "".
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Options configures NewNeo4jClient.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI is returned when no Bolt URI is configured.
var ErrMissingURI = errors.New("graph URI is required")
