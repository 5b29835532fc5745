package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBDriver       string
	DBDSN          string
	DBAutoMigrate  bool
	DBMaxOpenConns int

	JWTSecret          string
	CORSAllowedOrigins []string

	GraphSource   string
	Neo4jURI      string
	Neo4jUsername string
	Neo4jPassword string
	Neo4jDatabase string

	AMQPURL string

	LogLevel  string
	LogFormat string

	SearchMaxLegs       int
	SearchMinConnection time.Duration
}

// LoadEnv reads .env then .env.local (which wins) and builds Env from the
// process environment. Missing files are ignored.
func LoadEnv() Env {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	return Env{
		AppAddr: getString("APP_ADDR", ":8080"),
		GinMode: getString("GIN_MODE", ""),

		DBDriver:       getString("DB_DRIVER", "mysql"),
		DBDSN:          getString("DB_DSN", ""),
		DBAutoMigrate:  getBool("DB_AUTO_MIGRATE", false),
		DBMaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25),

		JWTSecret:          getString("JWT_SECRET", ""),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		GraphSource:   strings.ToLower(getString("GRAPH_SOURCE", "sql")),
		Neo4jURI:      getString("NEO4J_URI", ""),
		Neo4jUsername: getString("NEO4J_USERNAME", ""),
		Neo4jPassword: getString("NEO4J_PASSWORD", ""),
		Neo4jDatabase: getString("NEO4J_DATABASE", "neo4j"),

		AMQPURL: getString("AMQP_URL", ""),

		LogLevel:  getString("LOG_LEVEL", "info"),
		LogFormat: getString("LOG_FORMAT", "text"),

		SearchMaxLegs:       getInt("SEARCH_MAX_LEGS", 0),
		SearchMinConnection: getDuration("SEARCH_MIN_CONNECTION", 0),
	}
}

func getString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func getList(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
