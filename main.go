package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "travelwizards/internal/config"
	intdb "travelwizards/internal/db"
	"travelwizards/internal/events"
	"travelwizards/internal/graph"
	router "travelwizards/internal/http"
	"travelwizards/internal/http/handlers"
	"travelwizards/internal/pathfinder"
	"travelwizards/internal/repositories"
	"travelwizards/internal/services"
	"travelwizards/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	utils.SetLogger(utils.NewLogger(os.Stdout, env.LogLevel, env.LogFormat))
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	conn := intconfig.ConnectDB(env)
	defer intconfig.CloseDB()
	dialect := intconfig.Dialect

	ctx := context.Background()
	if env.DBAutoMigrate {
		if err := intdb.EnsureSchema(ctx, conn, dialect); err != nil {
			log.Fatalf("schema migration failed: %v", err)
		}
		utils.LogEvent("", "main", "migrate", "schema ensured for "+string(dialect))
	}

	source, closeGraph := graphSource(ctx, env, conn, dialect)
	defer closeGraph()

	publisher := eventPublisher(env)
	defer publisher.Close()

	hd := handlers.Handler{
		DB:      conn,
		Dialect: dialect,
		Search: pathfinder.NewEnumerator(source, pathfinder.Options{
			MaxLegs:       env.SearchMaxLegs,
			MinConnection: env.SearchMinConnection,
		}),
		Reservations: services.NewReservationService(conn, dialect, publisher),
		Catalog:      services.NewScheduleService(conn, dialect),
		Boarding:     services.NewBoardingService(conn, dialect),
		Documents:    services.TicketService{Bookings: repositories.BookingRepository{DB: conn, Dialect: dialect}},
		Accounts:     repositories.UserRepository{DB: conn, Dialect: dialect},
	}
	r := router.NewRouter(env, hd)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		utils.LogEvent("", "main", "listen", "server listening on "+env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	utils.LogEvent("", "main", "shutdown", "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}

	utils.LogEvent("", "main", "shutdown", "server stopped")
}

// graphSource picks the store the enumerator reads. GRAPH_SOURCE=neo4j uses
// the mirror kept by cmd/graphsync and falls back to SQL when it is
// unreachable.
func graphSource(ctx context.Context, env intconfig.Env, conn *sql.DB, d intdb.Dialect) (pathfinder.GraphSource, func()) {
	sqlSource := repositories.RouteRepository{DB: conn, Dialect: d}
	if env.GraphSource != "neo4j" {
		return sqlSource, func() {}
	}
	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:      env.Neo4jURI,
		Database: env.Neo4jDatabase,
		Username: env.Neo4jUsername,
		Password: env.Neo4jPassword,
	})
	if err != nil {
		utils.LogWarn("", "main", "graph", "neo4j unavailable, using sql: "+err.Error())
		return sqlSource, func() {}
	}
	mirror := repositories.GraphMirror{Client: client}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mirror.Ping(pingCtx); err != nil {
		utils.LogWarn("", "main", "graph", "neo4j unreachable, using sql: "+err.Error())
		_ = client.Close(ctx)
		return sqlSource, func() {}
	}
	utils.LogEvent("", "main", "graph", "route search reads the neo4j mirror")
	return mirror, func() { _ = client.Close(context.Background()) }
}

func eventPublisher(env intconfig.Env) events.Publisher {
	if env.AMQPURL == "" {
		return events.Noop{}
	}
	pub, err := events.DialAMQP(env.AMQPURL, events.Exchange)
	if err != nil {
		utils.LogWarn("", "main", "events", "amqp unavailable, booking events disabled: "+err.Error())
		return events.Noop{}
	}
	utils.LogEvent("", "main", "events", "publishing booking events to "+events.Exchange)
	return pub
}
