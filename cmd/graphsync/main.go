// Command graphsync projects the SQL route graph into Neo4j so the API can
// run with GRAPH_SOURCE=neo4j.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	intconfig "travelwizards/internal/config"
	"travelwizards/internal/graph"
	"travelwizards/internal/repositories"
	"travelwizards/internal/utils"
)

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "overall sync timeout")
	flag.Parse()

	env := intconfig.LoadEnv()
	utils.SetLogger(utils.NewLogger(os.Stderr, env.LogLevel, env.LogFormat))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn := intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:      env.Neo4jURI,
		Database: env.Neo4jDatabase,
		Username: env.Neo4jUsername,
		Password: env.Neo4jPassword,
	})
	if err != nil {
		log.Fatalf("neo4j: %v", err)
	}
	defer client.Close(context.Background())

	mirror := repositories.GraphMirror{Client: client}
	if err := mirror.Ping(ctx); err != nil {
		log.Fatalf("neo4j unreachable: %v", err)
	}

	routes := repositories.RouteRepository{DB: conn, Dialect: intconfig.Dialect}
	locations, err := routes.ListLocations(ctx)
	if err != nil {
		log.Fatalf("load locations: %v", err)
	}
	edges, err := routes.ListAllEdges(ctx)
	if err != nil {
		log.Fatalf("load routes: %v", err)
	}

	stats, err := mirror.Sync(ctx, locations, edges)
	if err != nil {
		log.Fatalf("sync: %v", err)
	}
	utils.LogEvent("", "graphsync", "sync",
		fmt.Sprintf("locations=%d routes=%d schedules=%d", stats.Locations, stats.Routes, stats.Schedules))
}
