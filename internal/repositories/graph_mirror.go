package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"travelwizards/internal/domain/models"
	"travelwizards/internal/graph"
)

// GraphMirror reads the schedule graph from a Neo4j projection kept in sync
// by cmd/graphsync. Times are stored as Unix seconds; 0 marks an open
// validity bound.
//
//	(:Route)-[:DEPARTS_FROM]->(:Location)
//	(:Route)-[:ARRIVES_AT]->(:Location)
//	(:Schedule)-[:RUNS_ON]->(:Route)
type GraphMirror struct {
	Client graph.Client
}

const mirrorFindLocation = `
MATCH (l:Location {name: $name})
RETURN l.id AS id
ORDER BY id
LIMIT 1`

const mirrorEdgesFrom = `
MATCH (r:Route)-[:DEPARTS_FROM]->(d:Location {id: $id})
MATCH (r)-[:ARRIVES_AT]->(a:Location)
OPTIONAL MATCH (s:Schedule)-[:RUNS_ON]->(r)
RETURN r.id AS route_id, r.mode AS mode, r.company_id AS company_id,
	d.id AS dep_id, d.name AS dep_name, d.abbreviation AS dep_abbr,
	a.id AS arr_id, a.name AS arr_name, a.abbreviation AS arr_abbr,
	s.id AS schedule_id, s.departure AS departure, s.arrival AS arrival,
	s.price AS price, s.frequency AS frequency, s.valid_from AS valid_from, s.valid_until AS valid_until
ORDER BY route_id, schedule_id`

func (m GraphMirror) FindLocationID(ctx context.Context, name string) (int64, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, nil
	}
	res, err := m.Client.ExecuteRead(ctx, mirrorFindLocation, map[string]any{"name": name})
	if err != nil {
		return 0, false, fmt.Errorf("graph find location: %w", err)
	}
	if len(res.Records) == 0 {
		return 0, false, nil
	}
	id, ok := res.Records[0].Int64("id")
	if !ok {
		return 0, false, fmt.Errorf("graph find location %q: record has no integer id", name)
	}
	return id, true, nil
}

func (m GraphMirror) ListEdgesFrom(ctx context.Context, locationID int64) ([]models.RouteEdge, error) {
	res, err := m.Client.ExecuteRead(ctx, mirrorEdgesFrom, map[string]any{"id": locationID})
	if err != nil {
		return nil, fmt.Errorf("graph list edges: %w", err)
	}

	out := []models.RouteEdge{}
	for _, rec := range res.Records {
		routeID, _ := rec.Int64("route_id")
		if n := len(out); n == 0 || out[n-1].ID != routeID {
			e := models.RouteEdge{ID: routeID, Mode: models.TransportMode(rec.String("mode"))}
			e.CompanyID, _ = rec.Int64("company_id")
			e.Departure.ID, _ = rec.Int64("dep_id")
			e.Departure.FullName, e.Departure.Abbreviation = rec.String("dep_name"), rec.String("dep_abbr")
			e.Arrival.ID, _ = rec.Int64("arr_id")
			e.Arrival.FullName, e.Arrival.Abbreviation = rec.String("arr_name"), rec.String("arr_abbr")
			out = append(out, e)
		}
		schedID, ok := rec.Int64("schedule_id")
		if !ok {
			continue
		}
		price, _ := rec.Int64("price")
		freq, _ := rec.Int64("frequency")
		last := &out[len(out)-1]
		last.Schedules = append(last.Schedules, models.Schedule{
			ID:            schedID,
			RouteID:       routeID,
			DepartureTime: epoch(rec, "departure"),
			ArrivalTime:   epoch(rec, "arrival"),
			Price:         price,
			Frequency:     time.Duration(freq) * time.Second,
			ValidFrom:     epoch(rec, "valid_from"),
			ValidUntil:    epoch(rec, "valid_until"),
		})
	}
	return out, nil
}

// Ping checks the Bolt connection.
func (m GraphMirror) Ping(ctx context.Context) error {
	return m.Client.VerifyConnectivity(ctx)
}

const mirrorMergeLocations = `
UNWIND $rows AS row
MERGE (l:Location {id: row.id})
SET l.name = row.name, l.abbreviation = row.abbreviation`

const mirrorMergeRoutes = `
UNWIND $rows AS row
MATCH (d:Location {id: row.dep_id}), (a:Location {id: row.arr_id})
MERGE (r:Route {id: row.id})
SET r.mode = row.mode, r.company_id = row.company_id
MERGE (r)-[:DEPARTS_FROM]->(d)
MERGE (r)-[:ARRIVES_AT]->(a)`

const mirrorMergeSchedules = `
UNWIND $rows AS row
MATCH (r:Route {id: row.route_id})
MERGE (s:Schedule {id: row.id})
SET s.departure = row.departure, s.arrival = row.arrival, s.price = row.price,
	s.frequency = row.frequency, s.valid_from = row.valid_from, s.valid_until = row.valid_until
MERGE (s)-[:RUNS_ON]->(r)`

const mirrorPrune = `
MATCH (n)
WHERE (n:Schedule AND NOT n.id IN $schedules)
	OR (n:Route AND NOT n.id IN $routes)
	OR (n:Location AND NOT n.id IN $locations)
DETACH DELETE n`

// SyncStats counts what Sync wrote.
type SyncStats struct {
	Locations int
	Routes    int
	Schedules int
}

// Sync projects locations and edges into the graph. Locations, routes and
// schedules no longer present in the input are removed.
func (m GraphMirror) Sync(ctx context.Context, locations []models.Location, edges []models.RouteEdge) (SyncStats, error) {
	locRows := make([]any, 0, len(locations))
	locIDs := make([]any, 0, len(locations))
	for _, l := range locations {
		locIDs = append(locIDs, l.ID)
		locRows = append(locRows, map[string]any{"id": l.ID, "name": l.FullName, "abbreviation": l.Abbreviation})
	}

	routeRows := make([]any, 0, len(edges))
	schedRows := []any{}
	routeIDs := make([]any, 0, len(edges))
	schedIDs := []any{}
	for _, e := range edges {
		routeIDs = append(routeIDs, e.ID)
		routeRows = append(routeRows, map[string]any{
			"id": e.ID, "dep_id": e.Departure.ID, "arr_id": e.Arrival.ID,
			"mode": string(e.Mode), "company_id": e.CompanyID,
		})
		for _, s := range e.Schedules {
			schedIDs = append(schedIDs, s.ID)
			schedRows = append(schedRows, map[string]any{
				"id": s.ID, "route_id": e.ID,
				"departure": unix(s.DepartureTime), "arrival": unix(s.ArrivalTime),
				"price": s.Price, "frequency": int64(s.Frequency / time.Second),
				"valid_from": unix(s.ValidFrom), "valid_until": unix(s.ValidUntil),
			})
		}
	}

	steps := []struct {
		name   string
		cypher string
		params map[string]any
	}{
		{"locations", mirrorMergeLocations, map[string]any{"rows": locRows}},
		{"routes", mirrorMergeRoutes, map[string]any{"rows": routeRows}},
		{"schedules", mirrorMergeSchedules, map[string]any{"rows": schedRows}},
		{"prune", mirrorPrune, map[string]any{"locations": locIDs, "routes": routeIDs, "schedules": schedIDs}},
	}
	for _, st := range steps {
		if _, err := m.Client.ExecuteWrite(ctx, st.cypher, st.params); err != nil {
			return SyncStats{}, fmt.Errorf("graph sync %s: %w", st.name, err)
		}
	}
	return SyncStats{Locations: len(locRows), Routes: len(routeRows), Schedules: len(schedRows)}, nil
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func epoch(rec graph.Record, key string) time.Time {
	v, ok := rec.Int64(key)
	if !ok || v == 0 {
		return time.Time{}
	}
	return time.Unix(v, 0).UTC()
}
