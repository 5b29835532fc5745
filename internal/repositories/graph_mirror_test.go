package repositories

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"travelwizards/internal/domain/models"
	"travelwizards/internal/graph"
)

func TestGraphMirrorFindLocationID(t *testing.T) {
	client := graph.NewMemoryClient()
	client.PushReadResult(graph.Result{Records: []graph.Record{{"id": int64(1)}}})
	client.PushReadResult(graph.Result{})

	m := GraphMirror{Client: client}
	id, ok, err := m.FindLocationID(context.Background(), "Iasi")
	if err != nil || !ok || id != 1 {
		t.Fatalf("unexpected lookup: %d %v %v", id, ok, err)
	}
	if _, ok, err := m.FindLocationID(context.Background(), "Atlantis"); err != nil || ok {
		t.Fatalf("unknown location should miss cleanly: %v %v", ok, err)
	}
	if calls := client.ReadCalls(); calls[0].Params["name"] != "Iasi" {
		t.Fatalf("unexpected params: %+v", calls[0].Params)
	}
}

func TestGraphMirrorFindLocationIDBadRecord(t *testing.T) {
	client := graph.NewMemoryClient()
	client.PushReadResult(graph.Result{Records: []graph.Record{{"id": "one"}}})

	_, ok, err := GraphMirror{Client: client}.FindLocationID(context.Background(), "Iasi")
	if err == nil || ok {
		t.Fatalf("expected an error for a record without an integer id, got ok=%v err=%v", ok, err)
	}
}

func TestGraphMirrorListEdgesFrom(t *testing.T) {
	dep := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	client := graph.NewMemoryClient()
	client.PushReadResult(graph.Result{Records: []graph.Record{
		{
			"route_id": int64(10), "mode": "bus", "company_id": int64(3),
			"dep_id": int64(1), "dep_name": "Iasi", "dep_abbr": "IAS",
			"arr_id": int64(2), "arr_name": "Bucuresti", "arr_abbr": "BUC",
			"schedule_id": int64(100), "departure": dep.Unix(), "arrival": dep.Add(4 * time.Hour).Unix(),
			"price": int64(45), "frequency": int64(86400), "valid_from": int64(0), "valid_until": nil,
		},
		{
			"route_id": int64(11), "mode": "ship",
			"dep_id": int64(1), "dep_name": "Iasi", "arr_id": int64(4), "arr_name": "Constanta",
			"schedule_id": nil,
		},
	}})

	edges, err := GraphMirror{Client: client}.ListEdgesFrom(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(edges) != 2 || len(edges[0].Schedules) != 1 || len(edges[1].Schedules) != 0 {
		t.Fatalf("unexpected edges: %+v", edges)
	}
	s := edges[0].Schedules[0]
	if !s.DepartureTime.Equal(dep) || s.Hours() != 4 || s.Frequency != 24*time.Hour {
		t.Fatalf("unexpected schedule: %+v", s)
	}
	if !s.ValidFrom.IsZero() || !s.ValidUntil.IsZero() {
		t.Fatalf("open bounds should decode as zero times: %+v", s)
	}
	if edges[1].Mode != models.ModeShip || edges[1].Arrival.FullName != "Constanta" {
		t.Fatalf("unexpected second edge: %+v", edges[1])
	}
}

func TestGraphMirrorSyncWritesAllSteps(t *testing.T) {
	client := graph.NewMemoryClient()
	dep := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	locs := []models.Location{{ID: 1, FullName: "Iasi"}, {ID: 2, FullName: "Bucuresti"}}
	edges := []models.RouteEdge{{
		ID: 10, Departure: locs[0], Arrival: locs[1], Mode: models.ModeBus,
		Schedules: []models.Schedule{{ID: 100, RouteID: 10, DepartureTime: dep, ArrivalTime: dep.Add(4 * time.Hour), Price: 45}},
	}}

	stats, err := GraphMirror{Client: client}.Sync(context.Background(), locs, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Locations != 2 || stats.Routes != 1 || stats.Schedules != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	writes := client.WriteCalls()
	if len(writes) != 4 {
		t.Fatalf("expected 4 writes, got %d", len(writes))
	}
	prune := writes[3]
	if !strings.Contains(prune.Query, "n:Location AND NOT n.id IN $locations") {
		t.Fatalf("prune must drop stale locations: %s", prune.Query)
	}
	if ids := prune.Params["locations"].([]any); len(ids) != 2 || ids[0] != int64(1) || ids[1] != int64(2) {
		t.Fatalf("unexpected location ids: %+v", prune.Params["locations"])
	}
	rows := writes[2].Params["rows"].([]any)
	row := rows[0].(map[string]any)
	if row["departure"] != dep.Unix() || row["valid_from"] != int64(0) {
		t.Fatalf("unexpected schedule row: %+v", row)
	}
}

func TestGraphMirrorPropagatesErrors(t *testing.T) {
	boom := errors.New("bolt down")
	m := GraphMirror{Client: graph.NewMemoryClient().WithError(boom)}
	if _, err := m.ListEdgesFrom(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
	if _, err := m.Sync(context.Background(), nil, nil); !errors.Is(err, boom) {
		t.Fatalf("expected write error, got %v", err)
	}
}
