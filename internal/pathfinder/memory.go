package pathfinder

import (
	"context"
	"slices"
	"sync"

	"travelwizards/internal/domain/models"
)

// MemoryGraph is an in-process GraphSource keyed by departure location.
// It backs tests and snapshot searches over a preloaded edge list.
type MemoryGraph struct {
	mu        sync.RWMutex
	locations map[string]models.Location
	edges     map[int64][]models.RouteEdge
}

func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		locations: map[string]models.Location{},
		edges:     map[int64][]models.RouteEdge{},
	}
}

// AddLocation registers a location under its full name.
func (g *MemoryGraph) AddLocation(loc models.Location) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locations[loc.FullName] = loc
}

// AddEdge registers a route and both of its endpoints.
func (g *MemoryGraph) AddEdge(edge models.RouteEdge) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locations[edge.Departure.FullName] = edge.Departure
	g.locations[edge.Arrival.FullName] = edge.Arrival
	g.edges[edge.Departure.ID] = append(g.edges[edge.Departure.ID], edge)
}

// Load builds a MemoryGraph from a full edge list.
func Load(edges []models.RouteEdge) *MemoryGraph {
	g := NewMemoryGraph()
	for _, e := range edges {
		g.AddEdge(e)
	}
	return g
}

func (g *MemoryGraph) FindLocationID(_ context.Context, name string) (int64, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	loc, ok := g.locations[name]
	return loc.ID, ok, nil
}

func (g *MemoryGraph) ListEdgesFrom(_ context.Context, locationID int64) ([]models.RouteEdge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.edges[locationID]), nil
}

// EdgeCount is the number of routes held.
func (g *MemoryGraph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, es := range g.edges {
		n += len(es)
	}
	return n
}
