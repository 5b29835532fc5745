package pathfinder

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"travelwizards/internal/domain"
	"travelwizards/internal/domain/models"
	"travelwizards/internal/utils"
)

// GraphSource is the read side of the schedule graph store.
type GraphSource interface {
	// FindLocationID resolves a location by its full name. ok is false when
	// no location has that name.
	FindLocationID(ctx context.Context, name string) (id int64, ok bool, err error)
	// ListEdgesFrom returns every route leaving the location, schedules
	// included.
	ListEdgesFrom(ctx context.Context, locationID int64) ([]models.RouteEdge, error)
}

// Options bound the search.
type Options struct {
	// MaxLegs caps the number of legs per itinerary. 0 means unbounded; the
	// no-repeated-edge rule still guarantees termination.
	MaxLegs int
	// MinConnection is the minimum transfer time between consecutive legs.
	MinConnection time.Duration
}

// Enumerator expands every cycle-free (route, schedule) chain from a
// departure location and keeps those ending at the arrival location.
type Enumerator struct {
	Source  GraphSource
	Ranker  Ranker
	Options Options
}

func NewEnumerator(src GraphSource, opts Options) *Enumerator {
	return &Enumerator{Source: src, Ranker: PriceThenScore{}, Options: opts}
}

// WithRanker returns a copy of e ordering results with r.
func (e *Enumerator) WithRanker(r Ranker) *Enumerator {
	cp := *e
	cp.Ranker = r
	return &cp
}

type step struct {
	edge  *models.RouteEdge
	sched models.Schedule
}

type partial struct {
	steps []step
	price int64
	hours float64
}

func (p partial) last() step { return p.steps[len(p.steps)-1] }

func (p partial) usesEdge(id int64) bool {
	for _, s := range p.steps {
		if s.edge.ID == id {
			return true
		}
	}
	return false
}

func (p partial) extend(s step) partial {
	steps := make([]step, len(p.steps), len(p.steps)+1)
	copy(steps, p.steps)
	return partial{
		steps: append(steps, s),
		price: p.price + s.sched.Price,
		hours: p.hours + s.sched.Hours(),
	}
}

// FindPaths returns the ranked itineraries from departureName to
// arrivalName. Unknown names yield an empty slice and a nil error.
func (e *Enumerator) FindPaths(ctx context.Context, departureName, arrivalName string) ([]models.Itinerary, error) {
	if e == nil || e.Source == nil {
		return nil, fmt.Errorf("pathfinder: graph source not configured")
	}
	out := []models.Itinerary{}

	fromID, ok, err := e.Source.FindLocationID(ctx, departureName)
	if err != nil {
		return nil, fmt.Errorf("resolve departure: %w", err)
	}
	if !ok {
		return out, nil
	}
	toID, ok, err := e.Source.FindLocationID(ctx, arrivalName)
	if err != nil {
		return nil, fmt.Errorf("resolve arrival: %w", err)
	}
	if !ok {
		return out, nil
	}

	adj := e.adjacency(ctx)
	seeds, err := adj(fromID)
	if err != nil {
		return nil, err
	}

	queue := make([]partial, 0, len(seeds))
	for i := range seeds {
		for _, sc := range seeds[i].Schedules {
			queue = append(queue, partial{}.extend(step{edge: &seeds[i], sched: sc}))
		}
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur := queue[0]
		queue = queue[1:]

		tail := cur.last()
		if tail.edge.Arrival.ID == toID {
			out = append(out, toItinerary(cur))
		}
		if e.Options.MaxLegs > 0 && len(cur.steps) >= e.Options.MaxLegs {
			continue
		}

		next, err := adj(tail.edge.Arrival.ID)
		if err != nil {
			return nil, err
		}
		earliest := tail.sched.ArrivalTime.Add(e.Options.MinConnection)
		for i := range next {
			if cur.usesEdge(next[i].ID) {
				continue
			}
			for _, sc := range next[i].Schedules {
				if sc.DepartureTime.Before(earliest) {
					continue
				}
				queue = append(queue, cur.extend(step{edge: &next[i], sched: sc}))
			}
		}
	}

	ranker := e.Ranker
	if ranker == nil {
		ranker = PriceThenScore{}
	}
	slices.SortStableFunc(out, ranker.Compare)
	return out, nil
}

// adjacency memoises ListEdgesFrom for one search and drops unusable
// schedules once per location.
func (e *Enumerator) adjacency(ctx context.Context) func(int64) ([]models.RouteEdge, error) {
	cache := map[int64][]models.RouteEdge{}
	reqID := domain.RequestIDFromContext(ctx)
	return func(id int64) ([]models.RouteEdge, error) {
		if edges, ok := cache[id]; ok {
			return edges, nil
		}
		edges, err := e.Source.ListEdgesFrom(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list edges from %d: %w", id, err)
		}
		edges = slices.Clone(edges)
		for i := range edges {
			kept := edges[i].Schedules[:0:0]
			for _, sc := range edges[i].Schedules {
				if !sc.Usable() {
					utils.LogWarn(reqID, "pathfinder", "skip_schedule",
						fmt.Sprintf("schedule %d on route %d unusable (departure %s, arrival %s)",
							sc.ID, edges[i].ID, sc.DepartureTime.Format(time.RFC3339), sc.ArrivalTime.Format(time.RFC3339)))
					continue
				}
				kept = append(kept, sc)
			}
			edges[i].Schedules = kept
		}
		cache[id] = edges
		return edges, nil
	}
}

func toItinerary(p partial) models.Itinerary {
	first, last := p.steps[0], p.last()
	ids := make([]int64, 0, len(p.steps))
	labels := make([]string, 0, len(p.steps))
	legs := make([]models.Leg, 0, len(p.steps))
	for _, s := range p.steps {
		ids = append(ids, s.edge.ID)
		labels = append(labels, strconv.FormatInt(s.edge.ID, 10))
		legs = append(legs, models.Leg{
			RouteID:       s.edge.ID,
			ScheduleID:    s.sched.ID,
			Mode:          s.edge.Mode,
			DepartureName: s.edge.Departure.FullName,
			ArrivalName:   s.edge.Arrival.FullName,
			DepartureTime: s.sched.DepartureTime,
			ArrivalTime:   s.sched.ArrivalTime,
			Price:         s.sched.Price,
			Hours:         utils.Round2(s.sched.Hours()),
		})
	}
	return models.Itinerary{
		RouteIDs:      ids,
		Path:          strings.Join(labels, " -> "),
		DepartureName: first.edge.Departure.FullName,
		ArrivalName:   last.edge.Arrival.FullName,
		HopCount:      len(p.steps) - 1,
		TotalPrice:    p.price,
		TotalHours:    utils.Round2(p.hours),
		WeightedScore: utils.Round2(float64(p.price) + p.hours),
		DepartureTime: first.sched.DepartureTime,
		ArrivalTime:   last.sched.ArrivalTime,
		Legs:          legs,
	}
}
