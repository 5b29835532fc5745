package pathfinder

import (
	"cmp"

	"travelwizards/internal/domain/models"
)

// Ranker orders itineraries. Compare returns a negative number when a sorts
// before b, zero when they rank equal and a positive number otherwise.
type Ranker interface {
	Compare(a, b models.Itinerary) int
}

// RankerFunc adapts a plain function to Ranker.
type RankerFunc func(a, b models.Itinerary) int

func (f RankerFunc) Compare(a, b models.Itinerary) int { return f(a, b) }

// PriceThenScore sorts by total price, then by weighted score.
type PriceThenScore struct{}

func (PriceThenScore) Compare(a, b models.Itinerary) int {
	if c := cmp.Compare(a.TotalPrice, b.TotalPrice); c != 0 {
		return c
	}
	return cmp.Compare(a.WeightedScore, b.WeightedScore)
}

// FastestFirst sorts by total hours, then by price.
type FastestFirst struct{}

func (FastestFirst) Compare(a, b models.Itinerary) int {
	if c := cmp.Compare(a.TotalHours, b.TotalHours); c != 0 {
		return c
	}
	return cmp.Compare(a.TotalPrice, b.TotalPrice)
}

// RankerByName resolves the sort query parameter. Unknown names fall back to
// PriceThenScore.
func RankerByName(name string) Ranker {
	switch name {
	case "fastest", "duration":
		return FastestFirst{}
	default:
		return PriceThenScore{}
	}
}
