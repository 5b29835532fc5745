package models

import "time"

// Leg is one resolved (edge, schedule) hop of an itinerary.
type Leg struct {
	RouteID       int64         `json:"routeId"`
	ScheduleID    int64         `json:"scheduleId"`
	Mode          TransportMode `json:"mode"`
	DepartureName string        `json:"departureName"`
	ArrivalName   string        `json:"arrivalName"`
	DepartureTime time.Time     `json:"departureTime"`
	ArrivalTime   time.Time     `json:"arrivalTime"`
	Price         int64         `json:"price"`
	Hours         float64       `json:"hours"`
}

// Itinerary is a ranked search result. It is computed per query and never
// stored.
type Itinerary struct {
	RouteIDs      []int64   `json:"routeIds"`
	Path          string    `json:"path"`
	DepartureName string    `json:"departureName"`
	ArrivalName   string    `json:"arrivalName"`
	HopCount      int       `json:"hopCount"`
	TotalPrice    int64     `json:"totalPrice"`
	TotalHours    float64   `json:"totalHours"`
	WeightedScore float64   `json:"weightedScore"`
	DepartureTime time.Time `json:"departureTime"`
	ArrivalTime   time.Time `json:"arrivalTime"`
	Legs          []Leg     `json:"legs,omitempty"`
}

// BookedLegs returns the legs a reservation must resolve. An itinerary
// without legs stands for a single direct leg described by its own fields.
func (it Itinerary) BookedLegs() []Leg {
	if len(it.Legs) > 0 {
		return it.Legs
	}
	return []Leg{{
		DepartureName: it.DepartureName,
		ArrivalName:   it.ArrivalName,
		DepartureTime: it.DepartureTime,
		ArrivalTime:   it.ArrivalTime,
		Price:         it.TotalPrice,
		Hours:         it.TotalHours,
	}}
}
