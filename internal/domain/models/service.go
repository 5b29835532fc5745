package models

import "time"

// NewService is the company-side input for a route plus its first schedule.
type NewService struct {
	CompanyID     int64         `json:"companyId"`
	DepartureName string        `json:"departureName"`
	ArrivalName   string        `json:"arrivalName"`
	Mode          string        `json:"mode"`
	DepartureTime time.Time     `json:"departureTime"`
	ArrivalTime   time.Time     `json:"arrivalTime"`
	Price         int64         `json:"price"`
	Frequency     time.Duration `json:"frequency"`
	ValidFrom     time.Time     `json:"validFrom"`
	ValidUntil    time.Time     `json:"validUntil"`
}

// ServiceListing is one schedule in the company catalogue.
type ServiceListing struct {
	ScheduleID    int64         `json:"scheduleId"`
	RouteID       int64         `json:"routeId"`
	Departure     string        `json:"departure"`
	Arrival       string        `json:"arrival"`
	Mode          TransportMode `json:"mode"`
	Price         int64         `json:"price"`
	PriceRatio    float64       `json:"priceRatio"`
	DepartureTime time.Time     `json:"departureTime"`
	ArrivalTime   time.Time     `json:"arrivalTime"`
}
