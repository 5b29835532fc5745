// Package events publishes booking lifecycle notifications.
package events

import (
	"context"
	"sync"
	"time"
)

const (
	Exchange         = "booking_topic"
	BookingReserved  = "booking.reserved"
	BookingCancelled = "booking.cancelled"
)

// BookingEvent is the JSON body of every booking notification.
type BookingEvent struct {
	Type           string    `json:"type"`
	BookingID      int64     `json:"bookingId"`
	Reference      string    `json:"reference,omitempty"`
	ScheduleIDs    []int64   `json:"scheduleIds"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	BookingDeleted bool      `json:"bookingDeleted,omitempty"`
	RequestID      string    `json:"requestId,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Publisher delivers an event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
	Close() error
}

// Noop discards events. It is used when AMQP_URL is unset.
type Noop struct{}

func (Noop) Publish(context.Context, BookingEvent) error { return nil }
func (Noop) Close() error                                { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []BookingEvent
	Err    error
}

func (r *Recorder) Publish(_ context.Context, ev BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of what was published.
func (r *Recorder) Events() []BookingEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]BookingEvent(nil), r.events...)
}
