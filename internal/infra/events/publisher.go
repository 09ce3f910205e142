// Package events delivers lifecycle events to interested services after a
// mutation has committed. Delivery is strictly best-effort: a publisher never
// returns an error to its caller and never blocks a request beyond the
// configured publish timeout.
package events

import (
	"time"
)

const (
	TopicSubscriptionEvents = "subscription-events"
	TopicTripEvents         = "trip-events"
)

const (
	TypeSubscriptionCreated = "subscription.created"
	TypeSubscriptionUpdated = "subscription.updated"
	TypeSubscriptionDeleted = "subscription.deleted"

	TypeTripCreated               = "trip.created"
	TypeTripCancellationRequested = "trip.cancellation_requested"
	TypeTripCancelled             = "trip.cancelled"
	TypeTripCancellationFailed    = "trip.cancellation_failed"
)

const source = "shuttle-service"

type Event struct {
	Type       string
	OccurredAt time.Time
	Data       map[string]any
}

// envelope is the wire format shared by all publishers.
type envelope struct {
	EventType string         `json:"eventType"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Version   string         `json:"version"`
	Data      map[string]any `json:"data"`
}

func newEnvelope(event Event) envelope {
	return envelope{
		EventType: event.Type,
		Timestamp: event.OccurredAt,
		Source:    source,
		Version:   "1.0",
		Data:      event.Data,
	}
}

// Publisher is the change-notifier boundary. Implementations must swallow
// their own failures; the mutation that triggered the event is already
// committed and must not be affected.
type Publisher interface {
	Publish(topic string, event Event)
}
