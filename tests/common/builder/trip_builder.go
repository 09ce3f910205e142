//go:build unit || e2e

package builder

import (
	"time"

	"shuttle-service/internal/domain/trip"
	"shuttle-service/internal/usecase/queries"
	"shuttle-service/internal/usecase/shared"

	"github.com/google/uuid"
)

type TripBuilder struct {
	ID             uuid.UUID
	RouteID        int32
	SubscriptionID *uuid.UUID
	UserID         *uuid.UUID
	Date           string
	Kind           string
	Status         string
	Now            time.Time
}

func NewTripBuilder() *TripBuilder {
	subscriptionID := uuid.New()
	userID := uuid.New()
	return &TripBuilder{
		ID:             uuid.New(),
		RouteID:        12,
		SubscriptionID: &subscriptionID,
		UserID:         &userID,
		Date:           "2026-02-02",
		Kind:           "morning",
		Status:         "scheduled",
		Now:            time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (b *TripBuilder) BuildDomain() (*trip.Trip, error) {
	return trip.NewTrip(b.RouteID, b.SubscriptionID, b.UserID, b.Date, trip.Kind(b.Kind), trip.Status(b.Status), b.Now)
}

func (b *TripBuilder) BuildSnapshot() *shared.TripSnapshot {
	day, _ := time.Parse(trip.DateLayout, b.Date)
	return &shared.TripSnapshot{
		ID:             b.ID,
		RouteID:        b.RouteID,
		SubscriptionID: b.SubscriptionID,
		UserID:         b.UserID,
		Date:           day,
		Kind:           b.Kind,
		Status:         b.Status,
		CreatedAt:      b.Now,
		UpdatedAt:      b.Now,
	}
}

func (b *TripBuilder) BuildView() *queries.TripView {
	return &queries.TripView{
		ID:             b.ID,
		RouteID:        b.RouteID,
		SubscriptionID: b.SubscriptionID,
		UserID:         b.UserID,
		Date:           b.Date,
		Kind:           b.Kind,
		Status:         b.Status,
		CreatedAt:      b.Now,
		UpdatedAt:      b.Now,
	}
}

func (b *TripBuilder) BuildCreateRequestDTO() map[string]any {
	return map[string]any{
		"routeId": b.RouteID,
		"date":    b.Date,
		"kind":    b.Kind,
	}
}

func (b *TripBuilder) WithRouteID(routeID int32) *TripBuilder {
	b.RouteID = routeID
	return b
}

func (b *TripBuilder) WithDate(date string) *TripBuilder {
	b.Date = date
	return b
}

func (b *TripBuilder) WithKind(kind string) *TripBuilder {
	b.Kind = kind
	return b
}

func (b *TripBuilder) WithStatus(status string) *TripBuilder {
	b.Status = status
	return b
}

func (b *TripBuilder) WithoutOwner() *TripBuilder {
	b.SubscriptionID = nil
	b.UserID = nil
	return b
}
