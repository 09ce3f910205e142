package response

import (
	"time"

	"shuttle-service/internal/domain/trip"
	"shuttle-service/internal/usecase/queries"
	"shuttle-service/internal/usecase/shared"

	"github.com/google/uuid"
)

type TripResponse struct {
	ID             uuid.UUID  `json:"id"`
	RouteID        int32      `json:"routeId"`
	SubscriptionID *uuid.UUID `json:"subscriptionId,omitempty"`
	UserID         *uuid.UUID `json:"userId,omitempty"`
	Date           string     `json:"date"`
	Kind           string     `json:"kind"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func FromTripView(view *queries.TripView) *TripResponse {
	return &TripResponse{
		ID:             view.ID,
		RouteID:        view.RouteID,
		SubscriptionID: view.SubscriptionID,
		UserID:         view.UserID,
		Date:           view.Date,
		Kind:           view.Kind,
		Status:         view.Status,
		CreatedAt:      view.CreatedAt,
		UpdatedAt:      view.UpdatedAt,
	}
}

func FromTripSnapshot(snap *shared.TripSnapshot) *TripResponse {
	return &TripResponse{
		ID:             snap.ID,
		RouteID:        snap.RouteID,
		SubscriptionID: snap.SubscriptionID,
		UserID:         snap.UserID,
		Date:           snap.Date.Format(trip.DateLayout),
		Kind:           snap.Kind,
		Status:         snap.Status,
		CreatedAt:      snap.CreatedAt,
		UpdatedAt:      snap.UpdatedAt,
	}
}
