package request

import (
	"shuttle-service/internal/usecase/commands"
	"shuttle-service/internal/usecase/queries"

	"github.com/google/uuid"
)

type CreateTripRequest struct {
	RouteID        int32      `json:"routeId" binding:"required,gt=0"`
	SubscriptionID *uuid.UUID `json:"subscriptionId,omitempty"`
	UserID         *uuid.UUID `json:"userId,omitempty"`
	Date           string     `json:"date" binding:"required"`
	Kind           string     `json:"kind" binding:"required,oneof=morning evening"`
}

func (r CreateTripRequest) ToCommand() commands.CreateTripCommand {
	return commands.CreateTripCommand{
		RouteID:        r.RouteID,
		SubscriptionID: r.SubscriptionID,
		UserID:         r.UserID,
		Date:           r.Date,
		Kind:           r.Kind,
	}
}

type ListTripsQuery struct {
	RouteID        *int32     `form:"routeId"`
	SubscriptionID *uuid.UUID `form:"subscriptionId"`
	UserID         *uuid.UUID `form:"userId"`
	Date           *string    `form:"date"`
	Kind           *string    `form:"kind" binding:"omitempty,oneof=morning evening"`
	Status         *string    `form:"status" binding:"omitempty,oneof=scheduled cancelled"`
}

func (q ListTripsQuery) Filter() queries.TripFilter {
	return queries.TripFilter{
		RouteID:        q.RouteID,
		SubscriptionID: q.SubscriptionID,
		UserID:         q.UserID,
		Date:           q.Date,
		Kind:           q.Kind,
		Status:         q.Status,
	}
}
