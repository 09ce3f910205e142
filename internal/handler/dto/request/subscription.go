package request

import (
	"shuttle-service/internal/usecase/commands"
	"shuttle-service/internal/usecase/queries"

	"github.com/google/uuid"
)

type CreateSubscriptionRequest struct {
	UserID   *uuid.UUID `json:"userId,omitempty"`
	RouteID  int32      `json:"routeId" binding:"required,gt=0"`
	Semester string     `json:"semester" binding:"required"`
	Status   *string    `json:"status,omitempty" binding:"omitempty,oneof=active cancelled"`
}

func (r CreateSubscriptionRequest) ToCommand() commands.CreateSubscriptionCommand {
	return commands.CreateSubscriptionCommand{
		UserID:   r.UserID,
		RouteID:  r.RouteID,
		Semester: r.Semester,
		Status:   r.Status,
	}
}

type UpdateSubscriptionRequest struct {
	RouteID  *int32  `json:"routeId,omitempty" binding:"omitempty,gt=0"`
	Semester *string `json:"semester,omitempty"`
	Status   *string `json:"status,omitempty" binding:"omitempty,oneof=active cancelled"`
}

func (r UpdateSubscriptionRequest) ToCommand() commands.UpdateSubscriptionCommand {
	return commands.UpdateSubscriptionCommand{
		RouteID:  r.RouteID,
		Semester: r.Semester,
		Status:   r.Status,
	}
}

type ListSubscriptionsQuery struct {
	UserID   *uuid.UUID `form:"userId"`
	RouteID  *int32     `form:"routeId"`
	Semester *string    `form:"semester"`
	Status   *string    `form:"status" binding:"omitempty,oneof=active cancelled"`
	Page     int        `form:"page"`
	PageSize int        `form:"pageSize"`
}

func (q ListSubscriptionsQuery) Filter() queries.SubscriptionFilter {
	return queries.SubscriptionFilter{
		UserID:   q.UserID,
		RouteID:  q.RouteID,
		Semester: q.Semester,
		Status:   q.Status,
	}
}

func (q ListSubscriptionsQuery) PageRequest() queries.Page {
	return queries.Page{Page: q.Page, PageSize: q.PageSize}
}
