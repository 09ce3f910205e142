package response

import (
	"time"

	"shuttle-service/internal/usecase/queries"
	"shuttle-service/internal/usecase/shared"

	"github.com/google/uuid"
)

type SubscriptionResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	RouteID   int32     `json:"routeId"`
	Semester  string    `json:"semester"`
	Status    string    `json:"status"`
	ETag      string    `json:"etag"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SubscriptionListResponse struct {
	Data     []*SubscriptionResponse `json:"data"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"pageSize"`
	Total    int                     `json:"total"`
}

func FromSubscriptionView(view *queries.SubscriptionView) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:        view.ID,
		UserID:    view.UserID,
		RouteID:   view.RouteID,
		Semester:  view.Semester,
		Status:    view.Status,
		ETag:      view.ETag,
		CreatedAt: view.CreatedAt,
		UpdatedAt: view.UpdatedAt,
	}
}

func FromSubscriptionSnapshot(snap *shared.SubscriptionSnapshot) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:        snap.ID,
		UserID:    snap.UserID,
		RouteID:   snap.RouteID,
		Semester:  snap.Semester,
		Status:    snap.Status,
		ETag:      snap.ETag(),
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}
}

func FromSubscriptionPage(page *queries.SubscriptionPage) *SubscriptionListResponse {
	data := make([]*SubscriptionResponse, len(page.Items))
	for i, item := range page.Items {
		data[i] = FromSubscriptionView(item)
	}
	return &SubscriptionListResponse{
		Data:     data,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
	}
}
