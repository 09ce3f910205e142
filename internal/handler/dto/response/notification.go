package response

import (
	"encoding/json"
	"time"

	"shuttle-service/internal/usecase/queries"
	"shuttle-service/internal/usecase/shared"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"userId"`
	Type      string         `json:"type"`
	Recipient string         `json:"recipient"`
	Subject   *string        `json:"subject,omitempty"`
	Message   string         `json:"message"`
	Status    string         `json:"status"`
	Metadata  map[string]any `json:"metadata"`
	SentAt    *time.Time     `json:"sentAt,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type NotificationListResponse struct {
	Data     []*NotificationResponse `json:"data"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"pageSize"`
	Total    int                     `json:"total"`
}

func FromNotificationView(view *queries.NotificationView) *NotificationResponse {
	return &NotificationResponse{
		ID:        view.ID,
		UserID:    view.UserID,
		Type:      view.Type,
		Recipient: view.Recipient,
		Subject:   view.Subject,
		Message:   view.Message,
		Status:    view.Status,
		Metadata:  view.Metadata,
		SentAt:    view.SentAt,
		CreatedAt: view.CreatedAt,
		UpdatedAt: view.UpdatedAt,
	}
}

func FromNotificationSnapshot(snap *shared.NotificationSnapshot) *NotificationResponse {
	var meta map[string]any
	if len(snap.Metadata) > 0 {
		_ = json.Unmarshal(snap.Metadata, &meta)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return &NotificationResponse{
		ID:        snap.ID,
		UserID:    snap.UserID,
		Type:      snap.Type,
		Recipient: snap.Recipient,
		Subject:   snap.Subject,
		Message:   snap.Message,
		Status:    snap.Status,
		Metadata:  meta,
		SentAt:    snap.SentAt,
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}
}

func FromNotificationPage(page *queries.NotificationPage) *NotificationListResponse {
	data := make([]*NotificationResponse, len(page.Items))
	for i, item := range page.Items {
		data[i] = FromNotificationView(item)
	}
	return &NotificationListResponse{
		Data:     data,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
	}
}
