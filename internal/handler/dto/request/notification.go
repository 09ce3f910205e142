package request

import (
	"shuttle-service/internal/usecase/commands"
	"shuttle-service/internal/usecase/queries"

	"github.com/google/uuid"
)

type CreateNotificationRequest struct {
	UserID          *uuid.UUID     `json:"userId,omitempty"`
	Type            string         `json:"type" binding:"required,oneof=email sms push"`
	Recipient       string         `json:"recipient" binding:"required"`
	Subject         *string        `json:"subject,omitempty"`
	Message         string         `json:"message" binding:"required"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	SendImmediately bool           `json:"sendImmediately"`
}

func (r CreateNotificationRequest) ToCommand() commands.CreateNotificationCommand {
	return commands.CreateNotificationCommand{
		UserID:          r.UserID,
		Type:            r.Type,
		Recipient:       r.Recipient,
		Subject:         r.Subject,
		Message:         r.Message,
		Metadata:        r.Metadata,
		SendImmediately: r.SendImmediately,
	}
}

type ListNotificationsQuery struct {
	UserID   *uuid.UUID `form:"userId"`
	Type     *string    `form:"type" binding:"omitempty,oneof=email sms push"`
	Status   *string    `form:"status" binding:"omitempty,oneof=pending sent delivered failed"`
	Page     int        `form:"page"`
	PageSize int        `form:"pageSize"`
}

func (q ListNotificationsQuery) Filter() queries.NotificationFilter {
	return queries.NotificationFilter{
		UserID: q.UserID,
		Type:   q.Type,
		Status: q.Status,
	}
}

func (q ListNotificationsQuery) PageRequest() queries.Page {
	return queries.Page{Page: q.Page, PageSize: q.PageSize}
}
