package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type SubscriptionView struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	RouteID   int32     `json:"route_id"`
	Semester  string    `json:"semester"`
	Status    string    `json:"status"`
	ETag      string    `json:"etag"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TripView struct {
	ID             uuid.UUID  `json:"id"`
	RouteID        int32      `json:"route_id"`
	SubscriptionID *uuid.UUID `json:"subscription_id,omitempty"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	Date           string     `json:"date"`
	Kind           string     `json:"kind"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type NotificationView struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Type      string         `json:"type"`
	Recipient string         `json:"recipient"`
	Subject   *string        `json:"subject,omitempty"`
	Message   string         `json:"message"`
	Status    string         `json:"status"`
	Metadata  map[string]any `json:"metadata"`
	SentAt    *time.Time     `json:"sent_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type AuthorizedUserView struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Page is the offset pagination requested by a list call.
type Page struct {
	Page     int
	PageSize int
}

// Normalize clamps the requested page window to sane bounds.
func (p Page) Normalize() Page {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Page) Offset() int32 {
	return int32((p.Page - 1) * p.PageSize)
}

func (p Page) Limit() int32 {
	return int32(p.PageSize)
}
