package shared

import (
	"time"

	"shuttle-service/internal/domain/subscription"
	"shuttle-service/internal/domain/user"

	"github.com/google/uuid"
)

// Actor is the identity context attached to every authenticated request.
type Actor struct {
	ID   uuid.UUID
	Role user.Role
}

// Owns reports whether the actor may act on a resource owned by ownerID.
// Admins bypass ownership.
func (a Actor) Owns(ownerID uuid.UUID) bool {
	return a.Role.IsAdmin() || a.ID == ownerID
}

// Write-side snapshots prevent dependency on read-side query types (CQRS separation)
type SubscriptionSnapshot struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	RouteID   int32
	Semester  string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ETag recomputes the concurrency token from the snapshot's current state.
func (s *SubscriptionSnapshot) ETag() string {
	return subscription.Fingerprint(s.ID, s.UserID, s.RouteID, s.Semester, subscription.Status(s.Status), s.CreatedAt, s.UpdatedAt)
}

type TripSnapshot struct {
	ID             uuid.UUID
	RouteID        int32
	SubscriptionID *uuid.UUID
	UserID         *uuid.UUID
	Date           time.Time
	Kind           string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type NotificationSnapshot struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      string
	Recipient string
	Subject   *string
	Message   string
	Status    string
	Metadata  []byte
	SentAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
