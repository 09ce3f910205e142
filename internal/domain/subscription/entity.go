package subscription

import (
	"strings"
	"time"

	"shuttle-service/internal/pkg/etag"

	"github.com/google/uuid"
)

// NaturalKey identifies the booking a subscription represents. At most one
// non-cancelled subscription may exist per key; cancelled rows are kept for
// reactivation.
type NaturalKey struct {
	UserID   uuid.UUID
	RouteID  int32
	Semester string
}

// significantFields is the exact input of the concurrency token. Field order
// is fixed by the struct; the token itself is never an input.
type significantFields struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	RouteID   int32     `json:"routeId"`
	Semester  string    `json:"semester"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Fingerprint derives the ETag for a subscription state. Exposed as a free
// function so read models can compute tokens without rebuilding the aggregate.
func Fingerprint(id, userID uuid.UUID, routeID int32, semester string, status Status, createdAt, updatedAt time.Time) string {
	return etag.Compute(significantFields{
		ID:        id,
		UserID:    userID,
		RouteID:   routeID,
		Semester:  semester,
		Status:    status,
		CreatedAt: createdAt.UTC(),
		UpdatedAt: updatedAt.UTC(),
	})
}

type Subscription struct {
	id        uuid.UUID
	userID    uuid.UUID
	routeID   int32
	semester  string
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

func NewSubscription(userID uuid.UUID, routeID int32, semester string, status Status, now time.Time) (*Subscription, error) {
	if routeID <= 0 {
		return nil, ErrInvalidRoute
	}
	semester = strings.TrimSpace(semester)
	if semester == "" {
		return nil, ErrInvalidSemester
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	return &Subscription{
		id:        uuid.New(),
		userID:    userID,
		routeID:   routeID,
		semester:  semester,
		status:    status,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func Reconstruct(id, userID uuid.UUID, routeID int32, semester string, status Status, createdAt, updatedAt time.Time) *Subscription {
	return &Subscription{
		id:        id,
		userID:    userID,
		routeID:   routeID,
		semester:  semester,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Update replaces the mutable fields, validating them the same way as
// construction, and bumps updatedAt so the concurrency token rotates even for
// no-op writes.
func (s *Subscription) Update(routeID int32, semester string, status Status, now time.Time) error {
	if routeID <= 0 {
		return ErrInvalidRoute
	}
	semester = strings.TrimSpace(semester)
	if semester == "" {
		return ErrInvalidSemester
	}
	if !status.IsValid() {
		return ErrInvalidStatus
	}

	s.routeID = routeID
	s.semester = semester
	s.status = status
	s.updatedAt = now
	return nil
}

// Cancel retires the subscription without removing it, so the natural key can
// be claimed again later.
func (s *Subscription) Cancel(now time.Time) error {
	if s.status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	s.status = StatusCancelled
	s.updatedAt = now
	return nil
}

// Reactivate flips a cancelled subscription back to active, keeping its
// identity and createdAt.
func (s *Subscription) Reactivate(now time.Time) error {
	if s.status != StatusCancelled {
		return ErrNotCancelled
	}
	s.status = StatusActive
	s.updatedAt = now
	return nil
}

func (s *Subscription) IsActive() bool {
	return s.status != StatusCancelled
}

func (s *Subscription) NaturalKey() NaturalKey {
	return NaturalKey{UserID: s.userID, RouteID: s.routeID, Semester: s.semester}
}

func (s *Subscription) ETag() string {
	return Fingerprint(s.id, s.userID, s.routeID, s.semester, s.status, s.createdAt, s.updatedAt)
}

func (s *Subscription) ID() uuid.UUID        { return s.id }
func (s *Subscription) UserID() uuid.UUID    { return s.userID }
func (s *Subscription) RouteID() int32       { return s.routeID }
func (s *Subscription) Semester() string     { return s.semester }
func (s *Subscription) Status() Status       { return s.status }
func (s *Subscription) CreatedAt() time.Time { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time { return s.updatedAt }
