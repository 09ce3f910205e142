package trip

import (
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

type Trip struct {
	id             uuid.UUID
	routeID        int32
	subscriptionID *uuid.UUID
	userID         *uuid.UUID
	date           time.Time
	kind           Kind
	status         Status
	createdAt      time.Time
	updatedAt      time.Time
}

func NewTrip(routeID int32, subscriptionID, userID *uuid.UUID, date string, kind Kind, status Status, now time.Time) (*Trip, error) {
	if routeID <= 0 {
		return nil, ErrInvalidRoute
	}
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	return &Trip{
		id:             uuid.New(),
		routeID:        routeID,
		subscriptionID: subscriptionID,
		userID:         userID,
		date:           day,
		kind:           kind,
		status:         status,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func Reconstruct(id uuid.UUID, routeID int32, subscriptionID, userID *uuid.UUID, date time.Time, kind Kind, status Status, createdAt, updatedAt time.Time) *Trip {
	return &Trip{
		id:             id,
		routeID:        routeID,
		subscriptionID: subscriptionID,
		userID:         userID,
		date:           date,
		kind:           kind,
		status:         status,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (t *Trip) Cancel(now time.Time) error {
	if t.status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	t.status = StatusCancelled
	t.updatedAt = now
	return nil
}

func (t *Trip) IsCancelled() bool {
	return t.status == StatusCancelled
}

func (t *Trip) ID() uuid.UUID              { return t.id }
func (t *Trip) RouteID() int32             { return t.routeID }
func (t *Trip) SubscriptionID() *uuid.UUID { return t.subscriptionID }
func (t *Trip) UserID() *uuid.UUID         { return t.userID }
func (t *Trip) Date() time.Time            { return t.date }
func (t *Trip) DateString() string         { return t.date.Format(DateLayout) }
func (t *Trip) Kind() Kind                 { return t.kind }
func (t *Trip) Status() Status             { return t.status }
func (t *Trip) CreatedAt() time.Time       { return t.createdAt }
func (t *Trip) UpdatedAt() time.Time       { return t.updatedAt }
