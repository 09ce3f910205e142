package queries

import (
	"context"

	"shuttle-service/internal/infra"
	"shuttle-service/internal/pkg/errs"

	"github.com/google/uuid"
)

type TripFilter struct {
	RouteID        *int32
	SubscriptionID *uuid.UUID
	UserID         *uuid.UUID
	Date           *string
	Kind           *string
	Status         *string
}

type TripReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TripView, error)
	List(ctx context.Context, filter TripFilter) ([]*TripView, error)
}

type TripQueries interface {
	Get(ctx context.Context, id uuid.UUID) (*TripView, error)
	List(ctx context.Context, filter TripFilter) ([]*TripView, error)
}

type tripQueriesImpl struct {
	readStore TripReadStore
}

func NewTripQueries(readStore TripReadStore) TripQueries {
	return &tripQueriesImpl{readStore: readStore}
}

func (q *tripQueriesImpl) Get(ctx context.Context, id uuid.UUID) (*TripView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrTripNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}

func (q *tripQueriesImpl) List(ctx context.Context, filter TripFilter) ([]*TripView, error) {
	views, err := q.readStore.List(ctx, filter)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return views, nil
}
