package queries

import (
	"context"

	"shuttle-service/internal/infra"
	"shuttle-service/internal/pkg/errs"
	"shuttle-service/internal/usecase/shared"

	"github.com/google/uuid"
)

type SubscriptionFilter struct {
	UserID   *uuid.UUID
	RouteID  *int32
	Semester *string
	Status   *string
}

type SubscriptionPage struct {
	Items    []*SubscriptionView
	Page     int
	PageSize int
	Total    int
}

type SubscriptionReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SubscriptionView, error)
	List(ctx context.Context, filter SubscriptionFilter, limit, offset int32) ([]*SubscriptionView, int, error)
}

type SubscriptionQueries interface {
	Get(ctx context.Context, actor shared.Actor, id uuid.UUID) (*SubscriptionView, error)
	List(ctx context.Context, actor shared.Actor, filter SubscriptionFilter, page Page) (*SubscriptionPage, error)
}

type subscriptionQueriesImpl struct {
	readStore SubscriptionReadStore
}

func NewSubscriptionQueries(readStore SubscriptionReadStore) SubscriptionQueries {
	return &subscriptionQueriesImpl{readStore: readStore}
}

func (q *subscriptionQueriesImpl) Get(ctx context.Context, actor shared.Actor, id uuid.UUID) (*SubscriptionView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrSubscriptionNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !actor.Owns(view.UserID) {
		return nil, errs.ErrForbidden
	}
	return view, nil
}

func (q *subscriptionQueriesImpl) List(ctx context.Context, actor shared.Actor, filter SubscriptionFilter, page Page) (*SubscriptionPage, error) {
	// Non-admins only ever see their own subscriptions.
	if !actor.Role.IsAdmin() {
		id := actor.ID
		filter.UserID = &id
	}

	page = page.Normalize()
	items, total, err := q.readStore.List(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return &SubscriptionPage{
		Items:    items,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    total,
	}, nil
}
