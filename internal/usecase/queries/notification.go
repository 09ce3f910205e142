package queries

import (
	"context"

	"shuttle-service/internal/infra"
	"shuttle-service/internal/pkg/errs"
	"shuttle-service/internal/usecase/shared"

	"github.com/google/uuid"
)

type NotificationFilter struct {
	UserID *uuid.UUID
	Type   *string
	Status *string
}

type NotificationPage struct {
	Items    []*NotificationView
	Page     int
	PageSize int
	Total    int
}

type NotificationReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*NotificationView, error)
	List(ctx context.Context, filter NotificationFilter, limit, offset int32) ([]*NotificationView, int, error)
}

type NotificationQueries interface {
	Get(ctx context.Context, actor shared.Actor, id uuid.UUID) (*NotificationView, error)
	List(ctx context.Context, actor shared.Actor, filter NotificationFilter, page Page) (*NotificationPage, error)
}

type notificationQueriesImpl struct {
	readStore NotificationReadStore
}

func NewNotificationQueries(readStore NotificationReadStore) NotificationQueries {
	return &notificationQueriesImpl{readStore: readStore}
}

func (q *notificationQueriesImpl) Get(ctx context.Context, actor shared.Actor, id uuid.UUID) (*NotificationView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrNotificationNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !actor.Owns(view.UserID) {
		return nil, errs.ErrForbidden
	}
	return view, nil
}

func (q *notificationQueriesImpl) List(ctx context.Context, actor shared.Actor, filter NotificationFilter, page Page) (*NotificationPage, error) {
	if !actor.Role.IsAdmin() {
		id := actor.ID
		filter.UserID = &id
	}

	page = page.Normalize()
	items, total, err := q.readStore.List(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return &NotificationPage{
		Items:    items,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    total,
	}, nil
}
