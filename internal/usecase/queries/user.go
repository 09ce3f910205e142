package queries

import (
	"context"

	"shuttle-service/internal/infra"
	"shuttle-service/internal/pkg/errs"

	"github.com/google/uuid"
)

// AuthenticatedUser carries the credential hash alongside the view; it never
// leaves the auth flow.
type AuthenticatedUser struct {
	AuthorizedUserView
	PasswordHash string
}

type UserReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AuthorizedUserView, error)
	FindByEmail(ctx context.Context, email string) (*AuthenticatedUser, error)
}

type UserQueries interface {
	Get(ctx context.Context, id uuid.UUID) (*AuthorizedUserView, error)
}

type userQueriesImpl struct {
	readStore UserReadStore
}

func NewUserQueries(readStore UserReadStore) UserQueries {
	return &userQueriesImpl{readStore: readStore}
}

func (q *userQueriesImpl) Get(ctx context.Context, id uuid.UUID) (*AuthorizedUserView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrUserNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}
