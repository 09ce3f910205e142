package readstore

import (
	"context"
	"fmt"
	"strings"

	"shuttle-service/internal/domain/subscription"
	"shuttle-service/internal/infra"
	"shuttle-service/internal/infra/db"
	"shuttle-service/internal/pkg/pgconv"
	"shuttle-service/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type SubscriptionReadStore struct {
	db db.DBTX
}

func NewSubscriptionReadStore(db db.DBTX) *SubscriptionReadStore {
	return &SubscriptionReadStore{db: db}
}

const findSubscriptionByIDSQL = `
SELECT id, user_id, route_id, semester, status, created_at, updated_at
FROM subscriptions
WHERE id = $1`

func (s *SubscriptionReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.SubscriptionView, error) {
	row := s.db.QueryRow(ctx, findSubscriptionByIDSQL, pgconv.UUIDToPgtype(id))
	view, err := scanSubscriptionView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("subscription not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find subscription", err)
	}
	return view, nil
}

const findSubscriptionByNaturalKeySQL = `
SELECT id, user_id, route_id, semester, status, created_at, updated_at
FROM subscriptions
WHERE user_id = $1 AND route_id = $2 AND semester = $3
ORDER BY (status <> 'cancelled') DESC, updated_at DESC
LIMIT 1`

// FindByNaturalKey returns the row claiming the key when one is active,
// otherwise the most recently cancelled row eligible for reactivation.
func (s *SubscriptionReadStore) FindByNaturalKey(ctx context.Context, key subscription.NaturalKey) (*queries.SubscriptionView, error) {
	row := s.db.QueryRow(ctx, findSubscriptionByNaturalKeySQL,
		pgconv.UUIDToPgtype(key.UserID), key.RouteID, key.Semester)
	view, err := scanSubscriptionView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("subscription not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find subscription by natural key", err)
	}
	return view, nil
}

func (s *SubscriptionReadStore) List(ctx context.Context, filter queries.SubscriptionFilter, limit, offset int32) ([]*queries.SubscriptionView, int, error) {
	where, args := buildSubscriptionFilter(filter)

	sql := fmt.Sprintf(`
SELECT id, user_id, route_id, semester, status, created_at, updated_at, COUNT(*) OVER() AS total
FROM subscriptions
%s
ORDER BY created_at DESC, id
LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, infra.WrapRepoErr("failed to list subscriptions", err)
	}
	defer rows.Close()

	var (
		views []*queries.SubscriptionView
		total int64
	)
	for rows.Next() {
		var (
			id        pgtype.UUID
			userID    pgtype.UUID
			routeID   int32
			semester  string
			status    string
			createdAt pgtype.Timestamptz
			updatedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &userID, &routeID, &semester, &status, &createdAt, &updatedAt, &total); err != nil {
			return nil, 0, infra.WrapRepoErr("failed to scan subscription row", err)
		}
		views = append(views, newSubscriptionView(id, userID, routeID, semester, status, createdAt, updatedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to iterate subscription rows", err)
	}
	return views, int(total), nil
}

func buildSubscriptionFilter(filter queries.SubscriptionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.UserID != nil {
		args = append(args, pgconv.UUIDToPgtype(*filter.UserID))
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.RouteID != nil {
		args = append(args, *filter.RouteID)
		conds = append(conds, fmt.Sprintf("route_id = $%d", len(args)))
	}
	if filter.Semester != nil {
		args = append(args, *filter.Semester)
		conds = append(conds, fmt.Sprintf("semester = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func scanSubscriptionView(row interface{ Scan(dest ...any) error }) (*queries.SubscriptionView, error) {
	var (
		id        pgtype.UUID
		userID    pgtype.UUID
		routeID   int32
		semester  string
		status    string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &userID, &routeID, &semester, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return newSubscriptionView(id, userID, routeID, semester, status, createdAt, updatedAt), nil
}

func newSubscriptionView(id, userID pgtype.UUID, routeID int32, semester, status string, createdAt, updatedAt pgtype.Timestamptz) *queries.SubscriptionView {
	view := &queries.SubscriptionView{
		ID:        uuid.UUID(id.Bytes),
		UserID:    uuid.UUID(userID.Bytes),
		RouteID:   routeID,
		Semester:  semester,
		Status:    status,
		CreatedAt: pgconv.TimeFromPgtype(createdAt),
		UpdatedAt: pgconv.TimeFromPgtype(updatedAt),
	}
	view.ETag = subscription.Fingerprint(view.ID, view.UserID, view.RouteID, view.Semester, subscription.Status(view.Status), view.CreatedAt, view.UpdatedAt)
	return view
}
