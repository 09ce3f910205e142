package readstore

import (
	"context"
	"fmt"
	"strings"

	"shuttle-service/internal/domain/trip"
	"shuttle-service/internal/infra"
	"shuttle-service/internal/infra/db"
	"shuttle-service/internal/pkg/pgconv"
	"shuttle-service/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type TripReadStore struct {
	db db.DBTX
}

func NewTripReadStore(db db.DBTX) *TripReadStore {
	return &TripReadStore{db: db}
}

const findTripByIDSQL = `
SELECT id, route_id, subscription_id, user_id, date, kind, status, created_at, updated_at
FROM trips
WHERE id = $1`

func (s *TripReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.TripView, error) {
	row := s.db.QueryRow(ctx, findTripByIDSQL, pgconv.UUIDToPgtype(id))
	view, err := scanTripView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("trip not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find trip", err)
	}
	return view, nil
}

func (s *TripReadStore) List(ctx context.Context, filter queries.TripFilter) ([]*queries.TripView, error) {
	var (
		conds []string
		args  []any
	)
	if filter.RouteID != nil {
		args = append(args, *filter.RouteID)
		conds = append(conds, fmt.Sprintf("route_id = $%d", len(args)))
	}
	if filter.SubscriptionID != nil {
		args = append(args, pgconv.UUIDToPgtype(*filter.SubscriptionID))
		conds = append(conds, fmt.Sprintf("subscription_id = $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, pgconv.UUIDToPgtype(*filter.UserID))
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Date != nil {
		args = append(args, *filter.Date)
		conds = append(conds, fmt.Sprintf("date = $%d::date", len(args)))
	}
	if filter.Kind != nil {
		args = append(args, *filter.Kind)
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	sql := fmt.Sprintf(`
SELECT id, route_id, subscription_id, user_id, date, kind, status, created_at, updated_at
FROM trips
%s
ORDER BY date, kind, id`, where)

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list trips", err)
	}
	defer rows.Close()

	var views []*queries.TripView
	for rows.Next() {
		view, err := scanTripView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan trip row", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate trip rows", err)
	}
	return views, nil
}

func scanTripView(row interface{ Scan(dest ...any) error }) (*queries.TripView, error) {
	var (
		id             pgtype.UUID
		routeID        int32
		subscriptionID pgtype.UUID
		userID         pgtype.UUID
		date           pgtype.Date
		kind           string
		status         string
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
	)
	if err := row.Scan(&id, &routeID, &subscriptionID, &userID, &date, &kind, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return &queries.TripView{
		ID:             uuid.UUID(id.Bytes),
		RouteID:        routeID,
		SubscriptionID: pgconv.UUIDPtrFromPgtype(subscriptionID),
		UserID:         pgconv.UUIDPtrFromPgtype(userID),
		Date:           date.Time.Format(trip.DateLayout),
		Kind:           kind,
		Status:         status,
		CreatedAt:      pgconv.TimeFromPgtype(createdAt),
		UpdatedAt:      pgconv.TimeFromPgtype(updatedAt),
	}, nil
}
