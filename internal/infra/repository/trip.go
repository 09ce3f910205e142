package repository

import (
	"context"
	"time"

	"shuttle-service/internal/domain/trip"
	"shuttle-service/internal/infra"
	"shuttle-service/internal/infra/db"
	"shuttle-service/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type TripRepository struct{}

func NewTripRepository() *TripRepository {
	return &TripRepository{}
}

const createTripSQL = `
INSERT INTO trips (id, route_id, subscription_id, user_id, date, kind, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`

func (r *TripRepository) Create(ctx context.Context, tx db.DBTX, t *trip.Trip) (uuid.UUID, error) {
	var id pgtype.UUID
	err := tx.QueryRow(ctx, createTripSQL,
		pgconv.UUIDToPgtype(t.ID()),
		t.RouteID(),
		pgconv.UUIDPtrToPgtype(t.SubscriptionID()),
		pgconv.UUIDPtrToPgtype(t.UserID()),
		pgtype.Date{Time: t.Date(), Valid: true},
		string(t.Kind()),
		string(t.Status()),
		pgconv.TimeToPgtype(t.CreatedAt()),
		pgconv.TimeToPgtype(t.UpdatedAt()),
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("trip references missing subscription or user", err, infra.KindForeignKeyViolated)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create trip", err)
	}
	return uuid.UUID(id.Bytes), nil
}

const updateTripStatusSQL = `
UPDATE trips SET status = $2, updated_at = $3 WHERE id = $1`

func (r *TripRepository) UpdateStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, status trip.Status, updatedAt time.Time) error {
	tag, err := tx.Exec(ctx, updateTripStatusSQL,
		pgconv.UUIDToPgtype(id),
		string(status),
		pgconv.TimeToPgtype(updatedAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update trip status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("trip not found", nil, infra.KindNotFound)
	}
	return nil
}
