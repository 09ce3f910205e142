package repository

import (
	"context"
	"time"

	"shuttle-service/internal/domain/subscription"
	"shuttle-service/internal/infra"
	"shuttle-service/internal/infra/db"
	"shuttle-service/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type SubscriptionRepository struct{}

func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{}
}

const createSubscriptionSQL = `
INSERT INTO subscriptions (id, user_id, route_id, semester, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

func (r *SubscriptionRepository) Create(ctx context.Context, tx db.DBTX, sub *subscription.Subscription) (uuid.UUID, error) {
	var id pgtype.UUID
	err := tx.QueryRow(ctx, createSubscriptionSQL,
		pgconv.UUIDToPgtype(sub.ID()),
		pgconv.UUIDToPgtype(sub.UserID()),
		sub.RouteID(),
		sub.Semester(),
		string(sub.Status()),
		pgconv.TimeToPgtype(sub.CreatedAt()),
		pgconv.TimeToPgtype(sub.UpdatedAt()),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("subscription natural key already taken", err, infra.KindDuplicateKey)
		}
		if isForeignKeyViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("subscription references missing user", err, infra.KindForeignKeyViolated)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create subscription", err)
	}
	return uuid.UUID(id.Bytes), nil
}

const updateSubscriptionSQL = `
UPDATE subscriptions
SET route_id = $2, semester = $3, status = $4, updated_at = $5
WHERE id = $1 AND updated_at = $6`

// Update is a compare-and-set on updated_at: a row modified since the caller
// read it matches zero rows and reports KindStaleWrite.
func (r *SubscriptionRepository) Update(ctx context.Context, tx db.DBTX, sub *subscription.Subscription, expectedUpdatedAt time.Time) error {
	tag, err := tx.Exec(ctx, updateSubscriptionSQL,
		pgconv.UUIDToPgtype(sub.ID()),
		sub.RouteID(),
		sub.Semester(),
		string(sub.Status()),
		pgconv.TimeToPgtype(sub.UpdatedAt()),
		pgconv.TimeToPgtype(expectedUpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("subscription natural key already taken", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to update subscription", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("subscription was modified concurrently", nil, infra.KindStaleWrite)
	}
	return nil
}

const deleteSubscriptionSQL = `DELETE FROM subscriptions WHERE id = $1`

func (r *SubscriptionRepository) Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, deleteSubscriptionSQL, pgconv.UUIDToPgtype(id))
	if err != nil {
		return infra.WrapRepoErr("failed to delete subscription", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("subscription not found", nil, infra.KindNotFound)
	}
	return nil
}
