package repository

import (
	"context"
	"time"

	"shuttle-service/internal/infra"
	"shuttle-service/internal/infra/db"
	"shuttle-service/internal/pkg/pgconv"
	"shuttle-service/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

const createNotificationSQL = `
INSERT INTO notifications (id, user_id, type, recipient, subject, message, status, metadata, sent_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id`

func (r *NotificationRepository) Create(ctx context.Context, tx db.DBTX, n *shared.NotificationSnapshot) (uuid.UUID, error) {
	var id pgtype.UUID
	err := tx.QueryRow(ctx, createNotificationSQL,
		pgconv.UUIDToPgtype(n.ID),
		pgconv.UUIDToPgtype(n.UserID),
		n.Type,
		n.Recipient,
		pgconv.StringPtrToPgtype(n.Subject),
		n.Message,
		n.Status,
		n.Metadata,
		pgconv.TimePtrToPgtype(n.SentAt),
		pgconv.TimeToPgtype(n.CreatedAt),
		pgconv.TimeToPgtype(n.UpdatedAt),
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("notification references missing user", err, infra.KindForeignKeyViolated)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create notification", err)
	}
	return uuid.UUID(id.Bytes), nil
}

const markNotificationSentSQL = `
UPDATE notifications SET status = 'sent', sent_at = $2, updated_at = $2 WHERE id = $1`

func (r *NotificationRepository) MarkSent(ctx context.Context, tx db.DBTX, id uuid.UUID, sentAt time.Time) error {
	tag, err := tx.Exec(ctx, markNotificationSentSQL,
		pgconv.UUIDToPgtype(id),
		pgconv.TimeToPgtype(sentAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to mark notification sent", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("notification not found", nil, infra.KindNotFound)
	}
	return nil
}
