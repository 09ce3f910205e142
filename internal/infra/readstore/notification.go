package readstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shuttle-service/internal/infra"
	"shuttle-service/internal/infra/db"
	"shuttle-service/internal/pkg/pgconv"
	"shuttle-service/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type NotificationReadStore struct {
	db db.DBTX
}

func NewNotificationReadStore(db db.DBTX) *NotificationReadStore {
	return &NotificationReadStore{db: db}
}

const findNotificationByIDSQL = `
SELECT id, user_id, type, recipient, subject, message, status, metadata, sent_at, created_at, updated_at
FROM notifications
WHERE id = $1`

func (s *NotificationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.NotificationView, error) {
	row := s.db.QueryRow(ctx, findNotificationByIDSQL, pgconv.UUIDToPgtype(id))
	view, err := scanNotificationView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("notification not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find notification", err)
	}
	return view, nil
}

func (s *NotificationReadStore) List(ctx context.Context, filter queries.NotificationFilter, limit, offset int32) ([]*queries.NotificationView, int, error) {
	var (
		conds []string
		args  []any
	)
	if filter.UserID != nil {
		args = append(args, pgconv.UUIDToPgtype(*filter.UserID))
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
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
SELECT id, user_id, type, recipient, subject, message, status, metadata, sent_at, created_at, updated_at, COUNT(*) OVER() AS total
FROM notifications
%s
ORDER BY created_at DESC, id
LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, infra.WrapRepoErr("failed to list notifications", err)
	}
	defer rows.Close()

	var (
		views []*queries.NotificationView
		total int64
	)
	for rows.Next() {
		var (
			id        pgtype.UUID
			userID    pgtype.UUID
			typ       string
			recipient string
			subject   pgtype.Text
			message   string
			status    string
			metadata  []byte
			sentAt    pgtype.Timestamptz
			createdAt pgtype.Timestamptz
			updatedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &userID, &typ, &recipient, &subject, &message, &status, &metadata, &sentAt, &createdAt, &updatedAt, &total); err != nil {
			return nil, 0, infra.WrapRepoErr("failed to scan notification row", err)
		}
		views = append(views, newNotificationView(id, userID, typ, recipient, subject, message, status, metadata, sentAt, createdAt, updatedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to iterate notification rows", err)
	}
	return views, int(total), nil
}

func scanNotificationView(row interface{ Scan(dest ...any) error }) (*queries.NotificationView, error) {
	var (
		id        pgtype.UUID
		userID    pgtype.UUID
		typ       string
		recipient string
		subject   pgtype.Text
		message   string
		status    string
		metadata  []byte
		sentAt    pgtype.Timestamptz
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &userID, &typ, &recipient, &subject, &message, &status, &metadata, &sentAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return newNotificationView(id, userID, typ, recipient, subject, message, status, metadata, sentAt, createdAt, updatedAt), nil
}

func newNotificationView(id, userID pgtype.UUID, typ, recipient string, subject pgtype.Text, message, status string, metadata []byte, sentAt, createdAt, updatedAt pgtype.Timestamptz) *queries.NotificationView {
	var meta map[string]any
	if len(metadata) > 0 {
		// Stored as jsonb; a decode failure leaves metadata empty rather than
		// failing the whole read.
		_ = json.Unmarshal(metadata, &meta)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return &queries.NotificationView{
		ID:        uuid.UUID(id.Bytes),
		UserID:    uuid.UUID(userID.Bytes),
		Type:      typ,
		Recipient: recipient,
		Subject:   pgconv.StringPtrFromPgtype(subject),
		Message:   message,
		Status:    status,
		Metadata:  meta,
		SentAt:    pgconv.TimePtrFromPgtype(sentAt),
		CreatedAt: pgconv.TimeFromPgtype(createdAt),
		UpdatedAt: pgconv.TimeFromPgtype(updatedAt),
	}
}
