package shared

import (
	"context"
	"time"

	"shuttle-service/internal/domain/subscription"
	"shuttle-service/internal/domain/trip"
	"shuttle-service/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Subscriptions() SubscriptionRepository
	Trips() TripRepository
	Notifications() NotificationRepository
	Users() UserRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	SubscriptionByID(ctx context.Context, id uuid.UUID) (*SubscriptionSnapshot, error)
	SubscriptionByNaturalKey(ctx context.Context, key subscription.NaturalKey) (*SubscriptionSnapshot, error)
	TripByID(ctx context.Context, id uuid.UUID) (*TripSnapshot, error)
	NotificationByID(ctx context.Context, id uuid.UUID) (*NotificationSnapshot, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, tx db.DBTX, sub *subscription.Subscription) (uuid.UUID, error)
	// Update is a conditional write: it succeeds only if the row's updated_at
	// still equals expectedUpdatedAt, otherwise it reports KindStaleWrite.
	Update(ctx context.Context, tx db.DBTX, sub *subscription.Subscription, expectedUpdatedAt time.Time) error
	Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error
}

type TripRepository interface {
	Create(ctx context.Context, tx db.DBTX, t *trip.Trip) (uuid.UUID, error)
	UpdateStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, status trip.Status, updatedAt time.Time) error
}

type NotificationRepository interface {
	Create(ctx context.Context, tx db.DBTX, n *NotificationSnapshot) (uuid.UUID, error)
	MarkSent(ctx context.Context, tx db.DBTX, id uuid.UUID, sentAt time.Time) error
}

type UserRepository interface {
	Create(ctx context.Context, tx db.DBTX, id uuid.UUID, email, passwordHash, role string) error
	UpdateLastLogin(ctx context.Context, tx db.DBTX, userID uuid.UUID) error
}
