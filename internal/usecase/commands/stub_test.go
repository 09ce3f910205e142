//go:build unit

package commands_test

import (
	"context"
	"sync"
	"time"

	"shuttle-service/internal/domain/subscription"
	"shuttle-service/internal/domain/trip"
	"shuttle-service/internal/infra"
	"shuttle-service/internal/infra/db"
	"shuttle-service/internal/infra/events"
	"shuttle-service/internal/usecase/shared"

	"github.com/google/uuid"
)

func notFoundErr() error {
	return infra.WrapRepoErr("row not found", nil, infra.KindNotFound)
}

func staleWriteErr() error {
	return infra.WrapRepoErr("stale write", nil, infra.KindStaleWrite)
}

func duplicateKeyErr() error {
	return infra.WrapRepoErr("duplicate key", nil, infra.KindDuplicateKey)
}

func fkViolatedErr() error {
	return infra.WrapRepoErr("foreign key violated", nil, infra.KindForeignKeyViolated)
}

// ---- publisher ----

type publishedEvent struct {
	Topic string
	Event events.Event
}

type stubPublisher struct {
	mu        sync.Mutex
	published []publishedEvent
}

func (p *stubPublisher) Publish(topic string, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedEvent{Topic: topic, Event: event})
}

func (p *stubPublisher) events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, len(p.published))
	copy(out, p.published)
	return out
}

// ---- repositories ----

type subscriptionUpdateCall struct {
	Agg               *subscription.Subscription
	ExpectedUpdatedAt time.Time
}

type stubSubscriptionRepo struct {
	createErr error
	updateErr error
	deleteErr error

	created []*subscription.Subscription
	updated []subscriptionUpdateCall
	deleted []uuid.UUID
}

func (r *stubSubscriptionRepo) Create(_ context.Context, _ db.DBTX, sub *subscription.Subscription) (uuid.UUID, error) {
	if r.createErr != nil {
		return uuid.Nil, r.createErr
	}
	r.created = append(r.created, sub)
	return sub.ID(), nil
}

func (r *stubSubscriptionRepo) Update(_ context.Context, _ db.DBTX, sub *subscription.Subscription, expectedUpdatedAt time.Time) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updated = append(r.updated, subscriptionUpdateCall{Agg: sub, ExpectedUpdatedAt: expectedUpdatedAt})
	return nil
}

func (r *stubSubscriptionRepo) Delete(_ context.Context, _ db.DBTX, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, id)
	return nil
}

type tripStatusCall struct {
	ID        uuid.UUID
	Status    trip.Status
	UpdatedAt time.Time
}

type stubTripRepo struct {
	createErr       error
	updateStatusErr error

	created       []*trip.Trip
	statusUpdates []tripStatusCall
}

func (r *stubTripRepo) Create(_ context.Context, _ db.DBTX, t *trip.Trip) (uuid.UUID, error) {
	if r.createErr != nil {
		return uuid.Nil, r.createErr
	}
	r.created = append(r.created, t)
	return t.ID(), nil
}

func (r *stubTripRepo) UpdateStatus(_ context.Context, _ db.DBTX, id uuid.UUID, status trip.Status, updatedAt time.Time) error {
	if r.updateStatusErr != nil {
		return r.updateStatusErr
	}
	r.statusUpdates = append(r.statusUpdates, tripStatusCall{ID: id, Status: status, UpdatedAt: updatedAt})
	return nil
}

type stubNotificationRepo struct {
	createErr   error
	markSentErr error

	created  []*shared.NotificationSnapshot
	markSent []uuid.UUID
}

func (r *stubNotificationRepo) Create(_ context.Context, _ db.DBTX, n *shared.NotificationSnapshot) (uuid.UUID, error) {
	if r.createErr != nil {
		return uuid.Nil, r.createErr
	}
	r.created = append(r.created, n)
	return n.ID, nil
}

func (r *stubNotificationRepo) MarkSent(_ context.Context, _ db.DBTX, id uuid.UUID, _ time.Time) error {
	if r.markSentErr != nil {
		return r.markSentErr
	}
	r.markSent = append(r.markSent, id)
	return nil
}

type stubUserRepo struct {
	createErr    error
	lastLoginErr error

	lastLogins []uuid.UUID
}

func (r *stubUserRepo) Create(_ context.Context, _ db.DBTX, _ uuid.UUID, _, _, _ string) error {
	return r.createErr
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, _ db.DBTX, userID uuid.UUID) error {
	if r.lastLoginErr != nil {
		return r.lastLoginErr
	}
	r.lastLogins = append(r.lastLogins, userID)
	return nil
}

// ---- command reads ----

type stubReads struct {
	subscriptionByID  func(uuid.UUID) (*shared.SubscriptionSnapshot, error)
	subscriptionByKey func(subscription.NaturalKey) (*shared.SubscriptionSnapshot, error)
	tripByID          func(uuid.UUID) (*shared.TripSnapshot, error)
	notificationByID  func(uuid.UUID) (*shared.NotificationSnapshot, error)
}

func (r *stubReads) SubscriptionByID(_ context.Context, id uuid.UUID) (*shared.SubscriptionSnapshot, error) {
	if r.subscriptionByID == nil {
		return nil, notFoundErr()
	}
	return r.subscriptionByID(id)
}

func (r *stubReads) SubscriptionByNaturalKey(_ context.Context, key subscription.NaturalKey) (*shared.SubscriptionSnapshot, error) {
	if r.subscriptionByKey == nil {
		return nil, notFoundErr()
	}
	return r.subscriptionByKey(key)
}

func (r *stubReads) TripByID(_ context.Context, id uuid.UUID) (*shared.TripSnapshot, error) {
	if r.tripByID == nil {
		return nil, notFoundErr()
	}
	return r.tripByID(id)
}

func (r *stubReads) NotificationByID(_ context.Context, id uuid.UUID) (*shared.NotificationSnapshot, error) {
	if r.notificationByID == nil {
		return nil, notFoundErr()
	}
	return r.notificationByID(id)
}

// ---- unit of work ----

type stubTx struct {
	subscriptions *stubSubscriptionRepo
	trips         *stubTripRepo
	notifications *stubNotificationRepo
	users         *stubUserRepo
	reads         *stubReads
}

func (t *stubTx) Subscriptions() shared.SubscriptionRepository { return t.subscriptions }
func (t *stubTx) Trips() shared.TripRepository                 { return t.trips }
func (t *stubTx) Notifications() shared.NotificationRepository { return t.notifications }
func (t *stubTx) Users() shared.UserRepository                 { return t.users }
func (t *stubTx) Reads() shared.CommandReads                   { return t.reads }
func (t *stubTx) DB() db.DBTX                                  { return nil }

type stubUoW struct {
	tx *stubTx
}

func newStubUoW() *stubUoW {
	return &stubUoW{
		tx: &stubTx{
			subscriptions: &stubSubscriptionRepo{},
			trips:         &stubTripRepo{},
			notifications: &stubNotificationRepo{},
			users:         &stubUserRepo{},
			reads:         &stubReads{},
		},
	}
}

func (u *stubUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *stubUoW) CommandReads() shared.CommandReads {
	return u.tx.reads
}
