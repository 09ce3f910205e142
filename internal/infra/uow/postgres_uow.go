package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"shuttle-service/internal/domain/subscription"
	"shuttle-service/internal/domain/trip"
	"shuttle-service/internal/infra/db"
	"shuttle-service/internal/infra/readstore"
	"shuttle-service/internal/infra/repository"
	"shuttle-service/internal/pkg/errs"
	"shuttle-service/internal/usecase/queries"
	"shuttle-service/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{pool: pool}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{dbtx: u.pool}
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		tx := &pgTx{dbtx: pgxTx}

		err = fn(ctx, tx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fallback to a simple calculation if crypto/rand fails
		return 0
	}
	// Safe conversion: mask high bit to ensure positive int64
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- Intentionally safe conversion after masking
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	subscriptionRepo shared.SubscriptionRepository
	tripRepo         shared.TripRepository
	notificationRepo shared.NotificationRepository
	userRepo         shared.UserRepository
	commandReads     shared.CommandReads
}

func (t *pgTx) DB() db.DBTX {
	return t.dbtx
}

func (t *pgTx) Subscriptions() shared.SubscriptionRepository {
	if t.subscriptionRepo == nil {
		t.subscriptionRepo = repository.NewSubscriptionRepository()
	}
	return t.subscriptionRepo
}

func (t *pgTx) Trips() shared.TripRepository {
	if t.tripRepo == nil {
		t.tripRepo = repository.NewTripRepository()
	}
	return t.tripRepo
}

func (t *pgTx) Notifications() shared.NotificationRepository {
	if t.notificationRepo == nil {
		t.notificationRepo = repository.NewNotificationRepository()
	}
	return t.notificationRepo
}

func (t *pgTx) Users() shared.UserRepository {
	if t.userRepo == nil {
		t.userRepo = repository.NewUserRepository()
	}
	return t.userRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{dbtx: t.dbtx}
	}
	return t.commandReads
}

type commandReads struct {
	dbtx db.DBTX

	// Lazy-initialized readstores
	subscriptionStore *readstore.SubscriptionReadStore
	tripStore         *readstore.TripReadStore
	notificationStore *readstore.NotificationReadStore
}

func (r *commandReads) subscriptions() *readstore.SubscriptionReadStore {
	if r.subscriptionStore == nil {
		r.subscriptionStore = readstore.NewSubscriptionReadStore(r.dbtx)
	}
	return r.subscriptionStore
}

func (r *commandReads) SubscriptionByID(ctx context.Context, id uuid.UUID) (*shared.SubscriptionSnapshot, error) {
	view, err := r.subscriptions().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return subscriptionSnapshot(view), nil
}

func (r *commandReads) SubscriptionByNaturalKey(ctx context.Context, key subscription.NaturalKey) (*shared.SubscriptionSnapshot, error) {
	view, err := r.subscriptions().FindByNaturalKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return subscriptionSnapshot(view), nil
}

func (r *commandReads) TripByID(ctx context.Context, id uuid.UUID) (*shared.TripSnapshot, error) {
	if r.tripStore == nil {
		r.tripStore = readstore.NewTripReadStore(r.dbtx)
	}

	view, err := r.tripStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse(trip.DateLayout, view.Date)
	if err != nil {
		return nil, errs.Wrap(err, "trip row carries malformed date")
	}
	snapshot := &shared.TripSnapshot{
		ID:             view.ID,
		RouteID:        view.RouteID,
		SubscriptionID: view.SubscriptionID,
		UserID:         view.UserID,
		Date:           date,
		Kind:           view.Kind,
		Status:         view.Status,
		CreatedAt:      view.CreatedAt,
		UpdatedAt:      view.UpdatedAt,
	}
	return snapshot, nil
}

func (r *commandReads) NotificationByID(ctx context.Context, id uuid.UUID) (*shared.NotificationSnapshot, error) {
	if r.notificationStore == nil {
		r.notificationStore = readstore.NewNotificationReadStore(r.dbtx)
	}

	view, err := r.notificationStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(view.Metadata)
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode notification metadata")
	}
	snapshot := &shared.NotificationSnapshot{
		ID:        view.ID,
		UserID:    view.UserID,
		Type:      view.Type,
		Recipient: view.Recipient,
		Subject:   view.Subject,
		Message:   view.Message,
		Status:    view.Status,
		Metadata:  metadata,
		SentAt:    view.SentAt,
		CreatedAt: view.CreatedAt,
		UpdatedAt: view.UpdatedAt,
	}
	return snapshot, nil
}

func subscriptionSnapshot(view *queries.SubscriptionView) *shared.SubscriptionSnapshot {
	return &shared.SubscriptionSnapshot{
		ID:        view.ID,
		UserID:    view.UserID,
		RouteID:   view.RouteID,
		Semester:  view.Semester,
		Status:    view.Status,
		CreatedAt: view.CreatedAt,
		UpdatedAt: view.UpdatedAt,
	}
}
