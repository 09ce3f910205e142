package commands

import (
	"context"

	"shuttle-service/internal/domain/trip"
	"shuttle-service/internal/infra"
	"shuttle-service/internal/infra/events"
	"shuttle-service/internal/pkg/clock"
	"shuttle-service/internal/pkg/errs"
	"shuttle-service/internal/usecase/shared"
	"shuttle-service/internal/usecase/tasks"

	"github.com/google/uuid"
)

type CreateTripCommand struct {
	RouteID        int32
	SubscriptionID *uuid.UUID
	UserID         *uuid.UUID
	Date           string
	Kind           string
}

type TripCommands interface {
	Create(ctx context.Context, actor shared.Actor, cmd CreateTripCommand) (*shared.TripSnapshot, error)
	// RequestCancellation acknowledges the request with a pending task; the
	// actual cancellation happens on a worker and is observed by polling.
	RequestCancellation(ctx context.Context, actor shared.Actor, tripID uuid.UUID) (tasks.Task, error)
}

type tripUseCaseImpl struct {
	uow         shared.UnitOfWork
	coordinator *tasks.Coordinator
	publisher   events.Publisher
	clock       clock.Clock
}

func NewTripUseCase(uow shared.UnitOfWork, coordinator *tasks.Coordinator, publisher events.Publisher, clk clock.Clock) TripCommands {
	uc := &tripUseCaseImpl{
		uow:         uow,
		coordinator: coordinator,
		publisher:   publisher,
		clock:       clk,
	}
	coordinator.Register(tasks.KindTripCancel, uc.executeCancellation)
	return uc
}

func (uc *tripUseCaseImpl) Create(ctx context.Context, actor shared.Actor, cmd CreateTripCommand) (*shared.TripSnapshot, error) {
	kind, err := trip.NewKind(cmd.Kind)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	now := uc.clock.Now()
	agg, err := trip.NewTrip(cmd.RouteID, cmd.SubscriptionID, cmd.UserID, cmd.Date, kind, trip.StatusScheduled, now)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, derr := tx.Trips().Create(ctx, tx.DB(), agg); derr != nil {
			if infra.IsKind(derr, infra.KindForeignKeyViolated) {
				return errs.Mark(derr, errs.ErrDomainValidation)
			}
			return errs.Mark(derr, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	snap := tripSnapshotOf(agg)
	uc.publisher.Publish(events.TopicTripEvents, events.Event{
		Type:       events.TypeTripCreated,
		OccurredAt: now,
		Data: map[string]any{
			"tripId":  snap.ID.String(),
			"routeId": snap.RouteID,
			"date":    agg.DateString(),
			"kind":    snap.Kind,
		},
	})
	return snap, nil
}

func (uc *tripUseCaseImpl) RequestCancellation(ctx context.Context, actor shared.Actor, tripID uuid.UUID) (tasks.Task, error) {
	// Existence and ownership are checked synchronously so a bogus id fails
	// the request instead of a task nobody asked to poll.
	cur, err := uc.uow.CommandReads().TripByID(ctx, tripID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return tasks.Task{}, errs.Mark(err, errs.ErrTripNotFound)
		}
		return tasks.Task{}, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if cur.UserID != nil && !actor.Owns(*cur.UserID) {
		return tasks.Task{}, errs.ErrForbidden
	}

	task, err := uc.coordinator.Submit(ctx, tasks.KindTripCancel, tripID)
	if err != nil {
		return tasks.Task{}, err
	}

	uc.publisher.Publish(events.TopicTripEvents, events.Event{
		Type:       events.TypeTripCancellationRequested,
		OccurredAt: uc.clock.Now(),
		Data: map[string]any{
			"tripId": tripID.String(),
			"taskId": task.ID,
		},
	})
	return task, nil
}

// executeCancellation runs on a coordinator worker. It re-reads the trip at
// execution time: the world may have moved since submission.
func (uc *tripUseCaseImpl) executeCancellation(ctx context.Context, tripID uuid.UUID) (map[string]any, error) {
	now := uc.clock.Now()

	var snap *shared.TripSnapshot
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cur, rerr := tx.Reads().TripByID(ctx, tripID)
		if rerr != nil {
			if infra.IsKind(rerr, infra.KindNotFound) {
				return errs.New("trip no longer exists")
			}
			return errs.Wrap(rerr, "failed to load trip for cancellation")
		}

		agg := tripFromSnapshot(cur)
		// Cancelling twice is idempotent: the second task observes the
		// already-cancelled trip and succeeds without another write.
		if !agg.IsCancelled() {
			if derr := agg.Cancel(now); derr != nil {
				return derr
			}
			if derr := tx.Trips().UpdateStatus(ctx, tx.DB(), tripID, agg.Status(), now); derr != nil {
				return errs.Wrap(derr, "failed to persist trip cancellation")
			}
		}
		snap = tripSnapshotOf(agg)
		return nil
	})
	if err != nil {
		uc.publisher.Publish(events.TopicTripEvents, events.Event{
			Type:       events.TypeTripCancellationFailed,
			OccurredAt: uc.clock.Now(),
			Data: map[string]any{
				"tripId": tripID.String(),
				"reason": err.Error(),
			},
		})
		return nil, err
	}

	uc.publisher.Publish(events.TopicTripEvents, events.Event{
		Type:       events.TypeTripCancelled,
		OccurredAt: uc.clock.Now(),
		Data: map[string]any{
			"tripId": snap.ID.String(),
			"status": snap.Status,
		},
	})
	return map[string]any{
		"tripId": snap.ID.String(),
		"status": snap.Status,
	}, nil
}

func tripSnapshotOf(agg *trip.Trip) *shared.TripSnapshot {
	return &shared.TripSnapshot{
		ID:             agg.ID(),
		RouteID:        agg.RouteID(),
		SubscriptionID: agg.SubscriptionID(),
		UserID:         agg.UserID(),
		Date:           agg.Date(),
		Kind:           string(agg.Kind()),
		Status:         string(agg.Status()),
		CreatedAt:      agg.CreatedAt(),
		UpdatedAt:      agg.UpdatedAt(),
	}
}

func tripFromSnapshot(snap *shared.TripSnapshot) *trip.Trip {
	return trip.Reconstruct(snap.ID, snap.RouteID, snap.SubscriptionID, snap.UserID, snap.Date,
		trip.Kind(snap.Kind), trip.Status(snap.Status), snap.CreatedAt, snap.UpdatedAt)
}
