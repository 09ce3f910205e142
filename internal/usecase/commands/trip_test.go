//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"shuttle-service/internal/domain/trip"
	"shuttle-service/internal/domain/user"
	"shuttle-service/internal/infra/events"
	"shuttle-service/internal/pkg/clock"
	"shuttle-service/internal/pkg/config"
	"shuttle-service/internal/pkg/errs"
	"shuttle-service/internal/usecase/commands"
	"shuttle-service/internal/usecase/shared"
	"shuttle-service/internal/usecase/tasks"
	"shuttle-service/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTripFixture(t *testing.T) (*stubUoW, *stubPublisher, *tasks.Coordinator, commands.TripCommands, shared.Actor) {
	t.Helper()
	uow := newStubUoW()
	pub := &stubPublisher{}
	clk := clock.NewMockClock(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))
	coordinator := tasks.NewCoordinator(config.TasksConfig{
		Workers:         2,
		QueueSize:       16,
		ProcessingDelay: time.Millisecond,
		Timeout:         time.Second,
		Retention:       time.Minute,
	}, clk)
	uc := commands.NewTripUseCase(uow, coordinator, pub, clk)
	coordinator.Start()
	t.Cleanup(coordinator.Stop)
	actor := shared.Actor{ID: uuid.New(), Role: user.RoleUser}
	return uow, pub, coordinator, uc, actor
}

func waitTerminal(t *testing.T, c *tasks.Coordinator, id int64) tasks.Task {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		task, err := c.Get(id)
		require.NoError(t, err)
		if task.State.IsTerminal() {
			return task
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %d never reached a terminal state", id)
	return tasks.Task{}
}

func TestTripCreate(t *testing.T) {
	t.Run("schedules a trip and publishes the creation", func(t *testing.T) {
		uow, pub, _, uc, actor := newTripFixture(t)

		snap, err := uc.Create(context.Background(), actor, commands.CreateTripCommand{
			RouteID: 12,
			Date:    "2026-02-02",
			Kind:    "morning",
		})
		require.NoError(t, err)

		assert.Equal(t, "scheduled", snap.Status)
		assert.Equal(t, "morning", snap.Kind)
		require.Len(t, uow.tx.trips.created, 1)

		published := pub.events()
		require.Len(t, published, 1)
		assert.Equal(t, events.TopicTripEvents, published[0].Topic)
		assert.Equal(t, events.TypeTripCreated, published[0].Event.Type)
	})

	t.Run("invalid kind is a validation error", func(t *testing.T) {
		_, _, _, uc, actor := newTripFixture(t)

		_, err := uc.Create(context.Background(), actor, commands.CreateTripCommand{
			RouteID: 12,
			Date:    "2026-02-02",
			Kind:    "noon",
		})
		assert.ErrorIs(t, err, errs.ErrDomainValidation)
	})

	t.Run("dangling subscription reference is a validation error", func(t *testing.T) {
		uow, _, _, uc, actor := newTripFixture(t)
		uow.tx.trips.createErr = fkViolatedErr()
		subscriptionID := uuid.New()

		_, err := uc.Create(context.Background(), actor, commands.CreateTripCommand{
			RouteID:        12,
			SubscriptionID: &subscriptionID,
			Date:           "2026-02-02",
			Kind:           "morning",
		})
		assert.ErrorIs(t, err, errs.ErrDomainValidation)
	})
}

func TestRequestCancellation(t *testing.T) {
	t.Run("accepted request resolves to a cancelled trip", func(t *testing.T) {
		uow, pub, coordinator, uc, actor := newTripFixture(t)
		cur := builder.NewTripBuilder().BuildSnapshot()
		cur.UserID = &actor.ID
		uow.tx.reads.tripByID = func(uuid.UUID) (*shared.TripSnapshot, error) {
			return cur, nil
		}

		task, err := uc.RequestCancellation(context.Background(), actor, cur.ID)
		require.NoError(t, err)
		assert.Equal(t, tasks.StatePending, task.State)
		assert.Equal(t, tasks.KindTripCancel, task.Kind)

		done := waitTerminal(t, coordinator, task.ID)
		assert.Equal(t, tasks.StateSuccess, done.State)
		assert.Equal(t, "cancelled", done.Result["status"])

		require.Len(t, uow.tx.trips.statusUpdates, 1)
		assert.Equal(t, trip.StatusCancelled, uow.tx.trips.statusUpdates[0].Status)

		types := make([]string, 0, 2)
		for _, e := range pub.events() {
			types = append(types, e.Event.Type)
		}
		assert.Contains(t, types, events.TypeTripCancellationRequested)
		assert.Contains(t, types, events.TypeTripCancelled)
	})

	t.Run("unknown trip fails synchronously", func(t *testing.T) {
		_, _, _, uc, actor := newTripFixture(t)

		_, err := uc.RequestCancellation(context.Background(), actor, uuid.New())
		assert.ErrorIs(t, err, errs.ErrTripNotFound)
	})

	t.Run("non-owner cannot cancel an owned trip", func(t *testing.T) {
		uow, _, _, uc, actor := newTripFixture(t)
		cur := builder.NewTripBuilder().BuildSnapshot() // different owner
		uow.tx.reads.tripByID = func(uuid.UUID) (*shared.TripSnapshot, error) {
			return cur, nil
		}

		_, err := uc.RequestCancellation(context.Background(), actor, cur.ID)
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("ownerless trip can be cancelled by anyone", func(t *testing.T) {
		uow, _, coordinator, uc, actor := newTripFixture(t)
		cur := builder.NewTripBuilder().WithoutOwner().BuildSnapshot()
		uow.tx.reads.tripByID = func(uuid.UUID) (*shared.TripSnapshot, error) {
			return cur, nil
		}

		task, err := uc.RequestCancellation(context.Background(), actor, cur.ID)
		require.NoError(t, err)
		done := waitTerminal(t, coordinator, task.ID)
		assert.Equal(t, tasks.StateSuccess, done.State)
	})

	t.Run("already cancelled trip succeeds without another write", func(t *testing.T) {
		uow, _, coordinator, uc, actor := newTripFixture(t)
		cur := builder.NewTripBuilder().WithStatus("cancelled").BuildSnapshot()
		cur.UserID = &actor.ID
		uow.tx.reads.tripByID = func(uuid.UUID) (*shared.TripSnapshot, error) {
			return cur, nil
		}

		task, err := uc.RequestCancellation(context.Background(), actor, cur.ID)
		require.NoError(t, err)

		done := waitTerminal(t, coordinator, task.ID)
		assert.Equal(t, tasks.StateSuccess, done.State)
		assert.Equal(t, "cancelled", done.Result["status"])
		assert.Empty(t, done.Error)
		assert.Empty(t, uow.tx.trips.statusUpdates)
	})

	t.Run("trip deleted between submit and execution fails the task", func(t *testing.T) {
		uow, _, coordinator, uc, actor := newTripFixture(t)
		cur := builder.NewTripBuilder().WithoutOwner().BuildSnapshot()
		calls := 0
		uow.tx.reads.tripByID = func(uuid.UUID) (*shared.TripSnapshot, error) {
			calls++
			if calls == 1 {
				return cur, nil
			}
			return nil, notFoundErr()
		}

		task, err := uc.RequestCancellation(context.Background(), actor, cur.ID)
		require.NoError(t, err)

		done := waitTerminal(t, coordinator, task.ID)
		assert.Equal(t, tasks.StateFailed, done.State)
		assert.Equal(t, "trip no longer exists", done.Error)
	})
}
