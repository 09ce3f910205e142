package commands

import (
	"context"
	"strings"

	"shuttle-service/internal/domain/subscription"
	"shuttle-service/internal/infra"
	"shuttle-service/internal/infra/events"
	"shuttle-service/internal/pkg/clock"
	"shuttle-service/internal/pkg/errs"
	"shuttle-service/internal/pkg/etag"
	"shuttle-service/internal/pkg/patch"
	"shuttle-service/internal/usecase/shared"

	"github.com/google/uuid"
)

// SubscriptionOutcome reports how Create resolved against the natural key.
type SubscriptionOutcome string

const (
	OutcomeCreated     SubscriptionOutcome = "created"
	OutcomeReactivated SubscriptionOutcome = "reactivated"
)

// SubscriptionConflictError carries the row already claiming the natural key
// so the conflict response can include it. Existing is nil when the claimant
// was only visible as a racing insert.
type SubscriptionConflictError struct {
	Existing *shared.SubscriptionSnapshot
}

func (e *SubscriptionConflictError) Error() string {
	return "active subscription already exists for this route and semester"
}

type CreateSubscriptionCommand struct {
	UserID   *uuid.UUID // admin only; defaults to the actor
	RouteID  int32
	Semester string
	Status   *string
}

type UpdateSubscriptionCommand struct {
	RouteID  *int32
	Semester *string
	Status   *string
}

type CreateSubscriptionResult struct {
	Subscription *shared.SubscriptionSnapshot
	Outcome      SubscriptionOutcome
}

type SubscriptionCommands interface {
	Create(ctx context.Context, actor shared.Actor, cmd CreateSubscriptionCommand) (*CreateSubscriptionResult, error)
	Update(ctx context.Context, actor shared.Actor, id uuid.UUID, ifMatch string, cmd UpdateSubscriptionCommand) (*shared.SubscriptionSnapshot, error)
	Delete(ctx context.Context, actor shared.Actor, id uuid.UUID, ifMatch string) error
}

type subscriptionUseCaseImpl struct {
	uow       shared.UnitOfWork
	publisher events.Publisher
	clock     clock.Clock
}

func NewSubscriptionUseCase(uow shared.UnitOfWork, publisher events.Publisher, clk clock.Clock) SubscriptionCommands {
	return &subscriptionUseCaseImpl{uow: uow, publisher: publisher, clock: clk}
}

// Create resolves the natural key (userID, routeID, semester) to exactly one
// of three outcomes: a fresh insert, a reactivation of a cancelled row, or a
// conflict with the active claimant.
func (uc *subscriptionUseCaseImpl) Create(ctx context.Context, actor shared.Actor, cmd CreateSubscriptionCommand) (*CreateSubscriptionResult, error) {
	userID := actor.ID
	if cmd.UserID != nil {
		if !actor.Role.IsAdmin() && *cmd.UserID != actor.ID {
			return nil, errs.ErrForbidden
		}
		userID = *cmd.UserID
	}

	status := subscription.StatusActive
	if cmd.Status != nil {
		parsed, err := subscription.NewStatus(*cmd.Status)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrDomainValidation)
		}
		status = parsed
	}

	now := uc.clock.Now()
	key := subscription.NaturalKey{UserID: userID, RouteID: cmd.RouteID, Semester: strings.TrimSpace(cmd.Semester)}

	var result *CreateSubscriptionResult
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		existing, rerr := tx.Reads().SubscriptionByNaturalKey(ctx, key)
		if rerr != nil && !infra.IsKind(rerr, infra.KindNotFound) {
			return errs.Mark(rerr, errs.ErrDatabaseOperationFailed)
		}

		if existing != nil && existing.Status != string(subscription.StatusCancelled) {
			return errs.Mark(&SubscriptionConflictError{Existing: existing}, errs.ErrSubscriptionConflict)
		}

		if existing != nil {
			agg := subscription.Reconstruct(existing.ID, existing.UserID, existing.RouteID, existing.Semester,
				subscription.Status(existing.Status), existing.CreatedAt, existing.UpdatedAt)
			if derr := agg.Reactivate(now); derr != nil {
				return errs.Mark(derr, errs.ErrDomainValidation)
			}
			if derr := tx.Subscriptions().Update(ctx, tx.DB(), agg, existing.UpdatedAt); derr != nil {
				// A concurrent request won the row between read and write.
				if infra.IsKind(derr, infra.KindStaleWrite) || infra.IsKind(derr, infra.KindDuplicateKey) {
					return errs.Mark(&SubscriptionConflictError{}, errs.ErrSubscriptionConflict)
				}
				return errs.Mark(derr, errs.ErrDatabaseOperationFailed)
			}
			result = &CreateSubscriptionResult{Subscription: snapshotOf(agg), Outcome: OutcomeReactivated}
			return nil
		}

		agg, derr := subscription.NewSubscription(userID, key.RouteID, key.Semester, status, now)
		if derr != nil {
			return errs.Mark(derr, errs.ErrDomainValidation)
		}
		if _, derr := tx.Subscriptions().Create(ctx, tx.DB(), agg); derr != nil {
			// Unique partial index closes the insert race on the natural key.
			if infra.IsKind(derr, infra.KindDuplicateKey) {
				return errs.Mark(&SubscriptionConflictError{}, errs.ErrSubscriptionConflict)
			}
			return errs.Mark(derr, errs.ErrDatabaseOperationFailed)
		}
		result = &CreateSubscriptionResult{Subscription: snapshotOf(agg), Outcome: OutcomeCreated}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sub := result.Subscription
	switch result.Outcome {
	case OutcomeCreated:
		uc.publisher.Publish(events.TopicSubscriptionEvents, events.Event{
			Type:       events.TypeSubscriptionCreated,
			OccurredAt: now,
			Data: map[string]any{
				"subscriptionId": sub.ID.String(),
				"userId":         sub.UserID.String(),
				"routeId":        sub.RouteID,
				"semester":       sub.Semester,
				"status":         sub.Status,
			},
		})
	case OutcomeReactivated:
		uc.publisher.Publish(events.TopicSubscriptionEvents, events.Event{
			Type:       events.TypeSubscriptionUpdated,
			OccurredAt: now,
			Data: map[string]any{
				"subscriptionId": sub.ID.String(),
				"userId":         sub.UserID.String(),
				"changes": map[string]any{
					"status": map[string]any{
						"from": string(subscription.StatusCancelled),
						"to":   sub.Status,
					},
				},
			},
		})
	}

	return result, nil
}

// Update is guarded by the If-Match precondition: callers must present the
// token of the state they read, and the write lands only if that state is
// still current.
func (uc *subscriptionUseCaseImpl) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, ifMatch string, cmd UpdateSubscriptionCommand) (*shared.SubscriptionSnapshot, error) {
	if strings.TrimSpace(ifMatch) == "" {
		return nil, errs.ErrPreconditionRequired
	}

	now := uc.clock.Now()

	var (
		snap    *shared.SubscriptionSnapshot
		changes map[string]any
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cur, rerr := tx.Reads().SubscriptionByID(ctx, id)
		if rerr != nil {
			if infra.IsKind(rerr, infra.KindNotFound) {
				return errs.Mark(rerr, errs.ErrSubscriptionNotFound)
			}
			return errs.Mark(rerr, errs.ErrDatabaseOperationFailed)
		}
		if !actor.Owns(cur.UserID) {
			return errs.ErrForbidden
		}
		if !etag.Match(ifMatch, cur.ETag()) {
			return errs.ErrPreconditionFailed
		}

		routeID := patch.Coalesce(cmd.RouteID, cur.RouteID)
		semester := patch.Coalesce(cmd.Semester, cur.Semester)
		statusStr := patch.Coalesce(cmd.Status, cur.Status)
		status, derr := subscription.NewStatus(statusStr)
		if derr != nil {
			return errs.Mark(derr, errs.ErrDomainValidation)
		}

		agg := subscription.Reconstruct(cur.ID, cur.UserID, cur.RouteID, cur.Semester,
			subscription.Status(cur.Status), cur.CreatedAt, cur.UpdatedAt)
		if derr := agg.Update(routeID, semester, status, now); derr != nil {
			return errs.Mark(derr, errs.ErrDomainValidation)
		}

		if derr := tx.Subscriptions().Update(ctx, tx.DB(), agg, cur.UpdatedAt); derr != nil {
			switch {
			case infra.IsKind(derr, infra.KindStaleWrite):
				return errs.Mark(derr, errs.ErrPreconditionFailed)
			case infra.IsKind(derr, infra.KindDuplicateKey):
				return errs.Mark(&SubscriptionConflictError{}, errs.ErrSubscriptionConflict)
			default:
				return errs.Mark(derr, errs.ErrDatabaseOperationFailed)
			}
		}

		changes = subscriptionDiff(cur, agg)
		snap = snapshotOf(agg)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		uc.publisher.Publish(events.TopicSubscriptionEvents, events.Event{
			Type:       events.TypeSubscriptionUpdated,
			OccurredAt: now,
			Data: map[string]any{
				"subscriptionId": snap.ID.String(),
				"userId":         snap.UserID.String(),
				"changes":        changes,
			},
		})
	}

	return snap, nil
}

// Delete removes the row outright. If-Match is honoured when supplied but not
// required; ownership always is.
func (uc *subscriptionUseCaseImpl) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID, ifMatch string) error {
	now := uc.clock.Now()

	var deleted *shared.SubscriptionSnapshot
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cur, rerr := tx.Reads().SubscriptionByID(ctx, id)
		if rerr != nil {
			if infra.IsKind(rerr, infra.KindNotFound) {
				return errs.Mark(rerr, errs.ErrSubscriptionNotFound)
			}
			return errs.Mark(rerr, errs.ErrDatabaseOperationFailed)
		}
		if !actor.Owns(cur.UserID) {
			return errs.ErrForbidden
		}
		if strings.TrimSpace(ifMatch) != "" && !etag.Match(ifMatch, cur.ETag()) {
			return errs.ErrPreconditionFailed
		}

		if derr := tx.Subscriptions().Delete(ctx, tx.DB(), id); derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return errs.Mark(derr, errs.ErrSubscriptionNotFound)
			}
			return errs.Mark(derr, errs.ErrDatabaseOperationFailed)
		}
		deleted = cur
		return nil
	})
	if err != nil {
		return err
	}

	uc.publisher.Publish(events.TopicSubscriptionEvents, events.Event{
		Type:       events.TypeSubscriptionDeleted,
		OccurredAt: now,
		Data: map[string]any{
			"subscriptionId": deleted.ID.String(),
			"userId":         deleted.UserID.String(),
			"routeId":        deleted.RouteID,
			"semester":       deleted.Semester,
		},
	})
	return nil
}

func snapshotOf(agg *subscription.Subscription) *shared.SubscriptionSnapshot {
	return &shared.SubscriptionSnapshot{
		ID:        agg.ID(),
		UserID:    agg.UserID(),
		RouteID:   agg.RouteID(),
		Semester:  agg.Semester(),
		Status:    string(agg.Status()),
		CreatedAt: agg.CreatedAt(),
		UpdatedAt: agg.UpdatedAt(),
	}
}

func subscriptionDiff(before *shared.SubscriptionSnapshot, after *subscription.Subscription) map[string]any {
	changes := map[string]any{}
	if before.RouteID != after.RouteID() {
		changes["routeId"] = map[string]any{"from": before.RouteID, "to": after.RouteID()}
	}
	if before.Semester != after.Semester() {
		changes["semester"] = map[string]any{"from": before.Semester, "to": after.Semester()}
	}
	if before.Status != string(after.Status()) {
		changes["status"] = map[string]any{"from": before.Status, "to": string(after.Status())}
	}
	return changes
}
