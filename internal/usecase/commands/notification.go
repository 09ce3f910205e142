package commands

import (
	"context"
	"encoding/json"
	"strings"

	"shuttle-service/internal/infra"
	"shuttle-service/internal/pkg/clock"
	"shuttle-service/internal/pkg/errs"
	"shuttle-service/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	NotificationTypeEmail = "email"
	NotificationTypeSMS   = "sms"
	NotificationTypePush  = "push"

	NotificationStatusPending   = "pending"
	NotificationStatusSent      = "sent"
	NotificationStatusDelivered = "delivered"
	NotificationStatusFailed    = "failed"
)

type CreateNotificationCommand struct {
	UserID          *uuid.UUID // admin only; defaults to the actor
	Type            string
	Recipient       string
	Subject         *string
	Message         string
	Metadata        map[string]any
	SendImmediately bool
}

type NotificationCommands interface {
	Create(ctx context.Context, actor shared.Actor, cmd CreateNotificationCommand) (*shared.NotificationSnapshot, error)
	// Resend re-dispatches a notification that never went out; already sent
	// or delivered ones are rejected.
	Resend(ctx context.Context, actor shared.Actor, id uuid.UUID) (*shared.NotificationSnapshot, error)
}

type notificationUseCaseImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewNotificationUseCase(uow shared.UnitOfWork, clk clock.Clock) NotificationCommands {
	return &notificationUseCaseImpl{uow: uow, clock: clk}
}

func validNotificationType(t string) bool {
	switch t {
	case NotificationTypeEmail, NotificationTypeSMS, NotificationTypePush:
		return true
	default:
		return false
	}
}

func (uc *notificationUseCaseImpl) Create(ctx context.Context, actor shared.Actor, cmd CreateNotificationCommand) (*shared.NotificationSnapshot, error) {
	userID := actor.ID
	if cmd.UserID != nil {
		if !actor.Role.IsAdmin() && *cmd.UserID != actor.ID {
			return nil, errs.ErrForbidden
		}
		userID = *cmd.UserID
	}

	if !validNotificationType(cmd.Type) {
		return nil, errs.Mark(errs.New("unknown notification type"), errs.ErrDomainValidation)
	}
	if strings.TrimSpace(cmd.Recipient) == "" || strings.TrimSpace(cmd.Message) == "" {
		return nil, errs.Mark(errs.New("recipient and message are required"), errs.ErrDomainValidation)
	}

	metadata, err := json.Marshal(orEmpty(cmd.Metadata))
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	now := uc.clock.Now()
	snap := &shared.NotificationSnapshot{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      cmd.Type,
		Recipient: strings.TrimSpace(cmd.Recipient),
		Subject:   cmd.Subject,
		Message:   cmd.Message,
		Status:    NotificationStatusPending,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if cmd.SendImmediately {
		snap.Status = NotificationStatusSent
		sentAt := now
		snap.SentAt = &sentAt
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, derr := tx.Notifications().Create(ctx, tx.DB(), snap); derr != nil {
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
	return snap, nil
}

func (uc *notificationUseCaseImpl) Resend(ctx context.Context, actor shared.Actor, id uuid.UUID) (*shared.NotificationSnapshot, error) {
	now := uc.clock.Now()

	var snap *shared.NotificationSnapshot
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cur, rerr := tx.Reads().NotificationByID(ctx, id)
		if rerr != nil {
			if infra.IsKind(rerr, infra.KindNotFound) {
				return errs.Mark(rerr, errs.ErrNotificationNotFound)
			}
			return errs.Mark(rerr, errs.ErrDatabaseOperationFailed)
		}
		if !actor.Owns(cur.UserID) {
			return errs.ErrForbidden
		}
		if cur.Status != NotificationStatusPending && cur.Status != NotificationStatusFailed {
			return errs.ErrNotificationNotResendable
		}

		if derr := tx.Notifications().MarkSent(ctx, tx.DB(), id, now); derr != nil {
			return errs.Mark(derr, errs.ErrDatabaseOperationFailed)
		}

		cur.Status = NotificationStatusSent
		cur.SentAt = &now
		cur.UpdatedAt = now
		snap = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
