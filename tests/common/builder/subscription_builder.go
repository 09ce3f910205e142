//go:build unit || e2e

package builder

import (
	"time"

	"shuttle-service/internal/domain/subscription"
	"shuttle-service/internal/usecase/queries"
	"shuttle-service/internal/usecase/shared"

	"github.com/google/uuid"
)

type SubscriptionBuilder struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	RouteID  int32
	Semester string
	Status   string
	Now      time.Time
}

func NewSubscriptionBuilder() *SubscriptionBuilder {
	return &SubscriptionBuilder{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		RouteID:  12,
		Semester: "2026-spring",
		Status:   "active",
		Now:      time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (b *SubscriptionBuilder) BuildDomain() (*subscription.Subscription, error) {
	return subscription.NewSubscription(b.UserID, b.RouteID, b.Semester, subscription.Status(b.Status), b.Now)
}

func (b *SubscriptionBuilder) BuildSnapshot() *shared.SubscriptionSnapshot {
	return &shared.SubscriptionSnapshot{
		ID:        b.ID,
		UserID:    b.UserID,
		RouteID:   b.RouteID,
		Semester:  b.Semester,
		Status:    b.Status,
		CreatedAt: b.Now,
		UpdatedAt: b.Now,
	}
}

func (b *SubscriptionBuilder) BuildView() *queries.SubscriptionView {
	snap := b.BuildSnapshot()
	return &queries.SubscriptionView{
		ID:        snap.ID,
		UserID:    snap.UserID,
		RouteID:   snap.RouteID,
		Semester:  snap.Semester,
		Status:    snap.Status,
		ETag:      snap.ETag(),
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}
}

func (b *SubscriptionBuilder) BuildCreateRequestDTO() map[string]any {
	return map[string]any{
		"routeId":  b.RouteID,
		"semester": b.Semester,
	}
}

func (b *SubscriptionBuilder) WithUserID(id uuid.UUID) *SubscriptionBuilder {
	b.UserID = id
	return b
}

func (b *SubscriptionBuilder) WithRouteID(routeID int32) *SubscriptionBuilder {
	b.RouteID = routeID
	return b
}

func (b *SubscriptionBuilder) WithSemester(semester string) *SubscriptionBuilder {
	b.Semester = semester
	return b
}

func (b *SubscriptionBuilder) WithStatus(status string) *SubscriptionBuilder {
	b.Status = status
	return b
}

func (b *SubscriptionBuilder) WithNow(now time.Time) *SubscriptionBuilder {
	b.Now = now
	return b
}
