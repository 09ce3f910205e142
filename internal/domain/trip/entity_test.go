//go:build unit

package trip_test

import (
	"testing"
	"time"

	"shuttle-service/internal/domain/trip"
	"shuttle-service/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.TripBuilder)
	errIs  error
}

func TestTrip(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewTripBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, "2026-02-02", actual.DateString())
		assert.Equal(t, trip.KindMorning, actual.Kind())
		assert.Equal(t, trip.StatusScheduled, actual.Status())
		assert.NotNil(t, actual.SubscriptionID())
		assert.NotNil(t, actual.UserID())
	})

	t.Run("owner is optional", func(t *testing.T) {
		actual, err := builder.NewTripBuilder().WithoutOwner().BuildDomain()
		require.NoError(t, err)
		assert.Nil(t, actual.SubscriptionID())
		assert.Nil(t, actual.UserID())
	})

	t.Run("validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "zero route",
				mutate: func(b *builder.TripBuilder) { b.WithRouteID(0) },
				errIs:  trip.ErrInvalidRoute,
			},
			{
				name:   "malformed date",
				mutate: func(b *builder.TripBuilder) { b.WithDate("02/02/2026") },
				errIs:  trip.ErrInvalidDate,
			},
			{
				name:   "empty date",
				mutate: func(b *builder.TripBuilder) { b.WithDate("") },
				errIs:  trip.ErrInvalidDate,
			},
			{
				name:   "unknown kind",
				mutate: func(b *builder.TripBuilder) { b.WithKind("noon") },
				errIs:  trip.ErrInvalidKind,
			},
			{
				name:   "evening kind",
				mutate: func(b *builder.TripBuilder) { b.WithKind("evening") },
			},
			{
				name:   "unknown status",
				mutate: func(b *builder.TripBuilder) { b.WithStatus("boarding") },
				errIs:  trip.ErrInvalidStatus,
			},
		})
	})
}

func TestCancel(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	t.Run("cancel a scheduled trip", func(t *testing.T) {
		tr, err := builder.NewTripBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, tr.Cancel(now.Add(time.Hour)))
		assert.Equal(t, trip.StatusCancelled, tr.Status())
		assert.True(t, tr.IsCancelled())
		assert.Equal(t, now.Add(time.Hour), tr.UpdatedAt())
	})

	t.Run("cancel twice fails", func(t *testing.T) {
		tr, err := builder.NewTripBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, tr.Cancel(now))
		assert.ErrorIs(t, tr.Cancel(now.Add(time.Minute)), trip.ErrAlreadyCancelled)
	})
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewTripBuilder()
			tc.mutate(b)
			actual, err := b.BuildDomain()
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				assert.Nil(t, actual)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, actual)
			}
		})
	}
}
