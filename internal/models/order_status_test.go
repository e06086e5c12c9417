package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlacedOrder(placed time.Time) *Order {
	return &Order{
		OrderStatus:      StatusProcessing,
		PaymentStatus:    OrderPaymentPending,
		DeliveryTracking: NewDeliveryTracking(placed),
	}
}

func TestNewDeliveryTracking(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tracking := NewDeliveryTracking(now)

	assert.True(t, tracking.OrderPlaced.Status)
	require.NotNil(t, tracking.OrderPlaced.Timestamp)
	assert.Equal(t, now, *tracking.OrderPlaced.Timestamp)
	assert.False(t, tracking.Confirmed.Status)
	assert.Nil(t, tracking.Confirmed.Timestamp)
	assert.False(t, tracking.Delivered.Status)
}

func TestApplyStatus_DeliveredBackfillsEveryStep(t *testing.T) {
	placed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := placed.Add(72 * time.Hour)

	for _, start := range []string{StatusProcessing, StatusConfirmed, StatusShipped, StatusOutForDelivery} {
		t.Run(start, func(t *testing.T) {
			order := newPlacedOrder(placed)
			require.NoError(t, order.ApplyStatus(start, placed.Add(time.Hour)))

			require.NoError(t, order.ApplyStatus(StatusDelivered, now))

			tr := order.DeliveryTracking
			assert.True(t, tr.Confirmed.Status)
			assert.True(t, tr.Shipped.Status)
			assert.True(t, tr.OutForDelivery.Status)
			assert.True(t, tr.Delivered.Status)
			assert.Equal(t, now, *tr.Delivered.Timestamp)
			assert.Equal(t, StatusDelivered, order.OrderStatus)
		})
	}
}

func TestApplyStatus_PreservesEarlierTimestamps(t *testing.T) {
	placed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	confirmedAt := placed.Add(2 * time.Hour)
	shippedAt := placed.Add(24 * time.Hour)

	order := newPlacedOrder(placed)
	require.NoError(t, order.ApplyStatus(StatusConfirmed, confirmedAt))
	require.NoError(t, order.ApplyStatus(StatusShipped, shippedAt))

	assert.Equal(t, placed, *order.DeliveryTracking.OrderPlaced.Timestamp)
	assert.Equal(t, confirmedAt, *order.DeliveryTracking.Confirmed.Timestamp)
	assert.Equal(t, shippedAt, *order.DeliveryTracking.Shipped.Timestamp)
	assert.False(t, order.DeliveryTracking.OutForDelivery.Status)
}

func TestApplyStatus_SkippedStepsUseNow(t *testing.T) {
	placed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := placed.Add(5 * time.Hour)

	order := newPlacedOrder(placed)
	require.NoError(t, order.ApplyStatus(StatusShipped, now))

	assert.True(t, order.DeliveryTracking.Confirmed.Status)
	assert.Equal(t, now, *order.DeliveryTracking.Confirmed.Timestamp)
	assert.Equal(t, placed, *order.DeliveryTracking.OrderPlaced.Timestamp)
}

func TestApplyStatus_Rejections(t *testing.T) {
	now := time.Now()

	t.Run("unknown status", func(t *testing.T) {
		order := newPlacedOrder(now)
		err := order.ApplyStatus("Lost", now)
		assert.ErrorIs(t, err, ErrInvalidStatus)
		assert.Equal(t, StatusProcessing, order.OrderStatus)
	})

	t.Run("backward", func(t *testing.T) {
		order := newPlacedOrder(now)
		require.NoError(t, order.ApplyStatus(StatusShipped, now))
		err := order.ApplyStatus(StatusConfirmed, now)
		assert.ErrorIs(t, err, ErrBackwardTransition)
		assert.Equal(t, StatusShipped, order.OrderStatus)
	})

	t.Run("out of delivered", func(t *testing.T) {
		order := newPlacedOrder(now)
		require.NoError(t, order.ApplyStatus(StatusDelivered, now))
		assert.ErrorIs(t, order.ApplyStatus(StatusCancelled, now), ErrTerminalStatus)
	})

	t.Run("out of cancelled", func(t *testing.T) {
		order := newPlacedOrder(now)
		require.NoError(t, order.ApplyStatus(StatusCancelled, now))
		assert.ErrorIs(t, order.ApplyStatus(StatusShipped, now), ErrTerminalStatus)
		assert.False(t, order.DeliveryTracking.Shipped.Status)
	})
}

func TestApplyStatus_SameStatusIsNoop(t *testing.T) {
	placed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	order := newPlacedOrder(placed)
	require.NoError(t, order.ApplyStatus(StatusConfirmed, placed.Add(time.Hour)))

	require.NoError(t, order.ApplyStatus(StatusConfirmed, placed.Add(48*time.Hour)))
	assert.Equal(t, placed.Add(time.Hour), *order.DeliveryTracking.Confirmed.Timestamp)
}

func TestApplyStatus_CancelKeepsProgress(t *testing.T) {
	now := time.Now()
	order := newPlacedOrder(now)
	require.NoError(t, order.ApplyStatus(StatusConfirmed, now))
	require.NoError(t, order.ApplyStatus(StatusCancelled, now.Add(time.Minute)))

	assert.Equal(t, StatusCancelled, order.OrderStatus)
	assert.True(t, order.DeliveryTracking.Cancelled.Status)
	assert.True(t, order.DeliveryTracking.Confirmed.Status)
	assert.False(t, order.DeliveryTracking.Shipped.Status)
}
