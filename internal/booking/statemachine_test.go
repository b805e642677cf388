package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	requester = Actor{UserID: "u-req", Capability: CapabilityRequester}
	owner     = Actor{UserID: "u-own", Capability: CapabilityResourceOwner}
	system    = Actor{Capability: CapabilitySystem}
)

func testBooking(status Status, start time.Time) *Booking {
	return &Booking{
		ID:          "b1",
		ResourceID:  "res",
		RequesterID: "u-req",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Status:      status,
	}
}

func TestCanTransition(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusNoShow},
	}
	for _, tt := range legal {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}

	illegal := []struct{ from, to Status }{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusNoShow},
		{StatusCancelled, StatusConfirmed},
		{StatusCancelled, StatusPending},
		{StatusCompleted, StatusCancelled},
		{StatusNoShow, StatusConfirmed},
		{StatusConfirmed, StatusPending},
	}
	for _, tt := range illegal {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTransitionConfirm(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	start := now.Add(48 * time.Hour)

	t.Run("owner confirms pending", func(t *testing.T) {
		b := testBooking(StatusPending, start)
		require.NoError(t, Transition(b, StatusConfirmed, owner, now, 24*time.Hour))
		assert.Equal(t, StatusConfirmed, b.Status)
		assert.Equal(t, now, b.UpdatedAt)
	})

	t.Run("requester cannot confirm", func(t *testing.T) {
		b := testBooking(StatusPending, start)
		err := Transition(b, StatusConfirmed, requester, now, 24*time.Hour)
		assert.ErrorIs(t, err, ErrPermissionDenied)
		assert.Equal(t, StatusPending, b.Status)
	})

	t.Run("cancelled booking cannot be confirmed", func(t *testing.T) {
		b := testBooking(StatusCancelled, start)
		err := Transition(b, StatusConfirmed, owner, now, 24*time.Hour)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		var te *TransitionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, StatusCancelled, te.From)
		assert.Equal(t, StatusConfirmed, te.To)
	})
}

func TestTransitionCancel(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	cutoff := 24 * time.Hour

	t.Run("requester cancels confirmed before cutoff", func(t *testing.T) {
		b := testBooking(StatusConfirmed, now.Add(48*time.Hour))
		assert.NoError(t, Transition(b, StatusCancelled, requester, now, cutoff))
	})

	t.Run("cancel confirmed inside cutoff is refused", func(t *testing.T) {
		b := testBooking(StatusConfirmed, now.Add(2*time.Hour))
		err := Transition(b, StatusCancelled, requester, now, cutoff)
		assert.ErrorIs(t, err, ErrCancellationWindowClosed)
		assert.Equal(t, StatusConfirmed, b.Status)
	})

	t.Run("cutoff does not bind pending bookings", func(t *testing.T) {
		b := testBooking(StatusPending, now.Add(2*time.Hour))
		assert.NoError(t, Transition(b, StatusCancelled, requester, now, cutoff))
	})

	t.Run("owner may cancel inside cutoff rules too", func(t *testing.T) {
		// The cutoff applies to owners as well; policy is symmetric.
		b := testBooking(StatusConfirmed, now.Add(2*time.Hour))
		err := Transition(b, StatusCancelled, owner, now, cutoff)
		assert.ErrorIs(t, err, ErrCancellationWindowClosed)
	})

	t.Run("system cannot cancel", func(t *testing.T) {
		b := testBooking(StatusConfirmed, now.Add(48*time.Hour))
		err := Transition(b, StatusCancelled, system, now, cutoff)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestTransitionCompleteAndNoShow(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	t.Run("system completes confirmed", func(t *testing.T) {
		b := testBooking(StatusConfirmed, now.Add(-2*time.Hour))
		assert.NoError(t, Transition(b, StatusCompleted, system, now, 0))
	})

	t.Run("requester cannot complete", func(t *testing.T) {
		b := testBooking(StatusConfirmed, now.Add(-2*time.Hour))
		err := Transition(b, StatusCompleted, requester, now, 0)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("owner marks no-show after start", func(t *testing.T) {
		b := testBooking(StatusConfirmed, now.Add(-30*time.Minute))
		assert.NoError(t, Transition(b, StatusNoShow, owner, now, 0))
	})

	t.Run("no-show before start is refused", func(t *testing.T) {
		b := testBooking(StatusConfirmed, now.Add(30*time.Minute))
		err := Transition(b, StatusNoShow, owner, now, 0)
		assert.ErrorIs(t, err, ErrNotStarted)
		assert.Equal(t, StatusConfirmed, b.Status)
	})

	t.Run("pending cannot be completed", func(t *testing.T) {
		b := testBooking(StatusPending, now.Add(-2*time.Hour))
		err := Transition(b, StatusCompleted, system, now, 0)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}
