package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookwell/booking-platform-backend/internal/event"
	"github.com/bookwell/booking-platform-backend/internal/ledger"
	"github.com/bookwell/booking-platform-backend/internal/timerange"
)

type staticOwners string

func (o staticOwners) OwnerID(context.Context, string) (string, error) {
	return string(o), nil
}

type lifecycleFixture struct {
	service Service
	repo    *MemoryRepository
	ledger  *ledger.Ledger
}

func newLifecycleFixture(t *testing.T, cancelCutoff time.Duration) *lifecycleFixture {
	t.Helper()

	store := ledger.NewMemoryStore()
	// One always-open window; these tests use relative times.
	store.SetWindows("res", []ledger.Window{
		{Range: timerange.Range{
			Start: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
		}, Capacity: 1},
	})
	ldg := ledger.New(store, zap.NewNop())
	repo := NewMemoryRepository()

	svc := NewService(repo, ldg, staticOwners("u-own"), event.NewLogEmitter(zap.NewNop()), cancelCutoff, zap.NewNop())
	return &lifecycleFixture{service: svc, repo: repo, ledger: ldg}
}

// seed persists a booking and reserves its hold, as the coordinator would.
func (f *lifecycleFixture) seed(t *testing.T, id string, status Status, start time.Time) *Booking {
	t.Helper()

	b := &Booking{
		ID:          id,
		ResourceID:  "res",
		RequesterID: "u-req",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Status:      status,
	}
	require.NoError(t, f.repo.Create(context.Background(), b))
	if status.Active() {
		r := timerange.Range{Start: b.StartTime, End: b.EndTime}
		require.NoError(t, f.ledger.Reserve(context.Background(), "res", r, b.ID, 0))
	}
	return b
}

func (f *lifecycleFixture) slotFree(t *testing.T, b *Booking) bool {
	t.Helper()
	free, err := f.ledger.FreeCapacity(context.Background(),
		"res", timerange.Range{Start: b.StartTime, End: b.EndTime})
	require.NoError(t, err)
	return free > 0
}

func farFuture() time.Time {
	return time.Now().UTC().Add(14 * 24 * time.Hour).Truncate(time.Hour)
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("owner confirms, hold stays", func(t *testing.T) {
		f := newLifecycleFixture(t, 24*time.Hour)
		b := f.seed(t, "b1", StatusPending, farFuture())

		confirmed, err := f.service.Confirm(ctx, b.ID, "u-own")
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, confirmed.Status)
		assert.False(t, f.slotFree(t, b))
	})

	t.Run("requester cannot confirm", func(t *testing.T) {
		f := newLifecycleFixture(t, 24*time.Hour)
		b := f.seed(t, "b1", StatusPending, farFuture())

		_, err := f.service.Confirm(ctx, b.ID, "u-req")
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestCancelReleasesHold(t *testing.T) {
	ctx := context.Background()

	t.Run("requester cancels pending", func(t *testing.T) {
		f := newLifecycleFixture(t, 24*time.Hour)
		b := f.seed(t, "b1", StatusPending, farFuture())

		reason := "schedule change"
		cancelled, err := f.service.Cancel(ctx, b.ID, "u-req", &reason)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, cancelled.Status)
		require.NotNil(t, cancelled.CancelReason)
		assert.Equal(t, reason, *cancelled.CancelReason)

		// Capacity is back for the next requester.
		assert.True(t, f.slotFree(t, b))
	})

	t.Run("confirmed cancel inside cutoff refused", func(t *testing.T) {
		f := newLifecycleFixture(t, 24*time.Hour)
		b := f.seed(t, "b1", StatusConfirmed, time.Now().UTC().Add(2*time.Hour))

		_, err := f.service.Cancel(ctx, b.ID, "u-req", nil)
		assert.ErrorIs(t, err, ErrCancellationWindowClosed)
		assert.False(t, f.slotFree(t, b))
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		f := newLifecycleFixture(t, 24*time.Hour)
		b := f.seed(t, "b1", StatusPending, farFuture())

		_, err := f.service.Cancel(ctx, b.ID, "stranger", nil)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()

	t.Run("owner rejects pending", func(t *testing.T) {
		f := newLifecycleFixture(t, 24*time.Hour)
		b := f.seed(t, "b1", StatusPending, farFuture())

		rejected, err := f.service.Reject(ctx, b.ID, "u-own", nil)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, rejected.Status)
		assert.True(t, f.slotFree(t, b))
	})

	t.Run("requester cannot reject", func(t *testing.T) {
		f := newLifecycleFixture(t, 24*time.Hour)
		b := f.seed(t, "b1", StatusPending, farFuture())

		_, err := f.service.Reject(ctx, b.ID, "u-req", nil)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("confirmed bookings cannot be rejected", func(t *testing.T) {
		f := newLifecycleFixture(t, 24*time.Hour)
		b := f.seed(t, "b1", StatusConfirmed, farFuture())

		_, err := f.service.Reject(ctx, b.ID, "u-own", nil)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestNoShow(t *testing.T) {
	ctx := context.Background()

	t.Run("owner marks a started booking", func(t *testing.T) {
		f := newLifecycleFixture(t, 24*time.Hour)
		b := f.seed(t, "b1", StatusConfirmed, time.Now().UTC().Add(-30*time.Minute))

		marked, err := f.service.MarkNoShow(ctx, b.ID, "u-own")
		require.NoError(t, err)
		assert.Equal(t, StatusNoShow, marked.Status)
		assert.True(t, f.slotFree(t, b))
	})

	t.Run("before start refused", func(t *testing.T) {
		f := newLifecycleFixture(t, 24*time.Hour)
		b := f.seed(t, "b1", StatusConfirmed, farFuture())

		_, err := f.service.MarkNoShow(ctx, b.ID, "u-own")
		assert.ErrorIs(t, err, ErrNotStarted)
	})
}

func TestGetByIDRestrictedToParties(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t, 24*time.Hour)
	b := f.seed(t, "b1", StatusPending, farFuture())

	_, err := f.service.GetByID(ctx, b.ID, "u-req")
	assert.NoError(t, err)

	_, err = f.service.GetByID(ctx, b.ID, "u-own")
	assert.NoError(t, err)

	_, err = f.service.GetByID(ctx, b.ID, "stranger")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCompleterSweep(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t, 24*time.Hour)

	past := time.Now().UTC().Add(-3 * time.Hour)
	expired := f.seed(t, "b-done", StatusConfirmed, past)
	upcoming := f.seed(t, "b-later", StatusConfirmed, farFuture())
	pending := f.seed(t, "b-pending", StatusPending, farFuture())

	completer := NewCompleter(f.repo, f.ledger, event.NewLogEmitter(zap.NewNop()), time.Minute, zap.NewNop())
	completer.Sweep(ctx)

	got, err := f.repo.GetByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.True(t, f.slotFree(t, expired))

	got, err = f.repo.GetByID(ctx, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)

	got, err = f.repo.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}
