package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookwell/booking-platform-backend/internal/timerange"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func rng(startHour, startMin, endHour, endMin int) timerange.Range {
	return timerange.Range{Start: at(startHour, startMin), End: at(endHour, endMin)}
}

func newTestLedger(windows ...Window) (*Ledger, *MemoryStore) {
	store := NewMemoryStore()
	store.SetWindows("res", windows)
	return New(store, zap.NewNop()), store
}

func TestFreeCapacityMinOverSubIntervals(t *testing.T) {
	ctx := context.Background()

	// Two overlapping windows: capacity 1 from 09:00 and an extra unit
	// 10:00-12:00. A hold 11:30-12:30 straddles the boundary where the extra
	// capacity ends.
	ldg, _ := newTestLedger(
		Window{Range: rng(9, 0, 17, 0), Capacity: 1},
		Window{Range: rng(10, 0, 12, 0), Capacity: 1},
	)
	require.NoError(t, ldg.Reserve(ctx, "res", rng(11, 30, 12, 30), "b1", 0))

	tests := []struct {
		name string
		r    timerange.Range
		want int
	}{
		{"plain single-window stretch", rng(13, 0, 14, 0), 1},
		{"unheld double-capacity stretch", rng(10, 0, 11, 0), 2},
		{"double-capacity stretch minus hold", rng(11, 30, 12, 0), 1},
		{"hold exhausts single-capacity stretch", rng(12, 0, 12, 30), 0},
		{"minimum across boundaries", rng(10, 0, 12, 30), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			free, err := ldg.FreeCapacity(ctx, "res", tt.r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, free)
		})
	}
}

func TestReserveConflict(t *testing.T) {
	ctx := context.Background()
	ldg, store := newTestLedger(Window{Range: rng(9, 0, 17, 0), Capacity: 1})

	require.NoError(t, ldg.Reserve(ctx, "res", rng(10, 0, 11, 0), "b1", 0))

	err := ldg.Reserve(ctx, "res", rng(10, 30, 11, 30), "b2", 0)
	assert.ErrorIs(t, err, ErrConflict)

	// The failed reserve left nothing behind.
	holds, err := store.HoldsOverlapping(ctx, "res", rng(9, 0, 17, 0))
	require.NoError(t, err)
	require.Len(t, holds, 1)
	assert.Equal(t, "b1", holds[0].BookingID)

	// Back to back is fine.
	assert.NoError(t, ldg.Reserve(ctx, "res", rng(11, 0, 12, 0), "b3", 0))
}

func TestReserveUnknownResource(t *testing.T) {
	ldg, _ := newTestLedger(Window{Range: rng(9, 0, 17, 0), Capacity: 1})

	err := ldg.Reserve(context.Background(), "nope", rng(10, 0, 11, 0), "b1", 0)
	assert.ErrorIs(t, err, ErrUnknownResource)
}

func TestReserveOutsideWindowFails(t *testing.T) {
	ldg, _ := newTestLedger(Window{Range: rng(9, 0, 17, 0), Capacity: 1})

	err := ldg.Reserve(context.Background(), "res", rng(18, 0, 19, 0), "b1", 0)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestReserveBufferCountsPaddedHolds(t *testing.T) {
	ctx := context.Background()
	ldg, _ := newTestLedger(Window{Range: rng(9, 0, 17, 0), Capacity: 1})
	buffer := 15 * time.Minute

	require.NoError(t, ldg.Reserve(ctx, "res", rng(10, 0, 11, 0), "b1", buffer))

	// Back to back violates the buffer.
	err := ldg.Reserve(ctx, "res", rng(11, 0, 12, 0), "b2", buffer)
	assert.ErrorIs(t, err, ErrConflict)

	// A buffer-sized gap is enough.
	assert.NoError(t, ldg.Reserve(ctx, "res", rng(11, 15, 12, 15), "b3", buffer))
}

func TestReserveBufferSplitsAtPaddedHoldEdges(t *testing.T) {
	ctx := context.Background()
	ldg, _ := newTestLedger(Window{Range: rng(9, 0, 17, 0), Capacity: 2})
	buffer := time.Hour

	require.NoError(t, ldg.Reserve(ctx, "res", rng(10, 0, 11, 0), "b1", buffer))
	require.NoError(t, ldg.Reserve(ctx, "res", rng(13, 0, 14, 0), "b2", buffer))

	// Padded to 09:00-12:00 and 12:00-15:00 the two holds never stack, so a
	// second capacity unit stays free across the whole stretch between them.
	// Occupancy must be counted per padded-edge sub-interval, not against the
	// stretch as a whole.
	assert.NoError(t, ldg.Reserve(ctx, "res", rng(11, 0, 13, 0), "b3", buffer))
}

func TestReleaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ldg, _ := newTestLedger(Window{Range: rng(9, 0, 17, 0), Capacity: 1})

	require.NoError(t, ldg.Reserve(ctx, "res", rng(10, 0, 11, 0), "b1", 0))
	require.NoError(t, ldg.Release(ctx, "res", "b1"))

	// Releasing again, or releasing something never reserved, is a no-op.
	assert.NoError(t, ldg.Release(ctx, "res", "b1"))
	assert.NoError(t, ldg.Release(ctx, "res", "ghost"))

	// Capacity is actually back.
	assert.NoError(t, ldg.Reserve(ctx, "res", rng(10, 0, 11, 0), "b2", 0))
}

func TestRebook(t *testing.T) {
	ctx := context.Background()
	ldg, _ := newTestLedger(Window{Range: rng(9, 0, 17, 0), Capacity: 1})

	require.NoError(t, ldg.Reserve(ctx, "res", rng(10, 0, 11, 0), "b1", 0))

	t.Run("shifting within own slot succeeds", func(t *testing.T) {
		// Overlaps the current hold; only works because the booking's own
		// hold is ignored in the capacity check.
		assert.NoError(t, ldg.Rebook(ctx, "res", "b1", rng(10, 30, 11, 30), 0))
	})

	t.Run("moving onto another hold fails", func(t *testing.T) {
		require.NoError(t, ldg.Reserve(ctx, "res", rng(14, 0, 15, 0), "b2", 0))

		err := ldg.Rebook(ctx, "res", "b1", rng(14, 30, 15, 30), 0)
		assert.ErrorIs(t, err, ErrConflict)

		// The failed rebook left b1's hold where it was.
		free, err := ldg.FreeCapacity(ctx, "res", rng(10, 30, 11, 30))
		require.NoError(t, err)
		assert.Equal(t, 0, free)
	})
}

func TestAuditSeqMonotonic(t *testing.T) {
	ctx := context.Background()
	ldg, store := newTestLedger(Window{Range: rng(9, 0, 17, 0), Capacity: 10})

	require.NoError(t, ldg.Reserve(ctx, "res", rng(10, 0, 11, 0), "b1", 0))
	require.NoError(t, ldg.Reserve(ctx, "res", rng(10, 0, 11, 0), "b2", 0))
	require.NoError(t, ldg.Rebook(ctx, "res", "b2", rng(11, 0, 12, 0), 0))
	require.NoError(t, ldg.Release(ctx, "res", "b1"))

	entries := store.Entries("res")
	require.Len(t, entries, 4)
	for i, e := range entries {
		assert.Equal(t, int64(i+1), e.Seq)
	}
	assert.Equal(t, OpReserve, entries[0].Op)
	assert.Equal(t, OpRebook, entries[2].Op)
	assert.Equal(t, OpRelease, entries[3].Op)
}

func TestConcurrentReserveNeverOverbooks(t *testing.T) {
	ctx := context.Background()
	const capacity = 3
	const contenders = 40

	ldg, _ := newTestLedger(Window{Range: rng(9, 0, 17, 0), Capacity: capacity})

	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bookingID := fmt.Sprintf("b%d", i)
			if err := ldg.Reserve(ctx, "res", rng(10, 0, 11, 0), bookingID, 0); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, capacity, won)

	free, err := ldg.FreeCapacity(ctx, "res", rng(10, 0, 11, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, free)
}
