package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bookwell/booking-platform-backend/internal/ledger"
	"github.com/bookwell/booking-platform-backend/internal/timerange"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func rng(startHour, startMin, endHour, endMin int) timerange.Range {
	return timerange.Range{Start: at(startHour, startMin), End: at(endHour, endMin)}
}

// snapshot with one 09:00-17:00 window of the given capacity and the given holds.
func daySnapshot(capacity int, holds ...timerange.Range) *ledger.Snapshot {
	snap := &ledger.Snapshot{
		Windows: []ledger.Window{{Range: rng(9, 0, 17, 0), Capacity: capacity}},
	}
	for i, h := range holds {
		snap.Holds = append(snap.Holds, ledger.Hold{
			ResourceID: "res",
			BookingID:  string(rune('a' + i)),
			Range:      h,
		})
	}
	return snap
}

func TestDecideAccepts(t *testing.T) {
	now := at(7, 0)
	policy := Policy{LeadTime: 2 * time.Hour}

	t.Run("free slot inside window", func(t *testing.T) {
		got := Decide(daySnapshot(1), rng(10, 0, 11, 0), now, policy)
		assert.Equal(t, Accepted, got)
	})

	t.Run("back to back with an existing booking", func(t *testing.T) {
		snap := daySnapshot(1, rng(10, 0, 11, 0))
		got := Decide(snap, rng(11, 0, 12, 0), now, policy)
		assert.Equal(t, Accepted, got)
	})

	t.Run("capacity two admits an overlapping second booking", func(t *testing.T) {
		snap := daySnapshot(2, rng(10, 0, 11, 0))
		got := Decide(snap, rng(10, 30, 11, 30), now, policy)
		assert.Equal(t, Accepted, got)
	})

	t.Run("start exactly at lead time boundary", func(t *testing.T) {
		got := Decide(daySnapshot(1), rng(9, 0, 10, 0), now, policy)
		assert.Equal(t, Accepted, got)
	})
}

func TestDecideRejections(t *testing.T) {
	now := at(7, 0)
	policy := Policy{LeadTime: 2 * time.Hour, MaxAdvance: 90 * 24 * time.Hour}

	t.Run("overlapping hold at full capacity", func(t *testing.T) {
		snap := daySnapshot(1, rng(10, 0, 11, 0))
		got := Decide(snap, rng(10, 30, 11, 30), now, policy)
		assert.Equal(t, RejectedNoAvailability, got)
	})

	t.Run("lead time too short", func(t *testing.T) {
		got := Decide(daySnapshot(1), rng(8, 30, 9, 30), now, policy)
		assert.Equal(t, RejectedLeadTimeTooShort, got)
	})

	t.Run("lead time checked before availability", func(t *testing.T) {
		// The slot is also taken; the lead time rejection wins.
		snap := daySnapshot(1, rng(8, 30, 9, 30))
		got := Decide(snap, rng(8, 30, 9, 30), now, policy)
		assert.Equal(t, RejectedLeadTimeTooShort, got)
	})

	t.Run("too far in advance", func(t *testing.T) {
		start := now.Add(91 * 24 * time.Hour)
		r := timerange.Range{Start: start, End: start.Add(time.Hour)}
		got := Decide(daySnapshot(1), r, now, policy)
		assert.Equal(t, RejectedTooFarInAdvance, got)
	})

	t.Run("outside window", func(t *testing.T) {
		got := Decide(daySnapshot(1), rng(18, 0, 19, 0), now, policy)
		assert.Equal(t, RejectedOutsideWindow, got)
	})

	t.Run("partially outside window", func(t *testing.T) {
		got := Decide(daySnapshot(1), rng(16, 30, 17, 30), now, policy)
		assert.Equal(t, RejectedOutsideWindow, got)
	})

	t.Run("no windows at all", func(t *testing.T) {
		got := Decide(&ledger.Snapshot{}, rng(10, 0, 11, 0), now, Policy{})
		assert.Equal(t, RejectedOutsideWindow, got)
	})
}

func TestDecideBuffer(t *testing.T) {
	now := at(7, 0)
	policy := Policy{Buffer: 15 * time.Minute}

	t.Run("buffer rejects a back to back booking", func(t *testing.T) {
		snap := daySnapshot(1, rng(10, 0, 11, 0))
		got := Decide(snap, rng(11, 0, 12, 0), now, policy)
		assert.Equal(t, RejectedNoAvailability, got)
	})

	t.Run("buffer-sized gap is enough", func(t *testing.T) {
		snap := daySnapshot(1, rng(10, 0, 11, 0))
		got := Decide(snap, rng(11, 15, 12, 15), now, policy)
		assert.Equal(t, Accepted, got)
	})

	t.Run("buffer does not pad the window boundary", func(t *testing.T) {
		// 09:00 start is flush against the window open; only other bookings
		// are padded, so this is accepted.
		got := Decide(daySnapshot(1), rng(9, 0, 10, 0), now, policy)
		assert.Equal(t, Accepted, got)
	})
}

func TestOutcomeErr(t *testing.T) {
	assert.NoError(t, Accepted.Err())
	assert.ErrorIs(t, RejectedNoAvailability.Err(), ErrNoAvailability)
	assert.ErrorIs(t, RejectedLeadTimeTooShort.Err(), ErrLeadTimeTooShort)
	assert.ErrorIs(t, RejectedOutsideWindow.Err(), ErrOutsideWindow)
	assert.ErrorIs(t, RejectedTooFarInAdvance.Err(), ErrTooFarInAdvance)
}
