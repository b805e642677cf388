package ledger

import (
	"time"

	"github.com/bookwell/booking-platform-backend/internal/timerange"
)

// Snapshot is a point-in-time view of a resource's windows and holds around
// a requested range. It is a plain value: decisions computed from it are
// advisory, only Reserve is authoritative.
type Snapshot struct {
	Windows []Window
	Holds   []Hold
}

// WithoutHold returns a copy of the snapshot with bookingID's hold removed.
// Used when re-evaluating capacity for a booking being rescheduled.
func (s *Snapshot) WithoutHold(bookingID string) *Snapshot {
	out := &Snapshot{Windows: s.Windows}
	for _, h := range s.Holds {
		if h.BookingID != bookingID {
			out.Holds = append(out.Holds, h)
		}
	}
	return out
}

// Covers reports whether every instant of r falls inside at least one window.
func (s *Snapshot) Covers(r timerange.Range) bool {
	for _, sub := range s.subIntervals(r, 0) {
		if s.windowCapacityAt(sub) == 0 {
			return false
		}
	}
	return true
}

// FreeCapacity computes the minimum over all sub-intervals of r of window
// capacity minus held capacity. Holds are padded by buffer on both sides;
// window boundaries are not.
func (s *Snapshot) FreeCapacity(r timerange.Range, buffer time.Duration) int {
	free := -1
	for _, sub := range s.subIntervals(r, buffer) {
		capacity := s.windowCapacityAt(sub)
		held := 0
		for _, h := range s.Holds {
			if h.Range.Pad(buffer).Overlaps(sub) {
				held++
			}
		}
		f := capacity - held
		if f < 0 {
			f = 0
		}
		if free < 0 || f < free {
			free = f
		}
	}
	if free < 0 {
		return 0
	}
	return free
}

// Segment is a stretch of time with a uniform number of free slots.
type Segment struct {
	Range timerange.Range
	Free  int
}

// FreeSegments lists the stretches of r that still have at least one free
// slot, merging adjacent stretches with the same free count. Holds are padded
// by buffer the same way FreeCapacity pads them.
func (s *Snapshot) FreeSegments(r timerange.Range, buffer time.Duration) []Segment {
	var out []Segment
	for _, sub := range s.subIntervals(r, buffer) {
		capacity := s.windowCapacityAt(sub)
		if capacity == 0 {
			continue
		}
		held := 0
		for _, h := range s.Holds {
			if h.Range.Pad(buffer).Overlaps(sub) {
				held++
			}
		}
		free := capacity - held
		if free < 1 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Free == free && out[n-1].Range.End.Equal(sub.Start) {
			out[n-1].Range.End = sub.End
			continue
		}
		out = append(out, Segment{Range: sub, Free: free})
	}
	return out
}

// subIntervals splits r at every window or hold boundary that falls strictly
// inside it, yielding sub-intervals of homogeneous capacity and occupancy.
// Hold boundaries are padded by buffer so occupancy tests against padded
// holds see the same edges the split does.
func (s *Snapshot) subIntervals(r timerange.Range, buffer time.Duration) []timerange.Range {
	points := []time.Time{r.Start, r.End}
	appendInside := func(t time.Time) {
		if t.After(r.Start) && t.Before(r.End) {
			points = append(points, t)
		}
	}
	for _, w := range s.Windows {
		appendInside(w.Range.Start)
		appendInside(w.Range.End)
	}
	for _, h := range s.Holds {
		padded := h.Range.Pad(buffer)
		appendInside(padded.Start)
		appendInside(padded.End)
	}

	sortTimes(points)

	var out []timerange.Range
	for i := 1; i < len(points); i++ {
		if points[i].After(points[i-1]) {
			out = append(out, timerange.Range{Start: points[i-1], End: points[i]})
		}
	}
	return out
}

// windowCapacityAt sums the capacity of every window fully covering sub.
// Sub-intervals never straddle a window boundary, so containment of the
// start instant is enough, but the full check keeps the invariant explicit.
func (s *Snapshot) windowCapacityAt(sub timerange.Range) int {
	total := 0
	for _, w := range s.Windows {
		if w.Range.Contains(sub) {
			total += w.Capacity
		}
	}
	return total
}

func sortTimes(ts []time.Time) {
	// Insertion sort: boundary sets here are tiny.
	for i := 1; i < len(ts); i++ {
		for j := i; j > 0 && ts[j].Before(ts[j-1]); j-- {
			ts[j], ts[j-1] = ts[j-1], ts[j]
		}
	}
}
