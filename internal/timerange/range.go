package timerange

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalid = errors.New("invalid time range: end must be after start")

// Range is a half-open time interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// New builds a Range and validates it. Zero-length ranges are invalid.
func New(start, end time.Time) (Range, error) {
	r := Range{Start: start, End: end}
	if !r.IsValid() {
		return Range{}, ErrInvalid
	}
	return r, nil
}

// IsValid reports whether the range is non-empty (End strictly after Start).
func (r Range) IsValid() bool {
	return r.End.After(r.Start)
}

// Duration returns End - Start.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps reports whether two half-open ranges intersect.
// A range ending exactly when the other starts does not overlap.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return !other.Start.Before(r.Start) && !other.End.After(r.End)
}

// Pad extends the range by d on both sides.
func (r Range) Pad(d time.Duration) Range {
	return Range{Start: r.Start.Add(-d), End: r.End.Add(d)}
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}
