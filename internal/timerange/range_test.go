package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestNewValidation(t *testing.T) {
	_, err := New(at(10, 0), at(11, 0))
	require.NoError(t, err)

	_, err = New(at(11, 0), at(10, 0))
	assert.ErrorIs(t, err, ErrInvalid)

	// Zero-length ranges are invalid too.
	_, err = New(at(10, 0), at(10, 0))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Range
		want bool
	}{
		{
			name: "partial overlap",
			a:    Range{at(10, 0), at(11, 0)},
			b:    Range{at(10, 30), at(11, 30)},
			want: true,
		},
		{
			name: "containment",
			a:    Range{at(10, 0), at(12, 0)},
			b:    Range{at(10, 30), at(11, 0)},
			want: true,
		},
		{
			name: "back to back does not overlap",
			a:    Range{at(10, 0), at(11, 0)},
			b:    Range{at(11, 0), at(12, 0)},
			want: false,
		},
		{
			name: "disjoint",
			a:    Range{at(10, 0), at(11, 0)},
			b:    Range{at(13, 0), at(14, 0)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			// Overlap is symmetric.
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestContains(t *testing.T) {
	outer := Range{at(9, 0), at(17, 0)}

	assert.True(t, outer.Contains(Range{at(9, 0), at(17, 0)}))
	assert.True(t, outer.Contains(Range{at(10, 0), at(11, 0)}))
	assert.False(t, outer.Contains(Range{at(8, 0), at(10, 0)}))
	assert.False(t, outer.Contains(Range{at(16, 0), at(18, 0)}))
}

func TestPad(t *testing.T) {
	r := Range{at(10, 0), at(11, 0)}
	padded := r.Pad(15 * time.Minute)

	assert.Equal(t, at(9, 45), padded.Start)
	assert.Equal(t, at(11, 15), padded.End)
	assert.Equal(t, 90*time.Minute, padded.Duration())
}
