package ledger

import (
	"context"

	"github.com/bookwell/booking-platform-backend/internal/timerange"
)

// Store is the transactional backing for the ledger's per-resource state.
// The ledger serializes calls per resource, so implementations only need
// atomicity within single operations.
type Store interface {
	ResourceExists(ctx context.Context, resourceID string) (bool, error)

	// WindowsOverlapping returns availability windows intersecting r.
	WindowsOverlapping(ctx context.Context, resourceID string, r timerange.Range) ([]Window, error)

	// HoldsOverlapping returns capacity holds intersecting r.
	HoldsOverlapping(ctx context.Context, resourceID string, r timerange.Range) ([]Hold, error)

	InsertHold(ctx context.Context, h Hold) error

	// UpdateHoldRange moves an existing hold to a new range.
	UpdateHoldRange(ctx context.Context, resourceID, bookingID string, r timerange.Range) error

	// DeleteHold removes the hold for bookingID and returns it, or nil when
	// no hold existed (release idempotence).
	DeleteHold(ctx context.Context, resourceID, bookingID string) (*Hold, error)

	// AppendEntry records an audit entry and returns its per-resource
	// monotonically increasing sequence number.
	AppendEntry(ctx context.Context, resourceID string, op Op, bookingID string, r timerange.Range) (int64, error)
}
