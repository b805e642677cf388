package ledger

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bookwell/booking-platform-backend/internal/pkg/apperror"
	"github.com/bookwell/booking-platform-backend/internal/timerange"
)

var (
	ErrUnknownResource = apperror.New(http.StatusNotFound, "resource not found")
	ErrConflict        = apperror.New(http.StatusConflict, "capacity exhausted for the requested range")

	// ErrInternalInconsistency signals that a rollback could not be completed
	// after bounded retries and the ledger may hold capacity for a booking
	// that no longer exists. It is logged for manual reconciliation.
	ErrInternalInconsistency = apperror.New(http.StatusInternalServerError, "ledger state requires manual reconciliation")
)

// Op identifies a ledger mutation for the audit log.
type Op string

const (
	OpReserve Op = "reserve"
	OpRelease Op = "release"
	OpRebook  Op = "rebook"
)

// Window is an availability window as seen by the ledger.
type Window struct {
	Range    timerange.Range
	Capacity int
}

// Hold is reserved capacity keyed by the booking that owns it.
type Hold struct {
	ResourceID string
	BookingID  string
	Range      timerange.Range
}

// Entry is one audit record. Seq increases monotonically per resource so
// lost updates can be detected during reconciliation.
type Entry struct {
	ResourceID string
	Seq        int64
	Op         Op
	BookingID  string
	Range      timerange.Range
	At         time.Time
}

// Ledger owns per-resource capacity state. Reserve and Release for a given
// resource are serialized through a lazily created mutex; operations on
// different resources do not block each other.
type Ledger struct {
	store  Store
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(store Store, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) lockFor(resourceID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[resourceID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[resourceID] = m
	}
	return m
}

// Snapshot returns the windows and holds relevant to the requested range.
// Holds are fetched for the buffer-padded range so the conflict resolver can
// apply buffer policy against neighbouring bookings.
func (l *Ledger) Snapshot(ctx context.Context, resourceID string, r timerange.Range, buffer time.Duration) (*Snapshot, error) {
	exists, err := l.store.ResourceExists(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUnknownResource
	}

	windows, err := l.store.WindowsOverlapping(ctx, resourceID, r)
	if err != nil {
		return nil, err
	}
	holds, err := l.store.HoldsOverlapping(ctx, resourceID, r.Pad(buffer))
	if err != nil {
		return nil, err
	}

	return &Snapshot{Windows: windows, Holds: holds}, nil
}

// FreeCapacity returns the remaining capacity for the range: the minimum over
// all sub-intervals of window capacity minus active holds.
func (l *Ledger) FreeCapacity(ctx context.Context, resourceID string, r timerange.Range) (int, error) {
	snap, err := l.Snapshot(ctx, resourceID, r, 0)
	if err != nil {
		return 0, err
	}
	return snap.FreeCapacity(r, 0), nil
}

// Reserve atomically takes one unit of capacity for bookingID across the
// whole range. It fails with ErrConflict, without side effects, when any
// sub-interval has no free capacity left. Existing holds are padded by
// buffer when counting occupancy, matching the resolver's policy, so a race
// cannot admit a booking the resolver would have rejected.
func (l *Ledger) Reserve(ctx context.Context, resourceID string, r timerange.Range, bookingID string, buffer time.Duration) error {
	lock := l.lockFor(resourceID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := l.Snapshot(ctx, resourceID, r, buffer)
	if err != nil {
		return err
	}
	if !snap.Covers(r) || snap.FreeCapacity(r, buffer) < 1 {
		return ErrConflict
	}

	hold := Hold{ResourceID: resourceID, BookingID: bookingID, Range: r}
	if err := l.store.InsertHold(ctx, hold); err != nil {
		return err
	}

	l.appendEntry(ctx, resourceID, OpReserve, bookingID, r)
	return nil
}

// Release gives back the capacity held by bookingID. Releasing a booking
// that holds nothing is a no-op, not an error, so retries are safe.
func (l *Ledger) Release(ctx context.Context, resourceID, bookingID string) error {
	lock := l.lockFor(resourceID)
	lock.Lock()
	defer lock.Unlock()

	hold, err := l.store.DeleteHold(ctx, resourceID, bookingID)
	if err != nil {
		return err
	}
	if hold == nil {
		return nil
	}

	l.appendEntry(ctx, resourceID, OpRelease, bookingID, hold.Range)
	return nil
}

// Rebook moves bookingID's hold to a new range in one serialized step. The
// capacity check ignores the booking's own hold, so shrinking or shifting a
// booking within its own slot always succeeds.
func (l *Ledger) Rebook(ctx context.Context, resourceID, bookingID string, r timerange.Range, buffer time.Duration) error {
	lock := l.lockFor(resourceID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := l.Snapshot(ctx, resourceID, r, buffer)
	if err != nil {
		return err
	}
	snap = snap.WithoutHold(bookingID)
	if !snap.Covers(r) || snap.FreeCapacity(r, buffer) < 1 {
		return ErrConflict
	}

	if err := l.store.UpdateHoldRange(ctx, resourceID, bookingID, r); err != nil {
		return err
	}

	l.appendEntry(ctx, resourceID, OpRebook, bookingID, r)
	return nil
}

// appendEntry records the mutation in the audit log. Audit failures do not
// fail the mutation itself; they are logged for reconciliation.
func (l *Ledger) appendEntry(ctx context.Context, resourceID string, op Op, bookingID string, r timerange.Range) {
	seq, err := l.store.AppendEntry(ctx, resourceID, op, bookingID, r)
	if err != nil {
		l.logger.Error("ledger audit append failed",
			zap.String("resource_id", resourceID),
			zap.String("booking_id", bookingID),
			zap.String("op", string(op)),
			zap.Error(err))
		return
	}
	l.logger.Debug("ledger mutation",
		zap.String("resource_id", resourceID),
		zap.String("booking_id", bookingID),
		zap.String("op", string(op)),
		zap.Int64("seq", seq))
}
