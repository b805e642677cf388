package reservation

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookwell/booking-platform-backend/internal/booking"
	"github.com/bookwell/booking-platform-backend/internal/conflict"
	"github.com/bookwell/booking-platform-backend/internal/event"
	"github.com/bookwell/booking-platform-backend/internal/ledger"
	"github.com/bookwell/booking-platform-backend/internal/pkg/apperror"
	"github.com/bookwell/booking-platform-backend/internal/timerange"
)

var ErrTimeout = apperror.New(http.StatusRequestTimeout, "booking request timed out")

const (
	rollbackAttempts = 3
	rollbackBackoff  = 100 * time.Millisecond
)

// CreateRequest is an inbound booking request, as delivered by the HTTP
// boundary after authentication.
type CreateRequest struct {
	ResourceID  string
	RequesterID string
	StartTime   time.Time
	EndTime     time.Time

	// IdempotencyKey, when set, makes retries of the same request return the
	// prior result instead of re-executing side effects.
	IdempotencyKey string

	// Timeout bounds steps 2-4; a timed-out request leaves no side effect.
	// Zero means the request runs under the caller's context only.
	Timeout time.Duration
}

// Coordinator orchestrates booking creation and rescheduling: it asks the
// conflict resolver for an advisory decision, lets the slot ledger's atomic
// reserve settle races, persists the booking, and rolls the reservation back
// if persistence fails.
type Coordinator struct {
	ledger      *ledger.Ledger
	repo        booking.Repository
	owners      booking.OwnerResolver
	idem        IdempotencyStore
	emitter     event.Emitter
	policy      conflict.Policy
	autoConfirm bool
	logger      *zap.Logger
	now         func() time.Time
}

func NewCoordinator(
	ldg *ledger.Ledger,
	repo booking.Repository,
	owners booking.OwnerResolver,
	idem IdempotencyStore,
	emitter event.Emitter,
	policy conflict.Policy,
	autoConfirm bool,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		ledger:      ldg,
		repo:        repo,
		owners:      owners,
		idem:        idem,
		emitter:     emitter,
		policy:      policy,
		autoConfirm: autoConfirm,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create runs the create-booking use case end to end. The resolver's read is
// advisory: when a concurrent request wins the race, the ledger's reserve
// reports a conflict and the caller sees a no-availability rejection, never
// the raw race.
func (c *Coordinator) Create(ctx context.Context, req CreateRequest) (*booking.Booking, error) {
	if req.IdempotencyKey != "" {
		prior, err := c.idem.Claim(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			return c.replay(ctx, prior)
		}
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	b, err := c.create(ctx, req)
	if err != nil {
		c.record(req.IdempotencyKey, Result{FailureCode: failureCode(err)})
		return nil, err
	}
	c.record(req.IdempotencyKey, Result{BookingID: b.ID})

	c.emit(ctx, event.TypeBookingCreated, b)
	return b, nil
}

func (c *Coordinator) create(ctx context.Context, req CreateRequest) (*booking.Booking, error) {
	r, err := timerange.New(req.StartTime, req.EndTime)
	if err != nil {
		return nil, conflict.ErrInvalidRange
	}

	snap, err := c.ledger.Snapshot(ctx, req.ResourceID, r, c.policy.Buffer)
	if err != nil {
		return nil, c.translate(err)
	}

	if outcome := conflict.Decide(snap, r, c.now(), c.policy); outcome != conflict.Accepted {
		return nil, outcome.Err()
	}

	bookingID := uuid.NewString()
	if err := c.ledger.Reserve(ctx, req.ResourceID, r, bookingID, c.policy.Buffer); err != nil {
		return nil, c.translate(err)
	}

	// The reserve succeeded; from here on every failure path must give the
	// capacity back. A timed-out request leaves no side effect.
	if err := ctx.Err(); err != nil {
		return nil, c.rollback(req.ResourceID, bookingID, ErrTimeout)
	}

	status := booking.StatusPending
	if c.autoConfirm {
		status = booking.StatusConfirmed
	}
	b := &booking.Booking{
		ID:          bookingID,
		ResourceID:  req.ResourceID,
		RequesterID: req.RequesterID,
		StartTime:   r.Start,
		EndTime:     r.End,
		Status:      status,
	}

	if err := c.repo.Create(ctx, b); err != nil {
		if ctx.Err() != nil {
			err = ErrTimeout
		}
		return nil, c.rollback(req.ResourceID, bookingID, err)
	}

	return b, nil
}

// Reschedule moves an existing pending or confirmed booking to a new range.
// The hold move and the persisted time change are coupled: if persisting
// fails, the hold is moved back before the error returns.
func (c *Coordinator) Reschedule(ctx context.Context, bookingID string, callerID string, start, end time.Time) (*booking.Booking, error) {
	r, err := timerange.New(start, end)
	if err != nil {
		return nil, conflict.ErrInvalidRange
	}

	b, err := c.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := c.authorize(ctx, b, callerID); err != nil {
		return nil, err
	}
	if !b.Status.Active() {
		return nil, &booking.TransitionError{From: b.Status, To: b.Status}
	}

	snap, err := c.ledger.Snapshot(ctx, b.ResourceID, r, c.policy.Buffer)
	if err != nil {
		return nil, c.translate(err)
	}
	if outcome := conflict.Decide(snap.WithoutHold(b.ID), r, c.now(), c.policy); outcome != conflict.Accepted {
		return nil, outcome.Err()
	}

	oldRange := timerange.Range{Start: b.StartTime, End: b.EndTime}
	if err := c.ledger.Rebook(ctx, b.ResourceID, b.ID, r, c.policy.Buffer); err != nil {
		return nil, c.translate(err)
	}

	b.StartTime = r.Start
	b.EndTime = r.End
	if err := c.repo.UpdateTimes(ctx, b); err != nil {
		return nil, c.rollbackRebook(b.ResourceID, b.ID, oldRange, err)
	}

	c.emit(ctx, event.TypeBookingRescheduled, b)
	return b, nil
}

func (c *Coordinator) authorize(ctx context.Context, b *booking.Booking, callerID string) error {
	if callerID == b.RequesterID {
		return nil
	}
	ownerID, err := c.owners.OwnerID(ctx, b.ResourceID)
	if err != nil {
		return err
	}
	if callerID != ownerID {
		return booking.ErrPermissionDenied
	}
	return nil
}

// translate hides raw ledger races from callers: a reserve conflict becomes
// the same no-availability rejection the resolver would have produced.
func (c *Coordinator) translate(err error) error {
	if errors.Is(err, ledger.ErrConflict) {
		return conflict.ErrNoAvailability
	}
	return err
}

// rollback releases a freshly reserved hold with bounded retries, then
// returns cause. A hold that cannot be released is the one failure the core
// does not recover from automatically.
func (c *Coordinator) rollback(resourceID, bookingID string, cause error) error {
	err := c.withRetry(func(ctx context.Context) error {
		return c.ledger.Release(ctx, resourceID, bookingID)
	})
	if err != nil {
		c.logger.Error("reservation rollback failed, manual reconciliation required",
			zap.String("resource_id", resourceID),
			zap.String("booking_id", bookingID),
			zap.NamedError("cause", cause),
			zap.Error(err))
		return ledger.ErrInternalInconsistency
	}
	return cause
}

func (c *Coordinator) rollbackRebook(resourceID, bookingID string, old timerange.Range, cause error) error {
	err := c.withRetry(func(ctx context.Context) error {
		return c.ledger.Rebook(ctx, resourceID, bookingID, old, 0)
	})
	if err != nil {
		c.logger.Error("reschedule rollback failed, manual reconciliation required",
			zap.String("resource_id", resourceID),
			zap.String("booking_id", bookingID),
			zap.NamedError("cause", cause),
			zap.Error(err))
		return ledger.ErrInternalInconsistency
	}
	return cause
}

// withRetry runs fn under a fresh context: rollbacks must proceed even when
// the request's own context has already expired.
func (c *Coordinator) withRetry(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < rollbackAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(rollbackBackoff)
		}
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

// replay returns the outcome recorded for an already-processed idempotency
// key without re-executing side effects.
func (c *Coordinator) replay(ctx context.Context, prior *Result) (*booking.Booking, error) {
	if prior.FailureCode != "" {
		return nil, errFromFailureCode(prior.FailureCode)
	}
	return c.repo.GetByID(ctx, prior.BookingID)
}

// record resolves the claim taken in Create. Outcomes with no failure code,
// timeouts and transient internal errors among them, release the claim
// instead so a retry with the same key re-executes.
func (c *Coordinator) record(key string, res Result) {
	if key == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if res.BookingID == "" && res.FailureCode == "" {
		if err := c.idem.Forget(ctx, key); err != nil {
			c.logger.Warn("idempotency claim release failed", zap.String("key", key), zap.Error(err))
		}
		return
	}
	if err := c.idem.Put(ctx, key, res); err != nil {
		c.logger.Warn("idempotency record failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Coordinator) emit(ctx context.Context, t event.Type, b *booking.Booking) {
	err := c.emitter.Emit(ctx, event.Event{
		Type:        t,
		BookingID:   b.ID,
		ResourceID:  b.ResourceID,
		RequesterID: b.RequesterID,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		OccurredAt:  c.now(),
	})
	if err != nil {
		// Delivered at-least-once by the external dispatcher; never rolls
		// back the booking.
		c.logger.Warn("event emission failed",
			zap.String("type", string(t)),
			zap.String("booking_id", b.ID),
			zap.Error(err))
	}
}
