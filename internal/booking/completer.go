package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bookwell/booking-platform-backend/internal/event"
	"github.com/bookwell/booking-platform-backend/internal/ledger"
)

const sweepBatchSize = 100

// Completer periodically moves confirmed bookings whose end time has passed
// to completed, releasing their ledger holds and emitting events. Bookings
// the provider marked no-show beforehand are untouched.
type Completer struct {
	repo     Repository
	ledger   *ledger.Ledger
	emitter  event.Emitter
	interval time.Duration
	logger   *zap.Logger
}

func NewCompleter(repo Repository, ldg *ledger.Ledger, emitter event.Emitter, interval time.Duration, logger *zap.Logger) *Completer {
	return &Completer{
		repo:     repo,
		ledger:   ldg,
		emitter:  emitter,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled. A non-positive interval disables the
// sweeper entirely.
func (c *Completer) Run(ctx context.Context) {
	if c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep(ctx)
		}
	}
}

// Sweep performs one pass. Exported so tests and operational tooling can
// trigger it directly.
func (c *Completer) Sweep(ctx context.Context) {
	now := time.Now().UTC()
	expired, err := c.repo.ListExpiredConfirmed(ctx, now, sweepBatchSize)
	if err != nil {
		c.logger.Error("completion sweep query failed", zap.Error(err))
		return
	}

	actor := Actor{Capability: CapabilitySystem}
	for _, b := range expired {
		if err := Transition(b, StatusCompleted, actor, now, 0); err != nil {
			c.logger.Error("completion transition failed",
				zap.String("booking_id", b.ID), zap.Error(err))
			continue
		}
		if err := c.repo.UpdateStatus(ctx, b); err != nil {
			c.logger.Error("completion update failed",
				zap.String("booking_id", b.ID), zap.Error(err))
			continue
		}
		if err := c.ledger.Release(ctx, b.ResourceID, b.ID); err != nil {
			c.logger.Error("completion release failed, manual reconciliation required",
				zap.String("booking_id", b.ID),
				zap.String("resource_id", b.ResourceID),
				zap.Error(err))
			continue
		}

		if err := c.emitter.Emit(ctx, event.Event{
			Type:        event.TypeBookingCompleted,
			BookingID:   b.ID,
			ResourceID:  b.ResourceID,
			RequesterID: b.RequesterID,
			StartTime:   b.StartTime,
			EndTime:     b.EndTime,
			OccurredAt:  now,
		}); err != nil {
			c.logger.Warn("completion event emission failed",
				zap.String("booking_id", b.ID), zap.Error(err))
		}
	}
}
