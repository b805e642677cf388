package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bookwell/booking-platform-backend/internal/event"
	"github.com/bookwell/booking-platform-backend/internal/ledger"
)

// OwnerResolver reports who owns a resource. The HTTP boundary authenticates
// callers; this is the only lookup the lifecycle service needs to turn a
// caller into an Actor.
type OwnerResolver interface {
	OwnerID(ctx context.Context, resourceID string) (string, error)
}

// Service governs the lifecycle of existing bookings. Creation and
// rescheduling go through the reservation coordinator instead, because they
// need the conflict resolver and an atomic ledger reserve.
type Service interface {
	GetByID(ctx context.Context, id string, callerID string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Confirm(ctx context.Context, id string, callerID string) (*Booking, error)
	Reject(ctx context.Context, id string, callerID string, reason *string) (*Booking, error)
	Cancel(ctx context.Context, id string, callerID string, reason *string) (*Booking, error)
	Complete(ctx context.Context, id string, callerID string) (*Booking, error)
	MarkNoShow(ctx context.Context, id string, callerID string) (*Booking, error)
}

const (
	releaseAttempts = 3
	releaseBackoff  = 100 * time.Millisecond
)

type service struct {
	repo         Repository
	ledger       *ledger.Ledger
	owners       OwnerResolver
	emitter      event.Emitter
	cancelCutoff time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(
	repo Repository,
	ldg *ledger.Ledger,
	owners OwnerResolver,
	emitter event.Emitter,
	cancelCutoff time.Duration,
	logger *zap.Logger,
) Service {
	return &service{
		repo:         repo,
		ledger:       ldg,
		owners:       owners,
		emitter:      emitter,
		cancelCutoff: cancelCutoff,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// actorFor resolves the caller's capability relative to a booking. Owner
// capability wins when the caller both owns the resource and requested the
// booking. Callers that are neither party get ErrPermissionDenied: a booking
// is readable and mutable only by its two parties.
func (s *service) actorFor(ctx context.Context, b *Booking, callerID string) (Actor, error) {
	ownerID, err := s.owners.OwnerID(ctx, b.ResourceID)
	if err != nil {
		return Actor{}, err
	}
	if callerID == ownerID {
		return Actor{UserID: callerID, Capability: CapabilityResourceOwner}, nil
	}
	if callerID == b.RequesterID {
		return Actor{UserID: callerID, Capability: CapabilityRequester}, nil
	}
	return Actor{}, ErrPermissionDenied
}

func (s *service) GetByID(ctx context.Context, id string, callerID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.actorFor(ctx, b, callerID); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Confirm(ctx context.Context, id string, callerID string) (*Booking, error) {
	return s.transition(ctx, id, callerID, StatusConfirmed, nil, event.TypeBookingConfirmed, false)
}

// Reject is a provider declining a pending request. It shares the cancelled
// state but is owner-only and never applies to confirmed bookings.
func (s *service) Reject(ctx context.Context, id string, callerID string, reason *string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := s.actorFor(ctx, b, callerID)
	if err != nil {
		return nil, err
	}
	if actor.Capability != CapabilityResourceOwner {
		return nil, ErrPermissionDenied
	}
	if b.Status != StatusPending {
		return nil, &TransitionError{From: b.Status, To: StatusCancelled}
	}
	return s.applyTransition(ctx, b, actor, StatusCancelled, reason, event.TypeBookingCancelled, true)
}

func (s *service) Cancel(ctx context.Context, id string, callerID string, reason *string) (*Booking, error) {
	return s.transition(ctx, id, callerID, StatusCancelled, reason, event.TypeBookingCancelled, true)
}

func (s *service) Complete(ctx context.Context, id string, callerID string) (*Booking, error) {
	return s.transition(ctx, id, callerID, StatusCompleted, nil, event.TypeBookingCompleted, true)
}

func (s *service) MarkNoShow(ctx context.Context, id string, callerID string) (*Booking, error) {
	return s.transition(ctx, id, callerID, StatusNoShow, nil, event.TypeBookingNoShow, true)
}

func (s *service) transition(
	ctx context.Context,
	id string,
	callerID string,
	to Status,
	reason *string,
	eventType event.Type,
	releasesHold bool,
) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := s.actorFor(ctx, b, callerID)
	if err != nil {
		return nil, err
	}
	return s.applyTransition(ctx, b, actor, to, reason, eventType, releasesHold)
}

// applyTransition runs the state machine, persists the change and, for
// transitions out of an active status, releases the ledger hold as part of
// the same logical operation. A booking must never end up cancelled while
// its capacity remains held.
func (s *service) applyTransition(
	ctx context.Context,
	b *Booking,
	actor Actor,
	to Status,
	reason *string,
	eventType event.Type,
	releasesHold bool,
) (*Booking, error) {
	if err := Transition(b, to, actor, s.now(), s.cancelCutoff); err != nil {
		return nil, err
	}
	if reason != nil {
		b.CancelReason = reason
	}

	if err := s.repo.UpdateStatus(ctx, b); err != nil {
		return nil, err
	}

	if releasesHold {
		if err := s.releaseHold(ctx, b); err != nil {
			return nil, err
		}
	}

	s.emit(ctx, eventType, b)
	return b, nil
}

// releaseHold retries a ledger release with bounded attempts. Persistent
// failure means the booking record and the ledger disagree; that is the one
// case the core cannot recover automatically, so it is logged for manual
// reconciliation and surfaced as ErrInternalInconsistency.
func (s *service) releaseHold(ctx context.Context, b *Booking) error {
	var lastErr error
	for attempt := 0; attempt < releaseAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(releaseBackoff)
		}
		if lastErr = s.ledger.Release(ctx, b.ResourceID, b.ID); lastErr == nil {
			return nil
		}
	}

	s.logger.Error("ledger release failed after retries, manual reconciliation required",
		zap.String("booking_id", b.ID),
		zap.String("resource_id", b.ResourceID),
		zap.Error(lastErr))
	return ledger.ErrInternalInconsistency
}

func (s *service) emit(ctx context.Context, t event.Type, b *Booking) {
	err := s.emitter.Emit(ctx, event.Event{
		Type:        t,
		BookingID:   b.ID,
		ResourceID:  b.ResourceID,
		RequesterID: b.RequesterID,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		OccurredAt:  s.now(),
	})
	if err != nil {
		// Events are delivered at-least-once by the external dispatcher;
		// emission failure never rolls back the transition.
		s.logger.Warn("event emission failed",
			zap.String("type", string(t)),
			zap.String("booking_id", b.ID),
			zap.Error(err))
	}
}
