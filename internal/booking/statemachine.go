package booking

import "time"

// legalTransitions is the closed set of lifecycle edges. Anything absent is
// illegal regardless of caller identity.
var legalTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted, StatusNoShow},
}

// CanTransition reports whether the lifecycle edge from -> to exists.
func CanTransition(from, to Status) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition applies a lifecycle change to b after checking edge legality,
// the actor's capability and the cancellation-cutoff policy. On success the
// booking's status and UpdatedAt are mutated in place; on error the booking
// is untouched.
//
// cancelCutoff is the minimum gap between now and the booking's start for a
// cancellation of a confirmed booking to be permitted.
func Transition(b *Booking, to Status, actor Actor, now time.Time, cancelCutoff time.Duration) error {
	if !CanTransition(b.Status, to) {
		return &TransitionError{From: b.Status, To: to}
	}

	switch to {
	case StatusConfirmed:
		if actor.Capability != CapabilityResourceOwner {
			return ErrPermissionDenied
		}
	case StatusCancelled:
		if actor.Capability != CapabilityRequester && actor.Capability != CapabilityResourceOwner {
			return ErrPermissionDenied
		}
		// The cutoff binds confirmed bookings only; withdrawing a pending
		// request is always allowed.
		if b.Status == StatusConfirmed && now.After(b.StartTime.Add(-cancelCutoff)) {
			return ErrCancellationWindowClosed
		}
	case StatusCompleted:
		if actor.Capability != CapabilityResourceOwner && actor.Capability != CapabilitySystem {
			return ErrPermissionDenied
		}
	case StatusNoShow:
		if actor.Capability != CapabilityResourceOwner {
			return ErrPermissionDenied
		}
		if now.Before(b.StartTime) {
			return ErrNotStarted
		}
	}

	b.Status = to
	b.UpdatedAt = now
	return nil
}
