package conflict

import (
	"net/http"
	"time"

	"github.com/bookwell/booking-platform-backend/internal/ledger"
	"github.com/bookwell/booking-platform-backend/internal/pkg/apperror"
	"github.com/bookwell/booking-platform-backend/internal/timerange"
)

var (
	ErrInvalidRange     = apperror.New(http.StatusBadRequest, "end time must be after start time")
	ErrNoAvailability   = apperror.New(http.StatusConflict, "slot no longer available")
	ErrLeadTimeTooShort = apperror.New(http.StatusUnprocessableEntity, "booking starts too close to now")
	ErrOutsideWindow    = apperror.New(http.StatusUnprocessableEntity, "requested time is outside provider availability")
	ErrTooFarInAdvance  = apperror.New(http.StatusUnprocessableEntity, "booking starts too far in the future")
)

// Outcome is the resolver's decision for a booking request. Exactly one
// outcome applies per request; there is no partial acceptance.
type Outcome string

const (
	Accepted                 Outcome = "accepted"
	RejectedNoAvailability   Outcome = "rejected_no_availability"
	RejectedLeadTimeTooShort Outcome = "rejected_lead_time_too_short"
	RejectedOutsideWindow    Outcome = "rejected_outside_window"
	RejectedTooFarInAdvance  Outcome = "rejected_too_far_in_advance"
)

// Err maps the outcome to its sentinel error; Accepted maps to nil.
func (o Outcome) Err() error {
	switch o {
	case Accepted:
		return nil
	case RejectedLeadTimeTooShort:
		return ErrLeadTimeTooShort
	case RejectedOutsideWindow:
		return ErrOutsideWindow
	case RejectedTooFarInAdvance:
		return ErrTooFarInAdvance
	default:
		return ErrNoAvailability
	}
}

// Policy holds the provider-configurable scheduling rules.
type Policy struct {
	// LeadTime rejects requests starting sooner than now + LeadTime.
	LeadTime time.Duration
	// MaxAdvance rejects requests starting later than now + MaxAdvance.
	// Zero means unlimited.
	MaxAdvance time.Duration
	// Buffer extends the occupied range of existing bookings on both sides.
	// It does not extend the request against the window boundary itself.
	Buffer time.Duration
}

// Decide evaluates a requested range against a ledger snapshot. It is a pure
// function: the snapshot it reads is advisory, the ledger's Reserve is the
// authoritative gate under concurrency.
//
// The caller must have validated the range already; zero-length ranges never
// reach the overlap test.
func Decide(snap *ledger.Snapshot, r timerange.Range, now time.Time, p Policy) Outcome {
	if r.Start.Before(now.Add(p.LeadTime)) {
		return RejectedLeadTimeTooShort
	}
	if p.MaxAdvance > 0 && r.Start.After(now.Add(p.MaxAdvance)) {
		return RejectedTooFarInAdvance
	}
	if !snap.Covers(r) {
		return RejectedOutsideWindow
	}
	if snap.FreeCapacity(r, p.Buffer) < 1 {
		return RejectedNoAvailability
	}
	return Accepted
}
