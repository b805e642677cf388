package booking

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bookwell/booking-platform-backend/internal/pkg/apperror"
)

var (
	ErrNotFound                 = apperror.New(http.StatusNotFound, "booking not found")
	ErrPermissionDenied         = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidTransition        = apperror.New(http.StatusConflict, "invalid booking state transition")
	ErrCancellationWindowClosed = apperror.New(http.StatusConflict, "cancellation window closed")
	ErrNotStarted               = apperror.New(http.StatusConflict, "booking has not started yet")
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// Active reports whether the status holds capacity: only pending and
// confirmed bookings occupy their slot.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Capability is the authorization tag the boundary layer resolves for a
// caller before handing a request to the core. Capability resolution itself
// (who owns which resource) is external to the state machine.
type Capability string

const (
	// CapabilityRequester may create bookings and cancel its own.
	CapabilityRequester Capability = "requester"
	// CapabilityResourceOwner may confirm, reject, cancel, complete and
	// mark no-show on bookings against owned resources.
	CapabilityResourceOwner Capability = "resource_owner"
	// CapabilitySystem is internal automation (the completion sweeper).
	CapabilitySystem Capability = "system"
)

// Actor is the authenticated caller plus its resolved capability.
type Actor struct {
	UserID     string
	Capability Capability
}

// Booking is a reservation of [StartTime, EndTime) against a resource.
// Bookings are retained after cancellation and completion for audit.
type Booking struct {
	ID            string
	ResourceID    string
	ResourceName  string
	RequesterID   string
	RequesterName string
	StartTime     time.Time
	EndTime       time.Time
	Status        Status
	CancelReason  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Filter defines parameters for listing bookings. Exactly one of RequesterID
// or OwnerID is set by the boundary layer, scoping the list to the caller's
// own bookings or to bookings on resources the caller owns.
type Filter struct {
	RequesterID   string
	OwnerID       string
	ResourceID    string
	Status        string
	StartTimeFrom *time.Time
	StartTimeTo   *time.Time
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}

// TransitionError reports an illegal lifecycle transition, carrying the
// current and attempted state.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal booking transition from %q to %q", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
