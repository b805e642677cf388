package availability

import (
	"net/http"
	"time"

	"github.com/bookwell/booking-platform-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "availability window not found")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidRange     = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrInvalidCapacity  = apperror.New(http.StatusBadRequest, "capacity must be at least 1")
	ErrInvalidDate      = apperror.New(http.StatusBadRequest, "date must be in YYYY-MM-DD format")
	ErrWindowInUse      = apperror.New(http.StatusConflict, "window has active bookings and cannot be deleted")
)

// Window is a bookable interval published by a resource owner. Capacity is
// the number of concurrent bookings the interval admits; overlapping windows
// add their capacities together.
type Window struct {
	ID         string
	ResourceID string
	StartTime  time.Time
	EndTime    time.Time
	Capacity   int
	CreatedAt  time.Time
}
