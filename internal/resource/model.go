package resource

import (
	"net/http"
	"time"

	"github.com/bookwell/booking-platform-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "resource not found")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrEmptyName        = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidTimezone  = apperror.New(http.StatusBadRequest, "invalid IANA timezone")
	ErrInUse            = apperror.New(http.StatusConflict, "resource has bookings and cannot be deleted")
)

// Resource is a bookable unit: a provider's service offering. Its identity
// is stable for the lifetime of all bookings referencing it.
type Resource struct {
	ID        string
	OwnerID   string
	Name      string
	Timezone  string
	CreatedAt time.Time
}

// Filter defines parameters for listing resources.
type Filter struct {
	OwnerID  string
	Page     int
	PageSize int
}
