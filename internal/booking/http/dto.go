package http

import (
	"time"

	"github.com/bookwell/booking-platform-backend/internal/booking"
	resHttp "github.com/bookwell/booking-platform-backend/internal/resource/http"
	userHttp "github.com/bookwell/booking-platform-backend/internal/user/http"
)

type CreateBookingRequest struct {
	ResourceID string    `json:"resource_id" binding:"required,uuid"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
}

type RescheduleBookingRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type CancelBookingRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

// ListBookingsRequest defines query parameters for listing bookings. The
// "as" parameter picks the caller's side: their own bookings (requester,
// the default) or bookings against resources they own.
type ListBookingsRequest struct {
	As            string     `form:"as,default=requester" binding:"omitempty,oneof=requester owner"`
	ResourceID    string     `form:"resource_id" binding:"omitempty,uuid"`
	Status        string     `form:"status" binding:"omitempty,oneof=pending confirmed cancelled completed no_show"`
	StartTimeFrom *time.Time `form:"start_time_from" time_format:"2006-01-02T15:04:05Z07:00"`
	StartTimeTo   *time.Time `form:"start_time_to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page          int        `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	SortBy        string     `form:"sort_by" binding:"omitempty,oneof=start_time end_time created_at status"`
	SortOrder     string     `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

type BookingResponse struct {
	ID           string              `json:"id"`
	Resource     resHttp.ResourceTag `json:"resource"`
	Requester    userHttp.UserTag    `json:"requester"`
	StartTime    time.Time           `json:"start_time"`
	EndTime      time.Time           `json:"end_time"`
	Status       string              `json:"status"`
	CancelReason *string             `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:           b.ID,
		Resource:     resHttp.ResourceTag{ID: b.ResourceID, Name: b.ResourceName},
		Requester:    userHttp.UserTag{ID: b.RequesterID, Name: b.RequesterName},
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		Status:       string(b.Status),
		CancelReason: b.CancelReason,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
