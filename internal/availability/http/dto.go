package http

import (
	"time"

	"github.com/bookwell/booking-platform-backend/internal/availability"
)

type CreateWindowRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Capacity  int       `json:"capacity" binding:"omitempty,min=1"`
}

type UpdateWindowRequest struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Capacity  *int       `json:"capacity" binding:"omitempty,min=1"`
}

type FreeSlotsRequest struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

type WindowResponse struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resource_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Capacity   int       `json:"capacity"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewWindowResponse(w *availability.Window) WindowResponse {
	return WindowResponse{
		ID:         w.ID,
		ResourceID: w.ResourceID,
		StartTime:  w.StartTime,
		EndTime:    w.EndTime,
		Capacity:   w.Capacity,
		CreatedAt:  w.CreatedAt,
	}
}

type FreeSlotResponse struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Free      int       `json:"free"`
}
