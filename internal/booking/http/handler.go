package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookwell/booking-platform-backend/internal/auth"
	"github.com/bookwell/booking-platform-backend/internal/booking"
	"github.com/bookwell/booking-platform-backend/internal/pkg/apperror"
	"github.com/bookwell/booking-platform-backend/internal/pkg/response"
	"github.com/bookwell/booking-platform-backend/internal/reservation"
)

var errInvalidUUID = apperror.New(http.StatusBadRequest, "invalid UUID")

// createTimeout bounds the reserve-and-persist pipeline for one request. A
// request that exceeds it returns 408 and leaves no booking behind.
const createTimeout = 10 * time.Second

type Handler struct {
	coordinator *reservation.Coordinator
	service     booking.Service
}

func NewHandler(coordinator *reservation.Coordinator, service booking.Service) *Handler {
	return &Handler{
		coordinator: coordinator,
		service:     service,
	}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	b, err := h.coordinator.Create(c.Request.Context(), reservation.CreateRequest{
		ResourceID:     body.ResourceID,
		RequesterID:    auth.GetUserID(c),
		StartTime:      body.StartTime,
		EndTime:        body.EndTime,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
		Timeout:        createTimeout,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var query ListBookingsRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	filter := booking.Filter{
		ResourceID:    query.ResourceID,
		Status:        query.Status,
		StartTimeFrom: query.StartTimeFrom,
		StartTimeTo:   query.StartTimeTo,
		Page:          query.Page,
		PageSize:      query.PageSize,
		SortBy:        query.SortBy,
		SortOrder:     query.SortOrder,
	}

	// Scope to the caller's side; there is no unscoped listing.
	callerID := auth.GetUserID(c)
	if query.As == "owner" {
		filter.OwnerID = callerID
	} else {
		filter.RequesterID = callerID
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, query.Page, query.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, errInvalidUUID)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Reschedule(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, errInvalidUUID)
		return
	}

	var body RescheduleBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	b, err := h.coordinator.Reschedule(c.Request.Context(), id, auth.GetUserID(c), body.StartTime, body.EndTime)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Confirm(c *gin.Context) {
	h.action(c, func(id, callerID string) (*booking.Booking, error) {
		return h.service.Confirm(c.Request.Context(), id, callerID)
	})
}

func (h *Handler) Reject(c *gin.Context) {
	var body CancelBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil && c.Request.ContentLength > 0 {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, "invalid request body"))
		return
	}
	h.action(c, func(id, callerID string) (*booking.Booking, error) {
		return h.service.Reject(c.Request.Context(), id, callerID, body.Reason)
	})
}

func (h *Handler) Cancel(c *gin.Context) {
	var body CancelBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil && c.Request.ContentLength > 0 {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, "invalid request body"))
		return
	}
	h.action(c, func(id, callerID string) (*booking.Booking, error) {
		return h.service.Cancel(c.Request.Context(), id, callerID, body.Reason)
	})
}

func (h *Handler) Complete(c *gin.Context) {
	h.action(c, func(id, callerID string) (*booking.Booking, error) {
		return h.service.Complete(c.Request.Context(), id, callerID)
	})
}

func (h *Handler) NoShow(c *gin.Context) {
	h.action(c, func(id, callerID string) (*booking.Booking, error) {
		return h.service.MarkNoShow(c.Request.Context(), id, callerID)
	})
}

func (h *Handler) action(c *gin.Context, fn func(id, callerID string) (*booking.Booking, error)) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, errInvalidUUID)
		return
	}

	b, err := fn(id, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}
