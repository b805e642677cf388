package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookwell/booking-platform-backend/internal/auth"
	"github.com/bookwell/booking-platform-backend/internal/availability"
	"github.com/bookwell/booking-platform-backend/internal/pkg/apperror"
	"github.com/bookwell/booking-platform-backend/internal/pkg/response"
)

var errInvalidUUID = apperror.New(http.StatusBadRequest, "invalid UUID")

type Handler struct {
	service availability.Service
}

func NewHandler(service availability.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	resourceID := c.Param("id")
	if _, err := uuid.Parse(resourceID); err != nil {
		response.Error(c, errInvalidUUID)
		return
	}

	var body CreateWindowRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	w, err := h.service.Create(c.Request.Context(), resourceID, auth.GetUserID(c), availability.CreateInput{
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Capacity:  body.Capacity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewWindowResponse(w))
}

func (h *Handler) List(c *gin.Context) {
	resourceID := c.Param("id")
	if _, err := uuid.Parse(resourceID); err != nil {
		response.Error(c, errInvalidUUID)
		return
	}

	windows, err := h.service.ListByResource(c.Request.Context(), resourceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]WindowResponse, len(windows))
	for i, w := range windows {
		items[i] = NewWindowResponse(w)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, errInvalidUUID)
		return
	}

	var body UpdateWindowRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	w, err := h.service.Update(c.Request.Context(), id, auth.GetUserID(c), availability.UpdateInput{
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Capacity:  body.Capacity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewWindowResponse(w))
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, errInvalidUUID)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) FreeSlots(c *gin.Context) {
	resourceID := c.Param("id")
	if _, err := uuid.Parse(resourceID); err != nil {
		response.Error(c, errInvalidUUID)
		return
	}

	var query FreeSlotsRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, availability.ErrInvalidDate)
		return
	}

	slots, err := h.service.FreeSlots(c.Request.Context(), resourceID, query.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]FreeSlotResponse, len(slots))
	for i, s := range slots {
		items[i] = FreeSlotResponse{StartTime: s.StartTime, EndTime: s.EndTime, Free: s.Free}
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
