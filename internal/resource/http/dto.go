package http

import (
	"time"

	"github.com/bookwell/booking-platform-backend/internal/resource"
)

type CreateResourceRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Timezone string `json:"timezone" binding:"omitempty,max=64"`
}

type UpdateResourceRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=200"`
	Timezone *string `json:"timezone" binding:"omitempty,max=64"`
}

type ListResourcesRequest struct {
	OwnerID  string `form:"owner_id" binding:"omitempty,uuid"`
	Page     int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

type ResourceResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
}

func NewResourceResponse(res *resource.Resource) ResourceResponse {
	return ResourceResponse{
		ID:        res.ID,
		OwnerID:   res.OwnerID,
		Name:      res.Name,
		Timezone:  res.Timezone,
		CreatedAt: res.CreatedAt,
	}
}

// ResourceTag is the compact representation embedded in other responses.
type ResourceTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
