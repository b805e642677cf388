package resource

import (
	"context"
	"strings"
	"time"
)

type CreateInput struct {
	Name     string
	Timezone string
}

type UpdateInput struct {
	Name     *string
	Timezone *string
}

type Service interface {
	Create(ctx context.Context, ownerID string, input CreateInput) (*Resource, error)
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	Update(ctx context.Context, id string, callerID string, input UpdateInput) (*Resource, error)
	Delete(ctx context.Context, id string, callerID string) error

	// OwnerID reports who owns a resource, for permission checks made by
	// other modules.
	OwnerID(ctx context.Context, resourceID string) (string, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, ownerID string, input CreateInput) (*Resource, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	tz := input.Timezone
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, ErrInvalidTimezone
	}

	res := &Resource{
		OwnerID:  ownerID,
		Name:     name,
		Timezone: tz,
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, callerID string, input UpdateInput) (*Resource, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.OwnerID != callerID {
		return nil, ErrPermissionDenied
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		res.Name = name
	}
	if input.Timezone != nil {
		if _, err := time.LoadLocation(*input.Timezone); err != nil {
			return nil, ErrInvalidTimezone
		}
		res.Timezone = *input.Timezone
	}

	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) Delete(ctx context.Context, id string, callerID string) error {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if res.OwnerID != callerID {
		return ErrPermissionDenied
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) OwnerID(ctx context.Context, resourceID string) (string, error) {
	res, err := s.repo.GetByID(ctx, resourceID)
	if err != nil {
		return "", err
	}
	return res.OwnerID, nil
}
