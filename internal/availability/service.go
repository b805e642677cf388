package availability

import (
	"context"
	"time"

	"github.com/bookwell/booking-platform-backend/internal/ledger"
	"github.com/bookwell/booking-platform-backend/internal/resource"
	"github.com/bookwell/booking-platform-backend/internal/timerange"
)

type CreateInput struct {
	StartTime time.Time
	EndTime   time.Time
	Capacity  int
}

type UpdateInput struct {
	StartTime *time.Time
	EndTime   *time.Time
	Capacity  *int
}

// FreeSlot is a stretch of a resource's day that can still be booked.
type FreeSlot struct {
	StartTime time.Time
	EndTime   time.Time
	Free      int
}

// ResourceDirectory is the slice of the resource module this service needs:
// ownership for permission checks and timezone for day boundaries.
type ResourceDirectory interface {
	GetByID(ctx context.Context, id string) (*resource.Resource, error)
}

// ActiveBookingCounter counts pending and confirmed bookings overlapping a
// range, used to refuse deleting a window that bookings still depend on.
type ActiveBookingCounter interface {
	CountActiveOverlapping(ctx context.Context, resourceID string, r timerange.Range) (int, error)
}

type Service interface {
	Create(ctx context.Context, resourceID string, callerID string, input CreateInput) (*Window, error)
	ListByResource(ctx context.Context, resourceID string) ([]*Window, error)
	Update(ctx context.Context, windowID string, callerID string, input UpdateInput) (*Window, error)
	Delete(ctx context.Context, windowID string, callerID string) error

	// FreeSlots lists the bookable stretches of one calendar day, interpreted
	// in the resource's timezone. Date is formatted YYYY-MM-DD.
	FreeSlots(ctx context.Context, resourceID string, date string) ([]FreeSlot, error)
}

type service struct {
	repo      Repository
	resources ResourceDirectory
	bookings  ActiveBookingCounter
	ledger    *ledger.Ledger
}

func NewService(repo Repository, resources ResourceDirectory, bookings ActiveBookingCounter, ldg *ledger.Ledger) Service {
	return &service{
		repo:      repo,
		resources: resources,
		bookings:  bookings,
		ledger:    ldg,
	}
}

func (s *service) Create(ctx context.Context, resourceID string, callerID string, input CreateInput) (*Window, error) {
	res, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if res.OwnerID != callerID {
		return nil, ErrPermissionDenied
	}

	if _, err := timerange.New(input.StartTime, input.EndTime); err != nil {
		return nil, ErrInvalidRange
	}
	capacity := input.Capacity
	if capacity == 0 {
		capacity = 1
	}
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	w := &Window{
		ResourceID: resourceID,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		Capacity:   capacity,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *service) ListByResource(ctx context.Context, resourceID string) ([]*Window, error) {
	if _, err := s.resources.GetByID(ctx, resourceID); err != nil {
		return nil, err
	}
	return s.repo.ListByResource(ctx, resourceID)
}

// Update reshapes a window without touching existing bookings: shrinking a
// window never cancels a booking it no longer covers, it only stops new ones.
func (s *service) Update(ctx context.Context, windowID string, callerID string, input UpdateInput) (*Window, error) {
	w, err := s.repo.GetByID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, w.ResourceID, callerID); err != nil {
		return nil, err
	}

	if input.StartTime != nil {
		w.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		w.EndTime = *input.EndTime
	}
	if _, err := timerange.New(w.StartTime, w.EndTime); err != nil {
		return nil, ErrInvalidRange
	}
	if input.Capacity != nil {
		if *input.Capacity < 1 {
			return nil, ErrInvalidCapacity
		}
		w.Capacity = *input.Capacity
	}

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *service) Delete(ctx context.Context, windowID string, callerID string) error {
	w, err := s.repo.GetByID(ctx, windowID)
	if err != nil {
		return err
	}
	if err := s.requireOwner(ctx, w.ResourceID, callerID); err != nil {
		return err
	}

	r := timerange.Range{Start: w.StartTime, End: w.EndTime}
	active, err := s.bookings.CountActiveOverlapping(ctx, w.ResourceID, r)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrWindowInUse
	}

	return s.repo.Delete(ctx, windowID)
}

func (s *service) FreeSlots(ctx context.Context, resourceID string, date string) ([]FreeSlot, error) {
	res, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(res.Timezone)
	if err != nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	dayRange := timerange.Range{Start: day, End: day.AddDate(0, 0, 1)}

	snap, err := s.ledger.Snapshot(ctx, resourceID, dayRange, 0)
	if err != nil {
		return nil, err
	}

	slots := make([]FreeSlot, 0)
	for _, seg := range snap.FreeSegments(dayRange, 0) {
		slots = append(slots, FreeSlot{
			StartTime: seg.Range.Start,
			EndTime:   seg.Range.End,
			Free:      seg.Free,
		})
	}
	return slots, nil
}

func (s *service) requireOwner(ctx context.Context, resourceID string, callerID string) error {
	res, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return err
	}
	if res.OwnerID != callerID {
		return ErrPermissionDenied
	}
	return nil
}
