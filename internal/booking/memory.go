package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bookwell/booking-platform-backend/internal/timerange"
)

// MemoryRepository is an in-memory Repository for tests and for embedding
// the reservation core without a database. It knows nothing about resource
// ownership, so Filter.OwnerID is only honoured by the pgx repository.
type MemoryRepository struct {
	mu       sync.Mutex
	bookings map[string]*Booking
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bookings: make(map[string]*Booking)}
}

func clone(b *Booking) *Booking {
	copied := *b
	if b.CancelReason != nil {
		reason := *b.CancelReason
		copied.CancelReason = &reason
	}
	return &copied
}

func (r *MemoryRepository) Create(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.bookings[b.ID] = clone(b)
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(b), nil
}

func (r *MemoryRepository) List(_ context.Context, filter Filter) ([]*Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Booking
	for _, b := range r.bookings {
		if filter.RequesterID != "" && b.RequesterID != filter.RequesterID {
			continue
		}
		if filter.ResourceID != "" && b.ResourceID != filter.ResourceID {
			continue
		}
		if filter.Status != "" && string(b.Status) != filter.Status {
			continue
		}
		if filter.StartTimeFrom != nil && b.StartTime.Before(*filter.StartTimeFrom) {
			continue
		}
		if filter.StartTimeTo != nil && b.StartTime.After(*filter.StartTimeTo) {
			continue
		}
		out = append(out, clone(b))
	}

	sort.Slice(out, func(i, j int) bool {
		if filter.SortOrder == "DESC" {
			i, j = j, i
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	total := len(out)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > filter.PageSize {
		out = out[:filter.PageSize]
	}
	return out, total, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, b *Booking) error {
	return r.update(b, func(stored *Booking) {
		stored.Status = b.Status
		stored.CancelReason = b.CancelReason
	})
}

func (r *MemoryRepository) UpdateTimes(_ context.Context, b *Booking) error {
	return r.update(b, func(stored *Booking) {
		stored.StartTime = b.StartTime
		stored.EndTime = b.EndTime
	})
}

func (r *MemoryRepository) update(b *Booking, apply func(*Booking)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	apply(stored)
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) ListExpiredConfirmed(_ context.Context, asOf time.Time, limit int) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Booking
	for _, b := range r.bookings {
		if b.Status == StatusConfirmed && !b.EndTime.After(asOf) {
			out = append(out, clone(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndTime.Before(out[j].EndTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) CountActiveOverlapping(_ context.Context, resourceID string, rng timerange.Range) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, b := range r.bookings {
		if b.ResourceID != resourceID || !b.Status.Active() {
			continue
		}
		if (timerange.Range{Start: b.StartTime, End: b.EndTime}).Overlaps(rng) {
			count++
		}
	}
	return count, nil
}
