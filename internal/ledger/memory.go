package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bookwell/booking-platform-backend/internal/timerange"
)

// MemoryStore is an in-memory Store. It backs the core tests and is handy
// for embedding the reservation core without a database.
type MemoryStore struct {
	mu        sync.Mutex
	resources map[string]bool
	windows   map[string][]Window
	holds     map[string]map[string]Hold // resourceID -> bookingID -> hold
	entries   map[string][]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		resources: make(map[string]bool),
		windows:   make(map[string][]Window),
		holds:     make(map[string]map[string]Hold),
		entries:   make(map[string][]Entry),
	}
}

// AddResource registers a resource so ResourceExists reports it.
func (s *MemoryStore) AddResource(resourceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[resourceID] = true
}

// SetWindows replaces the availability windows of a resource.
func (s *MemoryStore) SetWindows(resourceID string, windows []Window) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[resourceID] = true
	s.windows[resourceID] = append([]Window(nil), windows...)
}

// Entries returns a copy of the audit log for a resource.
func (s *MemoryStore) Entries(resourceID string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries[resourceID]...)
}

func (s *MemoryStore) ResourceExists(_ context.Context, resourceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resources[resourceID], nil
}

func (s *MemoryStore) WindowsOverlapping(_ context.Context, resourceID string, r timerange.Range) ([]Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Window
	for _, w := range s.windows[resourceID] {
		if w.Range.Overlaps(r) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *MemoryStore) HoldsOverlapping(_ context.Context, resourceID string, r timerange.Range) ([]Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Hold
	for _, h := range s.holds[resourceID] {
		if h.Range.Overlaps(r) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *MemoryStore) InsertHold(_ context.Context, h Hold) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byBooking, ok := s.holds[h.ResourceID]
	if !ok {
		byBooking = make(map[string]Hold)
		s.holds[h.ResourceID] = byBooking
	}
	if _, exists := byBooking[h.BookingID]; exists {
		return fmt.Errorf("hold already exists for booking %s", h.BookingID)
	}
	byBooking[h.BookingID] = h
	return nil
}

func (s *MemoryStore) UpdateHoldRange(_ context.Context, resourceID, bookingID string, r timerange.Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[resourceID][bookingID]
	if !ok {
		return fmt.Errorf("no hold for booking %s", bookingID)
	}
	h.Range = r
	s.holds[resourceID][bookingID] = h
	return nil
}

func (s *MemoryStore) DeleteHold(_ context.Context, resourceID, bookingID string) (*Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[resourceID][bookingID]
	if !ok {
		return nil, nil
	}
	delete(s.holds[resourceID], bookingID)
	return &h, nil
}

func (s *MemoryStore) AppendEntry(_ context.Context, resourceID string, op Op, bookingID string, r timerange.Range) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := int64(len(s.entries[resourceID]) + 1)
	s.entries[resourceID] = append(s.entries[resourceID], Entry{
		ResourceID: resourceID,
		Seq:        seq,
		Op:         op,
		BookingID:  bookingID,
		Range:      r,
		At:         time.Now().UTC(),
	})
	return seq, nil
}
