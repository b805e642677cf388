package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookwell/booking-platform-backend/internal/ledger"
	"github.com/bookwell/booking-platform-backend/internal/resource"
	"github.com/bookwell/booking-platform-backend/internal/timerange"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

type memoryRepo struct {
	windows map[string]*Window
	nextID  int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{windows: make(map[string]*Window)}
}

func (r *memoryRepo) Create(_ context.Context, w *Window) error {
	r.nextID++
	w.ID = string(rune('0' + r.nextID))
	w.CreatedAt = time.Now().UTC()
	copied := *w
	r.windows[w.ID] = &copied
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*Window, error) {
	w, ok := r.windows[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *w
	return &copied, nil
}

func (r *memoryRepo) ListByResource(_ context.Context, resourceID string) ([]*Window, error) {
	var out []*Window
	for _, w := range r.windows {
		if w.ResourceID == resourceID {
			copied := *w
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryRepo) Update(_ context.Context, w *Window) error {
	if _, ok := r.windows[w.ID]; !ok {
		return ErrNotFound
	}
	copied := *w
	r.windows[w.ID] = &copied
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.windows[id]; !ok {
		return ErrNotFound
	}
	delete(r.windows, id)
	return nil
}

type staticResources struct {
	res *resource.Resource
}

func (d staticResources) GetByID(_ context.Context, id string) (*resource.Resource, error) {
	if id != d.res.ID {
		return nil, resource.ErrNotFound
	}
	return d.res, nil
}

type staticCounter int

func (c staticCounter) CountActiveOverlapping(context.Context, string, timerange.Range) (int, error) {
	return int(c), nil
}

func newTestService(counter ActiveBookingCounter, store *ledger.MemoryStore) (Service, *memoryRepo) {
	repo := newMemoryRepo()
	resources := staticResources{res: &resource.Resource{
		ID:       "res",
		OwnerID:  "u-own",
		Name:     "Studio A",
		Timezone: "UTC",
	}}
	if store == nil {
		store = ledger.NewMemoryStore()
		store.AddResource("res")
	}
	ldg := ledger.New(store, zap.NewNop())
	return NewService(repo, resources, counter, ldg), repo
}

func TestCreateWindow(t *testing.T) {
	svc, _ := newTestService(staticCounter(0), nil)
	ctx := context.Background()

	t.Run("owner creates with default capacity", func(t *testing.T) {
		w, err := svc.Create(ctx, "res", "u-own", CreateInput{
			StartTime: at(9, 0),
			EndTime:   at(17, 0),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, w.Capacity)
	})

	t.Run("non-owner is refused", func(t *testing.T) {
		_, err := svc.Create(ctx, "res", "u-other", CreateInput{
			StartTime: at(9, 0),
			EndTime:   at(17, 0),
		})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("inverted range is refused", func(t *testing.T) {
		_, err := svc.Create(ctx, "res", "u-own", CreateInput{
			StartTime: at(17, 0),
			EndTime:   at(9, 0),
		})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("negative capacity is refused", func(t *testing.T) {
		_, err := svc.Create(ctx, "res", "u-own", CreateInput{
			StartTime: at(9, 0),
			EndTime:   at(17, 0),
			Capacity:  -1,
		})
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})
}

func TestDeleteWindow(t *testing.T) {
	ctx := context.Background()

	t.Run("refused while active bookings overlap", func(t *testing.T) {
		svc, repo := newTestService(staticCounter(2), nil)
		w, err := svc.Create(ctx, "res", "u-own", CreateInput{StartTime: at(9, 0), EndTime: at(17, 0)})
		require.NoError(t, err)

		err = svc.Delete(ctx, w.ID, "u-own")
		assert.ErrorIs(t, err, ErrWindowInUse)

		_, err = repo.GetByID(ctx, w.ID)
		assert.NoError(t, err)
	})

	t.Run("allowed once no active bookings remain", func(t *testing.T) {
		svc, repo := newTestService(staticCounter(0), nil)
		w, err := svc.Create(ctx, "res", "u-own", CreateInput{StartTime: at(9, 0), EndTime: at(17, 0)})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, w.ID, "u-own"))

		_, err = repo.GetByID(ctx, w.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateWindowTruncation(t *testing.T) {
	// Shrinking a window is always allowed, even with bookings inside; they
	// are not cancelled, the window just stops admitting new ones.
	svc, _ := newTestService(staticCounter(3), nil)
	ctx := context.Background()

	w, err := svc.Create(ctx, "res", "u-own", CreateInput{StartTime: at(9, 0), EndTime: at(17, 0)})
	require.NoError(t, err)

	end := at(12, 0)
	updated, err := svc.Update(ctx, w.ID, "u-own", UpdateInput{EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, at(12, 0), updated.EndTime)
}

func TestFreeSlots(t *testing.T) {
	store := ledger.NewMemoryStore()
	store.SetWindows("res", []ledger.Window{
		{Range: timerange.Range{Start: at(9, 0), End: at(12, 0)}, Capacity: 1},
	})
	ctx := context.Background()

	ldg := ledger.New(store, zap.NewNop())
	require.NoError(t, ldg.Reserve(ctx, "res", timerange.Range{Start: at(10, 0), End: at(11, 0)}, "b1", 0))

	svc, _ := newTestService(staticCounter(0), store)

	t.Run("bad date format", func(t *testing.T) {
		_, err := svc.FreeSlots(ctx, "res", "10-03-2026")
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("booked stretch is carved out", func(t *testing.T) {
		slots, err := svc.FreeSlots(ctx, "res", "2026-03-10")
		require.NoError(t, err)
		require.Len(t, slots, 2)

		assert.Equal(t, at(9, 0), slots[0].StartTime)
		assert.Equal(t, at(10, 0), slots[0].EndTime)
		assert.Equal(t, 1, slots[0].Free)

		assert.Equal(t, at(11, 0), slots[1].StartTime)
		assert.Equal(t, at(12, 0), slots[1].EndTime)
	})

	t.Run("day with no windows is empty", func(t *testing.T) {
		slots, err := svc.FreeSlots(ctx, "res", "2026-03-11")
		require.NoError(t, err)
		assert.Empty(t, slots)
	})
}
