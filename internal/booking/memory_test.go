package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &Booking{
			ID:          fmt.Sprintf("b%d", i),
			ResourceID:  "res",
			RequesterID: "u-req",
			StartTime:   base.Add(time.Duration(i) * time.Hour),
			EndTime:     base.Add(time.Duration(i)*time.Hour + 30*time.Minute),
			Status:      StatusPending,
		}))
	}

	t.Run("start time bounds", func(t *testing.T) {
		from := base.Add(1 * time.Hour)
		to := base.Add(3 * time.Hour)
		out, total, err := repo.List(ctx, Filter{StartTimeFrom: &from, StartTimeTo: &to})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, out, 3)
		assert.Equal(t, "b1", out[0].ID)
		assert.Equal(t, "b3", out[2].ID)
	})

	t.Run("pagination keeps the full total", func(t *testing.T) {
		out, total, err := repo.List(ctx, Filter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, out, 2)
		assert.Equal(t, "b2", out[0].ID)
		assert.Equal(t, "b3", out[1].ID)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		out, total, err := repo.List(ctx, Filter{Page: 4, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Empty(t, out)
	})

	t.Run("descending order", func(t *testing.T) {
		out, _, err := repo.List(ctx, Filter{SortOrder: "DESC", PageSize: 2})
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "b4", out[0].ID)
		assert.Equal(t, "b3", out[1].ID)
	})
}
