package repo

import (
	"context"
	"testing"
	"time"

	"ReWear/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestItemRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ctx := context.Background()
	u := mkUser(t, db, "owner@example.com", 0)

	it := mkListing(t, db, u.ID, 75, model.ModerationPending)
	assert.NotEmpty(t, it.ID)
	assert.Equal(t, int64(1), it.Version)

	got, err := r.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vintage Denim Jacket", got.Title)
	assert.Equal(t, []string{"denim"}, []string(got.Tags))
	assert.Equal(t, []string{"/api/images/x"}, []string(got.Images))
	assert.Equal(t, model.ModerationPending, got.Moderation)
	assert.Equal(t, model.AvailabilityAvailable, got.Availability)

	_, err = r.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestItemRepository_ListAcquirable(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ctx := context.Background()
	u := mkUser(t, db, "owner@example.com", 0)

	approved := mkListing(t, db, u.ID, 75, model.ModerationApproved)
	mkListing(t, db, u.ID, 45, model.ModerationPending)
	mkListing(t, db, u.ID, 45, model.ModerationRejected)
	taken := mkListing(t, db, u.ID, 120, model.ModerationApproved)
	_, err := r.UpdateWithVersion(ctx, taken.ID, taken.Version, map[string]any{"availability": model.AvailabilitySwapped})
	require.NoError(t, err)

	items, err := r.ListAcquirable(ctx)
	require.NoError(t, err)
	if assert.Len(t, items, 1) {
		assert.Equal(t, approved.ID, items[0].ID)
	}

	mine, err := r.ListByUploader(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 4)

	queue, err := r.ListByModeration(ctx, model.ModerationPending)
	require.NoError(t, err)
	assert.Len(t, queue, 1)

	all, err := r.ListByModeration(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	swapped, err := r.ListByAvailability(ctx, model.AvailabilitySwapped)
	require.NoError(t, err)
	assert.Len(t, swapped, 1)
}

func TestItemRepository_UpdateWithVersion(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ctx := context.Background()
	u := mkUser(t, db, "owner@example.com", 0)
	it := mkListing(t, db, u.ID, 75, model.ModerationPending)

	// успешное обновление
	v, err := r.UpdateWithVersion(ctx, it.ID, 1, map[string]any{"moderation": model.ModerationApproved})
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	got, err := r.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ModerationApproved, got.Moderation)
	assert.Equal(t, int64(2), got.Version)

	// устаревшая версия
	_, err = r.UpdateWithVersion(ctx, it.ID, 1, map[string]any{"moderation": model.ModerationRemoved})
	assert.ErrorIs(t, err, ErrVersionConflict)

	// несуществующая запись
	_, err = r.UpdateWithVersion(ctx, "missing", 1, map[string]any{"moderation": model.ModerationRemoved})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestItemRepository_GetItemsUpdatedSince(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ctx := context.Background()
	u := mkUser(t, db, "owner@example.com", 0)

	old := mkListing(t, db, u.ID, 75, model.ModerationPending)
	fresh := mkListing(t, db, u.ID, 45, model.ModerationPending)

	time.Sleep(20 * time.Millisecond)
	since := time.Now()
	time.Sleep(20 * time.Millisecond)

	_, err := r.UpdateWithVersion(ctx, fresh.ID, fresh.Version, map[string]any{"moderation": model.ModerationApproved})
	require.NoError(t, err)

	items, err := r.GetItemsUpdatedSince(ctx, since)
	require.NoError(t, err)
	if assert.Len(t, items, 1) {
		assert.Equal(t, fresh.ID, items[0].ID)
		assert.NotEqual(t, old.ID, items[0].ID)
	}
}

func TestItemRepository_DeleteAndCount(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ctx := context.Background()
	u := mkUser(t, db, "owner@example.com", 0)

	a := mkListing(t, db, u.ID, 75, model.ModerationPending)
	mkListing(t, db, u.ID, 75, model.ModerationPending)
	mkListing(t, db, u.ID, 75, model.ModerationApproved)

	counts, err := r.CountByModeration(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[model.ModerationPending])
	assert.Equal(t, int64(1), counts[model.ModerationApproved])
	assert.Zero(t, counts[model.ModerationRejected])

	require.NoError(t, r.Delete(ctx, a.ID))
	assert.ErrorIs(t, r.Delete(ctx, a.ID), gorm.ErrRecordNotFound)

	counts, err = r.CountByModeration(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[model.ModerationPending])
}
