package models

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfile(username string, followers int64) *ProfileMetrics {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &ProfileMetrics{
		Username:  username,
		Followers: followers,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestProfileStore_LoadMissing(t *testing.T) {
	s := NewProfileStore()
	p, err := s.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileStore_SaveAndLoad(t *testing.T) {
	s := NewProfileStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, newProfile("alice", 100)))

	p, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, int64(100), p.Followers)
}

func TestProfileStore_LoadReturnsCopy(t *testing.T) {
	s := NewProfileStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, newProfile("alice", 100)))

	p, _ := s.Load(ctx, "alice")
	p.Followers = 1

	again, _ := s.Load(ctx, "alice")
	assert.Equal(t, int64(100), again.Followers)
}

func TestProfileStore_SaveUpsertsSingleRecord(t *testing.T) {
	s := NewProfileStore()
	ctx := context.Background()
	first := newProfile("alice", 100)
	require.NoError(t, s.Save(ctx, first))

	second := first.Clone()
	second.Followers = 200
	second.UpdatedAt = first.UpdatedAt.Add(time.Minute)
	require.NoError(t, s.Save(ctx, second))

	n, _ := s.Count(ctx)
	assert.Equal(t, 1, n)
	p, _ := s.Load(ctx, "alice")
	assert.Equal(t, int64(200), p.Followers)
}

func TestProfileStore_SaveRejectsInvalid(t *testing.T) {
	s := NewProfileStore()
	ctx := context.Background()

	err := s.Save(ctx, &ProfileMetrics{})
	assert.True(t, errors.Is(err, ErrPersistenceConflict))

	p := newProfile("bob", -1)
	assert.ErrorIs(t, s.Save(ctx, p), ErrPersistenceConflict)

	p = newProfile("bob", 1)
	p.UpdatedAt = p.CreatedAt.Add(-time.Second)
	assert.ErrorIs(t, s.Save(ctx, p), ErrTimestampOrder)

	n, _ := s.Count(ctx)
	assert.Equal(t, 0, n, "no partial write on conflict")
}

func TestProfileStore_SaveRejectsRecreatedRecord(t *testing.T) {
	s := NewProfileStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, newProfile("alice", 100)))

	other := newProfile("alice", 5)
	other.CreatedAt = other.CreatedAt.Add(time.Hour)
	other.UpdatedAt = other.CreatedAt
	assert.ErrorIs(t, s.Save(ctx, other), ErrPersistenceConflict)
}

func TestProfileStore_Delete(t *testing.T) {
	s := NewProfileStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, newProfile("alice", 100)))

	require.NoError(t, s.Delete(ctx, "alice"))
	assert.ErrorIs(t, s.Delete(ctx, "alice"), ErrNotFound)
}

func TestProfileStore_ListSortedAndDeleteAll(t *testing.T) {
	s := NewProfileStore()
	ctx := context.Background()
	for _, u := range []string{"carol", "alice", "bob"} {
		require.NoError(t, s.Save(ctx, newProfile(u, 1)))
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "alice", list[0].Username)
	assert.Equal(t, "carol", list[2].Username)

	n, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	list, _ = s.List(ctx)
	assert.Empty(t, list)
}

func TestProfileStore_SnapshotRestore(t *testing.T) {
	s := NewProfileStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, newProfile("alice", 100)))

	snap := s.Snapshot()
	assert.Equal(t, StorageVersion, snap.Version)
	snap.Profiles["broken"] = &ProfileMetrics{Username: "other"}

	restored := NewProfileStore()
	skipped := restored.Restore(snap)
	assert.Equal(t, []string{"broken"}, skipped)

	p, _ := restored.Load(ctx, "alice")
	require.NotNil(t, p)
	assert.Equal(t, int64(100), p.Followers)
}

func TestProfileStore_ConcurrentSaves(t *testing.T) {
	s := NewProfileStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Save(ctx, newProfile("user", int64(i)))
			_, _ = s.Load(ctx, "user")
		}(i)
	}
	wg.Wait()
	n, _ := s.Count(ctx)
	assert.Equal(t, 1, n)
}
