package storage

import (
	"context"
	"errors"
	"fmt"
	"igmetrics/internal/models"
	"igmetrics/internal/structures"
	"igmetrics/internal/testutil"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfileStore_MemoryDefault(t *testing.T) {
	store, closeFn, err := NewProfileStore(&structures.Config{}, &testutil.MockLogger{})
	require.NoError(t, err)
	defer closeFn()

	_, ok := store.(*models.ProfileStore)
	assert.True(t, ok)
	_, ok = NewSnapshotter(store).(*models.ProfileStore)
	assert.True(t, ok)
}

func TestNewProfileStore_UnknownDriver(t *testing.T) {
	conf := &structures.Config{Storage: structures.StorageConfig{Driver: "sqlite"}}
	_, _, err := NewProfileStore(conf, &testutil.MockLogger{})
	assert.Error(t, err)
}

func TestNewSnapshotter_Detached(t *testing.T) {
	s := NewSnapshotter(&PostgresStore{})
	snap := s.Snapshot()
	assert.Empty(t, snap.Profiles)
	assert.Nil(t, s.Restore(snap))
}

func TestNewLocker_LocalDefault(t *testing.T) {
	locker, closeFn, err := NewLocker(&structures.Config{}, &testutil.MockLogger{})
	require.NoError(t, err)
	defer closeFn()

	unlock, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
}

func TestNewLocker_UnknownDriver(t *testing.T) {
	conf := &structures.Config{Storage: structures.StorageConfig{Lock: structures.LockConfig{Driver: "etcd"}}}
	_, _, err := NewLocker(conf, &testutil.MockLogger{})
	assert.Error(t, err)
}

func TestNewScreenshotStore_LocalDefaults(t *testing.T) {
	store, err := NewScreenshotStore(&structures.Config{}, &testutil.MockLogger{})
	require.NoError(t, err)

	local, ok := store.(*LocalScreenshotStore)
	require.True(t, ok)
	assert.Equal(t, DefaultScreenshotDir, local.dir)
	assert.Equal(t, DefaultScreenshotURL, local.publicURL)
}

func TestClassifyPgError(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
	err := classifyPgError(fmt.Errorf("exec: %w", unique))
	assert.ErrorIs(t, err, models.ErrPersistenceConflict)

	check := &pgconn.PgError{Code: "23514", Message: "violates check constraint"}
	assert.ErrorIs(t, classifyPgError(check), models.ErrPersistenceConflict)

	other := &pgconn.PgError{Code: "08006", Message: "connection failure"}
	assert.NotErrorIs(t, classifyPgError(other), models.ErrPersistenceConflict)

	plain := errors.New("boom")
	assert.Equal(t, plain, classifyPgError(plain))
}
