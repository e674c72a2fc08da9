package storage

import (
	"context"
	"fmt"
	"igmetrics/internal/models"
	"igmetrics/internal/providers"
	"igmetrics/internal/storage/interfaces"
	"igmetrics/internal/structures"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"

	LockLocal = "local"
	LockRedis = "redis"

	ScreenshotsLocal = "local"
	ScreenshotsS3    = "s3"
)

const (
	connectTimeout       = 10 * time.Second
	DefaultScreenshotDir = "data/screenshots"
	DefaultScreenshotURL = "/screenshots"
)

// NewProfileStore opens the configured profile store. The returned func
// releases its resources.
func NewProfileStore(conf *structures.Config, logger providers.Logger) (interfaces.ProfileStoreInterface, func(), error) {
	switch conf.Storage.Driver {
	case DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		store, err := NewPostgresStore(ctx, conf.Storage.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case DriverMemory, "":
		return models.NewProfileStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
}

// NewSnapshotter exposes the snapshot side of an in-memory store. Stores
// that persist on write get one that snapshots nothing.
func NewSnapshotter(store interfaces.ProfileStoreInterface) interfaces.SnapshotterInterface {
	if s, ok := store.(interfaces.SnapshotterInterface); ok {
		return s
	}
	return detachedSnapshotter{}
}

// NewProfileCounter exposes the store to the metrics gauge and health probe.
func NewProfileCounter(store interfaces.ProfileStoreInterface) providers.ProfileCounter {
	return store
}

type detachedSnapshotter struct{}

func (detachedSnapshotter) Snapshot() *models.Storage {
	return &models.Storage{Version: models.StorageVersion, Profiles: map[string]*models.ProfileMetrics{}}
}

func (detachedSnapshotter) Restore(*models.Storage) []string { return nil }

func NewLocker(conf *structures.Config, logger providers.Logger) (interfaces.LockerInterface, func(), error) {
	lock := conf.Storage.Lock
	switch lock.Driver {
	case LockRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     lock.RedisAddr,
			Password: lock.Password,
			DB:       lock.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		locker := NewRedisLocker(client, lock.TTL, logger)
		return locker, func() { locker.Close() }, nil
	case LockLocal, "":
		return NewKeyedLocker(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown lock driver %q", lock.Driver)
	}
}

func NewScreenshotStore(conf *structures.Config, logger providers.Logger) (interfaces.ScreenshotStoreInterface, error) {
	sc := conf.Screenshots
	switch sc.Driver {
	case ScreenshotsS3:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		return NewS3ScreenshotStore(ctx, sc, logger)
	case ScreenshotsLocal, "":
		dir, publicURL := sc.Dir, sc.PublicURL
		if dir == "" {
			dir = DefaultScreenshotDir
		}
		if publicURL == "" {
			publicURL = DefaultScreenshotURL
		}
		return NewLocalScreenshotStore(dir, publicURL, logger), nil
	default:
		return nil, fmt.Errorf("unknown screenshot driver %q", sc.Driver)
	}
}
