package interfaces

import (
	"context"
	"igmetrics/internal/models"
)

// ProfileStoreInterface persists one ProfileMetrics record per username.
// Load returns (nil, nil) for an unknown username.
type ProfileStoreInterface interface {
	Load(ctx context.Context, username string) (*models.ProfileMetrics, error)
	Save(ctx context.Context, p *models.ProfileMetrics) error
	Delete(ctx context.Context, username string) error
	DeleteAll(ctx context.Context) (int, error)
	List(ctx context.Context) ([]*models.ProfileMetrics, error)
	Count(ctx context.Context) (int, error)
}

// SnapshotterInterface is implemented by stores kept in memory and persisted
// to a snapshot file.
type SnapshotterInterface interface {
	Snapshot() *models.Storage
	Restore(storage *models.Storage) []string
}
