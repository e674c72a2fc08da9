package storage

import (
	"fmt"
	"igmetrics/internal/models"
	"igmetrics/internal/providers"
	"igmetrics/internal/storage/interfaces"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// FileManager writes the in-memory profile store to a compressed snapshot
// file and reads it back on start.
type FileManager struct {
	store      interfaces.SnapshotterInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store interfaces.SnapshotterInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	snapshot := f.store.Snapshot()

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(fileName); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var snapshot models.Storage
	if err := json.Unmarshal(decompressedData, &snapshot); err == nil && snapshot.Profiles != nil {
		if snapshot.Version > models.StorageVersion {
			return fmt.Errorf("snapshot version %d is newer than supported %d", snapshot.Version, models.StorageVersion)
		}
		f.restore(&snapshot)
		return nil
	}

	// Exports made before the envelope existed are a bare username → record map.
	f.logger.Warnf(providers.TypeApp, "Snapshot envelope not found, trying flat profile map")
	var flat map[string]*models.ProfileMetrics
	if err := json.Unmarshal(decompressedData, &flat); err != nil {
		f.logger.Warnf(providers.TypeApp, "Migration failed")
		return err
	}
	f.logger.Warnf(providers.TypeApp, "Migration from flat profile map successful")
	f.restore(&models.Storage{Version: models.StorageVersion, Profiles: flat})
	return nil
}

func (f *FileManager) restore(snapshot *models.Storage) {
	skipped := f.store.Restore(snapshot)
	for _, username := range skipped {
		f.logger.Warnf(providers.TypeApp, "Skipped invalid profile record %q in snapshot", username)
	}
	f.logger.Infof(providers.TypeApp, "Restored %d profiles", len(snapshot.Profiles)-len(skipped))
}
