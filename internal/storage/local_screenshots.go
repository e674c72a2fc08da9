package storage

import (
	"context"
	"fmt"
	"igmetrics/internal/models"
	"igmetrics/internal/providers"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// LocalScreenshotStore keeps uploaded screenshots under a directory, one
// subdirectory per username. References are paths relative to that directory.
type LocalScreenshotStore struct {
	dir       string
	publicURL string
	logger    providers.Logger
}

func NewLocalScreenshotStore(dir, publicURL string, logger providers.Logger) *LocalScreenshotStore {
	return &LocalScreenshotStore{
		dir:       dir,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    logger,
	}
}

func (s *LocalScreenshotStore) Put(_ context.Context, username string, data []byte, contentType string) (string, error) {
	ref := screenshotKey(username, contentType)
	path, err := s.path(ref)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return "", err
	}

	s.logger.Debugf(providers.TypeAnalysis, "Stored screenshot %s (%d bytes)", ref, len(data))
	return ref, nil
}

func (s *LocalScreenshotStore) Get(_ context.Context, ref string) ([]byte, error) {
	path, err := s.path(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: screenshot %s", models.ErrNotFound, ref)
	}
	return data, err
}

func (s *LocalScreenshotStore) URL(_ context.Context, ref string) (string, error) {
	if _, err := s.path(ref); err != nil {
		return "", err
	}
	return s.publicURL + "/" + ref, nil
}

// Delete removes the file; a missing file is not an error.
func (s *LocalScreenshotStore) Delete(_ context.Context, ref string) error {
	path, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	os.Remove(filepath.Dir(path))
	return nil
}

func (s *LocalScreenshotStore) path(ref string) (string, error) {
	clean := filepath.Clean(ref)
	if ref == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid screenshot reference %q", ref)
	}
	return filepath.Join(s.dir, clean), nil
}

// screenshotKey builds "<username>/<ulid><ext>". ULIDs sort by upload time.
func screenshotKey(username, contentType string) string {
	return username + "/" + ulid.Make().String() + screenshotExt(contentType)
}

func screenshotExt(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}
