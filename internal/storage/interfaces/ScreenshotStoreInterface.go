package interfaces

import "context"

// ScreenshotStoreInterface owns uploaded screenshots. Put returns an opaque
// reference that is stored on the profile record.
type ScreenshotStoreInterface interface {
	Put(ctx context.Context, username string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	URL(ctx context.Context, ref string) (string, error)
	Delete(ctx context.Context, ref string) error
}
