package storage

import (
	"context"
	"igmetrics/internal/models"
	"igmetrics/internal/testutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalScreenshotStore_PutGetDelete(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalScreenshotStore(dir, "/screenshots/", &testutil.MockLogger{})
	ctx := context.Background()

	ref, err := s.Put(ctx, "yoga_anna", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "yoga_anna/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	data, err := s.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	url, err := s.URL(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "/screenshots/"+ref, url)

	require.NoError(t, s.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(dir, ref))
	assert.True(t, os.IsNotExist(err))

	_, err = s.Get(ctx, ref)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLocalScreenshotStore_DeleteMissingIsNoop(t *testing.T) {
	s := NewLocalScreenshotStore(t.TempDir(), "", &testutil.MockLogger{})
	assert.NoError(t, s.Delete(context.Background(), "nobody/01J.png"))
}

func TestLocalScreenshotStore_RejectsTraversal(t *testing.T) {
	s := NewLocalScreenshotStore(t.TempDir(), "", &testutil.MockLogger{})
	ctx := context.Background()

	for _, ref := range []string{"", "../etc/passwd", "/etc/passwd", "a/../../b"} {
		_, err := s.Get(ctx, ref)
		assert.Error(t, err, ref)
		assert.Error(t, s.Delete(ctx, ref), ref)
	}
}

func TestLocalScreenshotStore_KeysAreUnique(t *testing.T) {
	s := NewLocalScreenshotStore(t.TempDir(), "", &testutil.MockLogger{})
	ctx := context.Background()

	a, err := s.Put(ctx, "u", []byte("1"), "image/jpeg")
	require.NoError(t, err)
	b, err := s.Put(ctx, "u", []byte("2"), "image/jpeg")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestScreenshotExt(t *testing.T) {
	assert.Equal(t, ".png", screenshotExt("image/png"))
	assert.Equal(t, ".jpg", screenshotExt("IMAGE/JPEG; charset=binary"))
	assert.Equal(t, ".webp", screenshotExt("image/webp"))
	assert.Equal(t, ".bin", screenshotExt(""))
}
