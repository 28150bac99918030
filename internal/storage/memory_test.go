package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "car.jpg")
	require.NoError(t, os.WriteFile(p, []byte("jpeg-bytes"), 0o600))

	m := NewMemory("")
	img, err := m.Upload(context.Background(), p, "car-website/cars")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.Handle, "car-website/cars/"))
	assert.True(t, strings.HasSuffix(img.Handle, ".jpg"))
	assert.Equal(t, "memory://images/"+img.Handle, img.URL)
	assert.True(t, m.Has(img.Handle))

	// contents were copied, the temp file can go
	require.NoError(t, os.Remove(p))
	assert.Equal(t, []string{img.Handle}, m.Handles())

	require.NoError(t, m.Delete(context.Background(), img.Handle))
	assert.False(t, m.Has(img.Handle))
	assert.Error(t, m.Delete(context.Background(), img.Handle))
}

func TestMemoryUploadMissingFile(t *testing.T) {
	_, err := NewMemory("").Upload(context.Background(), filepath.Join(t.TempDir(), "nope.png"), "x")
	assert.Error(t, err)
}

func TestMemoryUploadHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemory("").Upload(ctx, "whatever", "x")
	assert.ErrorIs(t, err, context.Canceled)
}
