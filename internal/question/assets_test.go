package question

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetsResolve(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "images", "수1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "images", "수1", "1.png"), []byte("png"), 0o644))
	assets := NewAssets(root)

	full, err := assets.Resolve("images/수1/1.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "images", "수1", "1.png"), full)

	// already rooted references are not joined twice
	full, err = assets.Resolve(filepath.Join(root, "images", "수1", "1.png"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "images", "수1", "1.png"), full)

	rel, ok := assets.Rel("images/수1/1.png")
	assert.True(t, ok)
	assert.Equal(t, "images/수1/1.png", rel)
}

func TestAssetsResolveMissing(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "images"), 0o755))
	assets := NewAssets(root)

	_, err := assets.Resolve("images/2.png")
	var missing *MissingAssetError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "images/2.png", missing.Path)

	_, err = assets.Resolve("images")
	assert.True(t, errors.As(err, &missing), "directories are not images")

	_, err = assets.Resolve("  ")
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestAssetsRelRejectsEscapes(t *testing.T) {
	assets := NewAssets(t.TempDir())
	_, ok := assets.Rel("../secret.png")
	assert.False(t, ok)
}
