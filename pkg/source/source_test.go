package source_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/ratchet/pkg/source"
)

func TestNewLocalSource(t *testing.T) {
	t.Run("should accept an existing directory", func(t *testing.T) {
		dir := t.TempDir()

		src, err := source.NewLocalSource(dir)
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(src.Root()))
	})

	t.Run("should reject a missing root", func(t *testing.T) {
		_, err := source.NewLocalSource(filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("should reject a regular file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.py")
		require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0644))

		_, err := source.NewLocalSource(file)
		require.Error(t, err)
		assert.True(t, errors.Is(err, source.ErrNotDirectory))
	})
}

func TestLocalSource_ReadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "a.py"), []byte("print(1)\n"), 0644))

	src, err := source.NewLocalSource(dir)
	require.NoError(t, err)

	content, err := src.ReadFile(context.Background(), "pkg/a.py")
	require.NoError(t, err)
	assert.Equal(t, "print(1)\n", string(content))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.ReadFile(ctx, "pkg/a.py")
	assert.ErrorIs(t, err, context.Canceled)
}
