package ebc

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/ebc/internal/testutil"
)

var scratchName = regexp.MustCompile(`^ebc-[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}\.xar$`)

func TestWithScratchFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var seen string
	err := withScratchFile(dir, ".xar", []byte("payload"), func(path string) error {
		seen = path
		assert.Equal(t, dir, filepath.Dir(path))
		assert.Regexp(t, scratchName, filepath.Base(path))
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), got)
		return nil
	})
	require.NoError(t, err)
	requireGone(t, seen)
	assert.Empty(t, testutil.ListDir(t, dir))
}

func TestWithScratchFileRemovesOnError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	boom := errors.New("boom")
	err := withScratchFile(dir, ".xml", nil, func(string) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Empty(t, testutil.ListDir(t, dir))
}

func TestWithScratchFileRemovesOnPanic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.Panics(t, func() {
		_ = withScratchFile(dir, ".xml", nil, func(string) error { panic("boom") }) //nolint:errcheck // panics
	})
	assert.Empty(t, testutil.ListDir(t, dir))
}

func TestWithScratchFileToleratesEarlyRemoval(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := withScratchFile(dir, ".xml", nil, func(path string) error {
		return os.Remove(path)
	})
	require.NoError(t, err)
}

func TestWithScratchFileMissingDir(t *testing.T) {
	t.Parallel()

	called := false
	err := withScratchFile(filepath.Join(t.TempDir(), "missing"), ".xar", nil, func(string) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, called)
}

func TestWriteUniqueNamesDiffer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seen := make(map[string]bool)
	for range 32 {
		path, err := writeUnique(dir, "p_", ".bin", []byte("x"))
		require.NoError(t, err)
		require.False(t, seen[path])
		seen[path] = true
	}
	assert.Len(t, testutil.ListDir(t, dir), 32)
}
