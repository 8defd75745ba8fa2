package scenefile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsOnlyItsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	require.NoError(t, os.WriteFile(path, DefaultSource(), 0o644))

	w, err := Watch(path)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, path, w.Path())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644))
	select {
	case <-w.Changed():
		require.Fail(t, "change reported for another file")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, DefaultSource(), 0o644))
	select {
	case <-w.Changed():
	case err := <-w.Errors():
		require.NoError(t, err, "watch error")
	case <-time.After(5 * time.Second):
		require.Fail(t, "no change reported")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	_, err := Watch(filepath.Join(t.TempDir(), "nope", "scene.toml"))
	assert.Error(t, err)
}
