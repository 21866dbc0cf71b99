package filesystem

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_FlagsChanges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "export/a.md", "# A")

	w := NewWatcher(root)
	require.NoError(t, w.Watch([]string{"export"}))
	defer w.Close()

	assert.False(t, w.Dirty())

	writeFile(t, root, "export/b.md", "# B")
	assert.Eventually(t, w.Dirty, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_RewatchClearsDirty(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "export/a.md", "# A")

	w := NewWatcher(root)
	require.NoError(t, w.Watch([]string{"export"}))
	defer w.Close()

	writeFile(t, root, "export/b.md", "# B")
	require.Eventually(t, w.Dirty, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Watch([]string{"export"}))
	assert.False(t, w.Dirty())
}

func TestWatcher_SeesNewSubdirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "export/a.md", "# A")

	w := NewWatcher(root)
	require.NoError(t, w.Watch([]string{"export"}))
	defer w.Close()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "export", "nested"), 0o755))
	require.Eventually(t, w.Dirty, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_MissingZone(t *testing.T) {
	w := NewWatcher(t.TempDir())
	require.NoError(t, w.Watch([]string{"missing"}))
	assert.False(t, w.Dirty())
	assert.NoError(t, w.Close())
}

func TestWatcher_CloseWithoutWatch(t *testing.T) {
	w := NewWatcher(t.TempDir())
	assert.NoError(t, w.Close())
}
