package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T) (*ThemeWatcher, string, chan []Change) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "modern"), 0o750))

	tw, err := New(dir, 50*time.Millisecond, nil)
	require.NoError(t, err)
	t.Cleanup(func() { tw.Stop() })

	batches := make(chan []Change, 10)
	tw.AddHandler(func(changes []Change) {
		batches <- changes
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	tw.Start(ctx)

	return tw, dir, batches
}

func waitForBatch(t *testing.T, batches chan []Change) []Change {
	t.Helper()

	select {
	case batch := <-batches:
		return batch
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change batch")
		return nil
	}
}

func TestReportsAssetChange(t *testing.T) {
	_, dir, batches := newTestWatcher(t)

	path := filepath.Join(dir, "modern", "styles.css")
	require.NoError(t, os.WriteFile(path, []byte(".hero{}"), 0o600))

	batch := waitForBatch(t, batches)
	require.NotEmpty(t, batch)
	assert.Equal(t, "modern", batch[0].ThemeID)
	assert.False(t, batch[0].Manifest)
}

func TestFlagsManifestChange(t *testing.T) {
	_, dir, batches := newTestWatcher(t)

	path := filepath.Join(dir, "modern", "theme.yml")
	require.NoError(t, os.WriteFile(path, []byte("id: modern\n"), 0o600))

	batch := waitForBatch(t, batches)
	require.NotEmpty(t, batch)

	found := false
	for _, change := range batch {
		if change.Manifest {
			found = true
			assert.Equal(t, "modern", change.ThemeID)
		}
	}
	assert.True(t, found, "manifest change should be flagged")
}

func TestIgnoresUnrelatedFiles(t *testing.T) {
	_, dir, batches := newTestWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "modern", "notes.txt"), []byte("x"), 0o600))

	select {
	case batch := <-batches:
		t.Fatalf("unexpected batch for ignored file: %+v", batch)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestDebouncesDuplicateWrites(t *testing.T) {
	_, dir, batches := newTestWatcher(t)

	path := filepath.Join(dir, "modern", "styles.css")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(".hero{}"), 0o600))
		time.Sleep(5 * time.Millisecond)
	}

	batch := waitForBatch(t, batches)
	assert.Len(t, batch, 1, "rapid writes to one file collapse into one change")
}

func TestWatchesNewThemeDirectories(t *testing.T) {
	_, dir, batches := newTestWatcher(t)

	themeDir := filepath.Join(dir, "classic")
	require.NoError(t, os.MkdirAll(themeDir, 0o750))
	// Give the watcher a beat to register the new directory.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(themeDir, "theme.yml"), []byte("id: classic\n"), 0o600))

	batch := waitForBatch(t, batches)
	require.NotEmpty(t, batch)
	assert.Equal(t, "classic", batch[0].ThemeID)
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "created", OpCreated.String())
	assert.Equal(t, "modified", OpModified.String())
	assert.Equal(t, "deleted", OpDeleted.String())
	assert.Equal(t, "renamed", OpRenamed.String())
	assert.Equal(t, "unknown", Op(42).String())
}

func TestAssetFilter(t *testing.T) {
	assert.True(t, AssetFilter("themes/modern/theme.yml"))
	assert.True(t, AssetFilter("themes/modern/styles.css"))
	assert.True(t, AssetFilter("themes/modern/bundle.js"))
	assert.False(t, AssetFilter("themes/modern/README.md"))
	assert.False(t, AssetFilter("themes/modern/logo.png"))
}

func TestManifestFilter(t *testing.T) {
	assert.True(t, ManifestFilter("themes/classic/theme.yml"))
	assert.False(t, ManifestFilter("themes/classic/styles.css"))
}
