package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/faktur-tracker/constants"
	"github.com/joseph-ayodele/faktur-tracker/internal/common"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.pdf"), "faktur a")
	write(t, filepath.Join(root, "sub", "copy-of-a.PDF"), "faktur a")
	write(t, filepath.Join(root, "b.png"), "faktur b")
	write(t, filepath.Join(root, "notes.docx"), "ignored")
	write(t, filepath.Join(root, ".cache", "c.pdf"), "hidden dir")
	write(t, filepath.Join(root, ".d.pdf"), "hidden file")

	ing := NewFSIngestor(nil)
	results, stats, err := ing.IngestDirectory(context.Background(), root, true)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.Matched)
	assert.EqualValues(t, 3, stats.Succeeded)
	assert.EqualValues(t, 1, stats.Deduplicated)
	assert.EqualValues(t, 0, stats.Failed)
	require.Len(t, results, 3)

	formats := map[string]int{}
	for _, r := range results {
		formats[r.Format]++
		assert.Len(t, r.HashHex, 64)
	}
	assert.Equal(t, 2, formats[constants.PDF])
	assert.Equal(t, 1, formats[constants.IMAGE])
}

func TestIngestDirectoryIncludesHiddenWhenAsked(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, ".d.pdf"), "hidden file")

	_, stats, err := NewFSIngestor(nil).IngestDirectory(context.Background(), root, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Matched)
}

func TestIngestPathRejectsUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.docx")
	write(t, path, "x")

	_, err := NewFSIngestor(nil).IngestPath(context.Background(), path)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestIngestDirectoryRequiresRoot(t *testing.T) {
	_, _, err := NewFSIngestor(nil).IngestDirectory(context.Background(), " ", true)
	assert.Error(t, err)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/tmp/.git"))
	assert.False(t, IsHidden("."))
	assert.False(t, IsHidden("/tmp/faktur.pdf"))
}

func TestWatcherEmitsNewFiles(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "existing.pdf"), "old")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	next := func() string {
		select {
		case p := <-events:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for watcher event")
			return ""
		}
	}
	assert.Equal(t, filepath.Join(root, "existing.pdf"), next())

	write(t, filepath.Join(root, "ignored.docx"), "x")
	write(t, filepath.Join(root, "new.jpg"), "x")
	assert.Equal(t, filepath.Join(root, "new.jpg"), next())

	cancel()
	for range events {
	}
}
