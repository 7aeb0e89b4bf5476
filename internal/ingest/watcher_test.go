package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartWatcher_NoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, discardLogger())
	assert.Error(t, err)
}

func TestStartWatcher_InitialScanEmitsWholeBacklog(t *testing.T) {
	dir := t.TempDir()
	const n = 300 // exceeds the event channel buffer
	for i := 0; i < n; i++ {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("doc-%03d.pdf", i)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, InitialScan: true}, discardLogger())
	require.NoError(t, err)

	got := map[string]struct{}{}
	timeout := time.After(10 * time.Second)
	for len(got) < n {
		select {
		case p, ok := <-evCh:
			require.True(t, ok, "channel closed after %d of %d paths", len(got), n)
			got[p] = struct{}{}
		case <-timeout:
			t.Fatalf("received %d of %d initial paths", len(got), n)
		}
	}
}

func TestStartWatcher_EmitsCreatedFile(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{
		Roots:    []string{dir},
		Debounce: 20 * time.Millisecond,
	}, discardLogger())
	require.NoError(t, err)

	path := filepath.Join(dir, "fresh.pdf")
	writeFile(t, path)

	select {
	case p := <-evCh:
		assert.Equal(t, path, p)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for created file")
	}
}

func TestStartWatcher_ClosesOnCancel(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}}, discardLogger())
	require.NoError(t, err)

	cancel()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-evCh:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("event channel did not close after cancel")
		}
	}
}
