package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_shouldWatch(t *testing.T) {
	fw := &FileWatcher{files: map[string]bool{
		"/project/schema.graphql": true,
		"/project/gqlorm.toml":    true,
	}}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write schema", fsnotify.Event{Name: "/project/schema.graphql", Op: fsnotify.Write}, true},
		{"create config", fsnotify.Event{Name: "/project/gqlorm.toml", Op: fsnotify.Create}, true},
		{"rename schema", fsnotify.Event{Name: "/project/schema.graphql", Op: fsnotify.Rename}, true},
		{"unclean path", fsnotify.Event{Name: "/project/./schema.graphql", Op: fsnotify.Write}, true},
		{"chmod only", fsnotify.Event{Name: "/project/schema.graphql", Op: fsnotify.Chmod}, false},
		{"sibling file", fsnotify.Event{Name: "/project/README.md", Op: fsnotify.Write}, false},
		{"editor backup", fsnotify.Event{Name: "/project/schema.graphql~", Op: fsnotify.Create}, false},
		{"swap file", fsnotify.Event{Name: "/project/.schema.graphql.swp", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fw.shouldWatch(tt.event))
		})
	}
}

func TestFileWatcher_NoFiles(t *testing.T) {
	_, err := NewFileWatcher(nil, 0, func([]string) {}, zerolog.Nop())
	assert.Error(t, err)
}

func TestFileWatcher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tmpDir := t.TempDir()
	schemaFile := filepath.Join(tmpDir, "schema.graphql")
	otherFile := filepath.Join(tmpDir, "notes.txt")
	require.NoError(t, os.WriteFile(schemaFile, []byte("type User { id: ID! }"), 0o644))

	var (
		mu    sync.Mutex
		calls [][]string
	)
	fw, err := NewFileWatcher([]string{schemaFile}, 100*time.Millisecond, func(paths []string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, paths)
	}, zerolog.Nop())
	require.NoError(t, err)
	defer fw.Close()
	assert.Equal(t, []string{schemaFile}, fw.Files())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errChan := make(chan error, 1)
	go func() {
		errChan <- fw.Start(ctx)
	}()

	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)

	// Test: a burst of writes is delivered once; unrelated files are ignored
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(schemaFile, []byte("type User { id: ID! name: String }"), 0o644))
		require.NoError(t, os.WriteFile(otherFile, []byte("notes"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) > 0
	}, 2*time.Second, 20*time.Millisecond)

	time.Sleep(250 * time.Millisecond)
	mu.Lock()
	assert.Len(t, calls, 1)
	assert.Equal(t, []string{schemaFile}, calls[0])
	mu.Unlock()

	cancel()
	assert.ErrorIs(t, <-errChan, context.Canceled)
}

func TestFileWatcher_Close(t *testing.T) {
	file := filepath.Join(t.TempDir(), "gqlorm.toml")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	fw, err := NewFileWatcher([]string{file}, 0, func([]string) {}, zerolog.Nop())
	require.NoError(t, err)

	// Close should not error
	err = fw.Close()
	assert.NoError(t, err)

	// Double close should also be safe
	err = fw.Close()
	assert.NoError(t, err)
}
