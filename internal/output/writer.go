// Package output writes generated files to disk.
package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gqlorm/gqlorm/internal/codegen/model"
)

// Stats describes a finished Write.
type Stats struct {
	Written   int
	Unchanged int
	Bytes     int64
}

// Writer writes generated files below a root directory in parallel.
type Writer struct {
	dir     string
	workers int
	logger  zerolog.Logger

	mu    sync.Mutex
	stats Stats
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string, logger zerolog.Logger) *Writer {
	return &Writer{
		dir:     dir,
		workers: runtime.GOMAXPROCS(0),
		logger:  logger.With().Str("component", "output").Logger(),
	}
}

// WithWorkers sets the number of parallel workers.
func (w *Writer) WithWorkers(n int) *Writer {
	if n > 0 {
		w.workers = n
	}
	return w
}

// Dir returns the root directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write validates every path first, then writes the files. Files whose
// content is already on disk are left untouched so watchers of the output
// directory see no event.
func (w *Writer) Write(ctx context.Context, files []model.GeneratedFile) (Stats, error) {
	for _, f := range files {
		if err := checkPath(f.Path); err != nil {
			return Stats{}, err
		}
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Stats{}, fmt.Errorf("create output directory: %w", err)
	}

	w.mu.Lock()
	w.stats = Stats{}
	w.mu.Unlock()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)

	for _, f := range files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeFile(f)
			}
		})
	}

	err := eg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.logger.Debug().
		Str("dir", w.dir).
		Int("written", w.stats.Written).
		Int("unchanged", w.stats.Unchanged).
		Int64("bytes", w.stats.Bytes).
		Msg("output written")
	return w.stats, err
}

func (w *Writer) writeFile(f model.GeneratedFile) error {
	fullPath := filepath.Join(w.dir, filepath.FromSlash(f.Path))
	content := []byte(f.Content)

	if existing, err := os.ReadFile(fullPath); err == nil && bytes.Equal(existing, content) {
		w.mu.Lock()
		w.stats.Unchanged++
		w.mu.Unlock()
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", f.Path, err)
	}
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	w.logger.Trace().Str("path", f.Path).Int("bytes", len(content)).Msg("file written")

	w.mu.Lock()
	w.stats.Written++
	w.stats.Bytes += int64(len(content))
	w.mu.Unlock()
	return nil
}

// ErrUnsafePath is returned for a generated path that would leave the
// output directory.
var ErrUnsafePath = errors.New("generated path escapes the output directory")

func checkPath(p string) error {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return fmt.Errorf("%w: %q", ErrUnsafePath, p)
	}
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%w: %q", ErrUnsafePath, p)
	}
	return nil
}
