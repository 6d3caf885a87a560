package requestlog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/m3rciful/pqbot/core/logger"
)

// DefaultFile is the request log used when no path is configured.
const DefaultFile = "requests.txt"

// FileSink appends entries to a text file, one line per entry.
type FileSink struct {
	path string
	mu   sync.Mutex
}

// NewFileSink returns a sink appending to path. The file and its parent
// directory are created on the first append.
func NewFileSink(path string) *FileSink {
	if path == "" {
		path = DefaultFile
	}
	return &FileSink{path: path}
}

// Path returns the file the sink writes to.
func (s *FileSink) Path() string { return s.path }

// Append writes the entry line and closes the file again, so external tools
// may rotate or truncate it between writes.
func (s *FileSink) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("requestlog: create dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("requestlog: open %s: %w", s.path, err)
	}
	if _, err := f.WriteString(e.Line()); err != nil {
		_ = f.Close()
		return fmt.Errorf("requestlog: write %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("requestlog: close %s: %w", s.path, err)
	}

	logger.Debug(ctx, logger.CompRequests, "append",
		slog.String("status", "ok"),
		slog.String("request_id", e.ID.String()),
		slog.String("path", s.path),
	)
	return nil
}
