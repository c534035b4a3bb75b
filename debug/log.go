package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

var (
	mu      sync.Mutex
	file    *os.File
	logger  atomic.Pointer[slog.Logger]
	enabled atomic.Bool
)

// Enable starts debug logging to ~/.config/go-tabsynth/debug.log
func Enable() error {
	mu.Lock()
	defer mu.Unlock()

	if enabled.Load() {
		return nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(homeDir, ".config", "go-tabsynth")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	file = f
	enableLocked(f, slog.LevelDebug)
	return nil
}

// EnableTo sends the debug log to w instead of the log file (CLI tools, tests)
func EnableTo(w io.Writer, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	enableLocked(w, level)
}

func enableLocked(w io.Writer, level slog.Level) {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	l := slog.New(h)
	logger.Store(l)
	enabled.Store(true)
	l.Info("=== debug logging started ===", "cat", "debug")
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	enabled.Store(false)
	logger.Store(nil)
	if file != nil {
		file.Close()
		file = nil
	}
}

// Enabled reports whether log calls currently produce output
func Enabled() bool {
	return enabled.Load()
}

// Log writes an info record in category
func Log(category, format string, args ...any) {
	write(slog.LevelInfo, category, format, args)
}

// Debugf writes a debug record; dropped unless the handler level allows it
func Debugf(category, format string, args ...any) {
	write(slog.LevelDebug, category, format, args)
}

// Error writes an error record
func Error(category, format string, args ...any) {
	write(slog.LevelError, category, format, args)
}

func write(level slog.Level, category, format string, args []any) {
	if !enabled.Load() {
		return
	}
	l := logger.Load()
	if l == nil {
		return
	}
	l.Log(context.Background(), level, fmt.Sprintf(format, args...), "cat", category)
}

// Every rate-limits one call site. Tick does not allocate; callers format a
// message only when it reports true.
type Every struct {
	n     int64
	count atomic.Int64
}

// NewEvery lets through every nth Tick
func NewEvery(n int) *Every {
	return &Every{n: int64(max(n, 1))}
}

// Tick counts one event and reports whether this one should be logged.
// Nothing is counted while logging is disabled.
func (e *Every) Tick() bool {
	if !enabled.Load() {
		return false
	}
	return e.count.Add(1)%e.n == 0
}

// Count returns how many events were counted
func (e *Every) Count() int64 {
	return e.count.Load()
}
