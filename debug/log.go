// Package debug is the category logger. It is off by default; when enabled
// it writes to ~/.config/go-omen/debug.log through zap.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	current atomic.Pointer[zap.Logger]
	nop     = zap.NewNop()
)

// DefaultPath returns ~/.config/go-omen/debug.log
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-omen", "debug.log"), nil
}

// Enable starts debug logging to the default path
func Enable() error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return EnableAt(path)
}

// EnableAt starts debug logging to path, truncating any previous log.
func EnableAt(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if current.Load() != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		return fmt.Errorf("truncate log: %w", err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	current.Store(l)

	l.Info("=== Debug logging started ===", zap.String("cat", "debug"))
	return nil
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if l := current.Swap(nil); l != nil {
		_ = l.Sync()
	}
}

// Enabled reports whether a log sink is open.
func Enabled() bool {
	return current.Load() != nil
}

// Logger returns the active zap logger, or a no-op logger when disabled.
func Logger() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return nop
}

// Log writes a message to the debug log. When logging is disabled this is
// a single atomic load.
func Log(category, format string, args ...any) {
	l := current.Load()
	if l == nil {
		return
	}
	l.Debug(fmt.Sprintf(format, args...), zap.String("cat", category))
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	if current.Load() == nil {
		return
	}

	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
