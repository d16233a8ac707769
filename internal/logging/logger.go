package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Level aliases for slog levels, shared with the global structured logger.
const (
	SLevelDebug = slog.LevelDebug
	SLevelInfo  = slog.LevelInfo
	SLevelWarn  = slog.LevelWarn
	SLevelError = slog.LevelError
)

// StructuredLogger wraps slog.Logger for packages that have no per-run
// *Logger of their own (internal/mount's per-mountpoint discovery
// warnings) but still need to emit a structured record.
type StructuredLogger struct {
	*slog.Logger
}

// StructuredConfig contains structured-logger configuration options.
type StructuredConfig struct {
	Level   slog.Level
	Output  io.Writer
	Enabled bool
}

// DefaultStructuredConfig returns a default structured-logger configuration.
func DefaultStructuredConfig() StructuredConfig {
	return StructuredConfig{
		Level:   SLevelInfo,
		Output:  os.Stderr,
		Enabled: true,
	}
}

// NewStructured creates a new structured logger with the given configuration.
func NewStructured(cfg StructuredConfig) *StructuredLogger {
	if !cfg.Enabled {
		return &StructuredLogger{
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		}
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	handler := slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: cfg.Level,
	})

	return &StructuredLogger{
		Logger: slog.New(handler),
	}
}

// WithPrefix returns a new structured logger with the given prefix as a group.
func (l *StructuredLogger) WithPrefix(prefix string) *StructuredLogger {
	return &StructuredLogger{
		Logger: l.WithGroup(prefix),
	}
}

var (
	globalStructured     *StructuredLogger
	globalStructuredOnce sync.Once
)

// GlobalStructured returns the process-wide structured logger instance.
func GlobalStructured() *StructuredLogger {
	globalStructuredOnce.Do(func() {
		globalStructured = NewStructured(DefaultStructuredConfig())
	})
	return globalStructured
}

// SetGlobalStructured replaces the process-wide structured logger instance.
func SetGlobalStructured(logger *StructuredLogger) {
	globalStructuredOnce.Do(func() {})
	globalStructured = logger
}

// InitStructured initializes the global structured logger with the given level and output.
func InitStructured(level slog.Level, w io.Writer) {
	SetGlobalStructured(NewStructured(StructuredConfig{
		Level:   level,
		Output:  w,
		Enabled: true,
	}))
}

// SDebug logs a debug message to the global structured logger.
func SDebug(msg string, args ...any) {
	GlobalStructured().Debug(msg, args...)
}

// SInfo logs an informational message to the global structured logger.
func SInfo(msg string, args ...any) {
	GlobalStructured().Info(msg, args...)
}

// SWarn logs a warning message to the global structured logger.
func SWarn(msg string, args ...any) {
	GlobalStructured().Warn(msg, args...)
}

// SError logs an error message to the global structured logger.
func SError(msg string, args ...any) {
	GlobalStructured().Error(msg, args...)
}
