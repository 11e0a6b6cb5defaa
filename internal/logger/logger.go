// Package logger provides logging for docbot.
//
// In the CLI, messages are printed to stderr only when verbose mode is
// enabled via the --verbose flag, to help users follow the request
// pipeline. The server can switch to structured JSON output, where info
// and above are always written.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	verbose bool
	jsonOut bool
	output  io.Writer = os.Stderr
	base              = zap.NewNop()
	sugar             = base.Sugar()
)

// Options configures the logger in one call.
type Options struct {
	// Verbose enables debug output.
	Verbose bool

	// JSON switches to structured JSON lines with info always enabled.
	JSON bool

	// Output overrides the destination (default stderr).
	Output io.Writer
}

// Init applies options and rebuilds the underlying zap logger.
func Init(opts Options) {
	mu.Lock()
	defer mu.Unlock()
	verbose = opts.Verbose
	jsonOut = opts.JSON
	if opts.Output != nil {
		output = opts.Output
	}
	rebuild()
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	rebuild()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// L returns the structured logger for callers that attach fields.
// It is a no-op logger when logging is disabled.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// rebuild must be called with mu held.
func rebuild() {
	if !verbose && !jsonOut {
		base = zap.NewNop()
		sugar = base.Sugar()
		return
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	var encoder zapcore.Encoder
	if jsonOut {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			MessageKey:       "msg",
			LevelKey:         "level",
			EncodeLevel:      bracketLevelEncoder,
			ConsoleSeparator: " ",
		})
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(output)), level)
	base = zap.New(core)
	sugar = base.Sugar()
}

// bracketLevelEncoder renders levels as "[DEBUG]", "[INFO]" and so on.
func bracketLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Debugf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	if jsonOut {
		base.Debug("section", zap.String("name", name))
		return
	}
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}

// Info prints an informational message.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Infof(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Warnf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Errorf(format, args...)
}

// Sync flushes buffered log entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}
