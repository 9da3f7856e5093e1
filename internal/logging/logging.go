// Package logging builds the process-wide logr.Logger.
//
// Logs go to stderr or, when a file is configured, to a size-rotated file.
// The backend is zap, exposed through logr so callers only depend on the
// logr interface.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Output formats.
const (
	FormatAuto    = "auto"
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options configures the logger.
type Options struct {
	// File is the log file path. Empty logs to stderr.
	File string
	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept.
	MaxBackups int
	// MaxAgeDays removes rotated files older than this. Zero keeps them.
	MaxAgeDays int
	// Compress gzips rotated files.
	Compress bool
	// Format is one of FormatAuto, FormatJSON or FormatConsole.
	Format string
	// Verbosity enables logr V-levels up to this value.
	Verbosity int
}

// DefaultOptions returns stderr logging with automatic format selection.
func DefaultOptions() Options {
	return Options{
		MaxSizeMB:  100,
		MaxBackups: 3,
		Format:     FormatAuto,
	}
}

// New returns a logger for opts and a function that flushes and closes it.
func New(opts Options) (logr.Logger, func() error, error) {
	var (
		out    io.Writer = os.Stderr
		closer io.Closer
		tty    = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	)
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		out, closer, tty = lj, lj, false
	}

	zl, err := newZap(out, opts, tty)
	if err != nil {
		return logr.Discard(), nil, err
	}

	closeFn := func() error {
		// Sync on a terminal returns EINVAL on some platforms; nothing to report.
		_ = zl.Sync()
		if closer != nil {
			return closer.Close()
		}
		return nil
	}
	return zapr.NewLogger(zl), closeFn, nil
}

// NewWriter returns a logger writing to w. Used for tests and embedding.
func NewWriter(w io.Writer, opts Options) (logr.Logger, error) {
	zl, err := newZap(w, opts, false)
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}

func newZap(w io.Writer, opts Options, tty bool) (*zap.Logger, error) {
	encoder, err := newEncoder(opts.Format, tty)
	if err != nil {
		return nil, err
	}
	if opts.Verbosity < 0 {
		return nil, fmt.Errorf("verbosity must be non-negative, got %d", opts.Verbosity)
	}

	// logr V(n) maps to zap level -n.
	level := zap.NewAtomicLevelAt(zapcore.Level(-opts.Verbosity))
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core, zap.AddCaller()), nil
}

func newEncoder(format string, tty bool) (zapcore.Encoder, error) {
	switch format {
	case "", FormatAuto:
		if tty {
			return consoleEncoder(), nil
		}
		return jsonEncoder(), nil
	case FormatJSON:
		return jsonEncoder(), nil
	case FormatConsole:
		return consoleEncoder(), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (expected %s, %s or %s)", format, FormatAuto, FormatJSON, FormatConsole)
	}
}

func jsonEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}
