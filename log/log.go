package log

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	root = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		With().Timestamp().Logger()
)

// Options configures the process-wide logger.
type Options struct {
	// Level is a zerolog level name ("debug", "info", ...). Empty means info.
	Level string
	// File is an optional path for an additional JSON log file. Parent directories are created.
	File string
	// Console writes human-readable records to Console. Nil disables console output.
	Console io.Writer
}

// Configure replaces the root logger. It returns a closer for the log file, if any.
func Configure(opts Options) (io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", opts.Level)
		}
		level = l
	}

	var writers []io.Writer
	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.DateTime})
	}

	var file *os.File
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), os.ModePerm); err != nil {
			return nil, errors.Wrap(err, "failed to create log directory")
		}

		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open log file")
		}
		file = f
		writers = append(writers, f)
	}

	SetRoot(zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger())

	if file == nil {
		return io.NopCloser(nil), nil
	}

	return file, nil
}

// SetRoot replaces the logger new component loggers derive from.
func SetRoot(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = l
}

// NewLogger returns a logger tagged with the given component name.
func NewLogger(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With().Str("component", component).Logger()
}
