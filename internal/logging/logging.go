package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/thenoetrevino/quadro/internal/config"
)

// Logger is the global slog instance for the application
var Logger *slog.Logger

// DefaultFile is the value of log.file that selects ~/.quadro/logs/quadro.log
const DefaultFile = "default"

// Init builds the handler described by cfg, installs it as the slog
// default and redirects the standard log package to the same sink.
// The returned close function releases the log file, if any.
func Init(cfg config.LogConfig) (func() error, error) {
	out, closeFn, err := openSink(cfg.File)
	if err != nil {
		return nil, err
	}

	Logger = slog.New(NewHandler(out, cfg))
	slog.SetDefault(Logger)

	log.SetOutput(out)
	log.SetFlags(log.LstdFlags)

	return closeFn, nil
}

// NewHandler returns a text or JSON handler at the configured level
func NewHandler(w io.Writer, cfg config.LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel maps a config level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openSink(file string) (io.Writer, func() error, error) {
	if file == "" {
		return os.Stderr, func() error { return nil }, nil
	}

	if file == DefaultFile {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, err
		}
		file = filepath.Join(homeDir, ".quadro", "logs", "quadro.log")
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Open log file in append mode
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, f.Close, nil
}
