package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// FileName is the debug log inside the log directory
	FileName = "tesseract.log"

	// MaxFileSize triggers rotation of an existing log before it is reopened
	MaxFileSize = 10 * 1024 * 1024
)

// Log is the process-wide logger; usable before Init with logrus defaults
var Log = logrus.New()

// Init applies LOG_LEVEL (default info) and LOG_FORMAT (json or text)
func Init() {
	level, err := logrus.ParseLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	Log.SetOutput(os.Stderr)
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// SetupFile sends log output to dir/FileName when debug is set and discards
// it otherwise; the terminal viewer owns stdout and stderr while drawing
// The returned file is nil when output is discarded
func SetupFile(dir string, debug bool) (*os.File, error) {
	if !debug {
		Log.SetOutput(io.Discard)
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		Log.SetOutput(io.Discard)
		return nil, fmt.Errorf("logger: create %s: %w", dir, err)
	}

	path := filepath.Join(dir, FileName)
	if info, err := os.Stat(path); err == nil && info.Size() > MaxFileSize {
		stamp := time.Now().Format("20060102-150405")
		rotated := filepath.Join(dir, fmt.Sprintf("tesseract-%s.log", stamp))
		if err := os.Rename(path, rotated); err != nil {
			Log.SetOutput(io.Discard)
			return nil, fmt.Errorf("logger: rotate %s: %w", path, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		Log.SetOutput(io.Discard)
		return nil, fmt.Errorf("logger: open %s: %w", path, err)
	}
	Log.SetOutput(f)
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	return f, nil
}
