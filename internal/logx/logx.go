package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a leveled logger writing to w. An unknown level falls back to info.
func New(w io.Writer, prefix, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: prefix,
	})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// OpenFile creates a timestamped log file inside logsDir. The caller closes it.
func OpenFile(logsDir string) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	file, err := os.OpenFile(filepath.Join(logsDir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

// NewFile creates a logfmt logger that writes to a timestamped file inside
// logsDir. The returned closer should be closed when logging is no longer
// needed.
func NewFile(logsDir, level string) (*log.Logger, io.Closer, error) {
	file, err := OpenFile(logsDir)
	if err != nil {
		return nil, nil, err
	}
	logger := log.NewWithOptions(file, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05.000",
		Formatter:       log.LogfmtFormatter,
	})
	logger.SetLevel(ParseLevel(level))
	return logger, file, nil
}

// Multi fans every record out to all loggers.
type Multi []*log.Logger

func (m Multi) Debug(msg any, keyvals ...any) {
	for _, l := range m {
		l.Debug(msg, keyvals...)
	}
}

func (m Multi) Info(msg any, keyvals ...any) {
	for _, l := range m {
		l.Info(msg, keyvals...)
	}
}

func (m Multi) Warn(msg any, keyvals ...any) {
	for _, l := range m {
		l.Warn(msg, keyvals...)
	}
}

func (m Multi) Error(msg any, keyvals ...any) {
	for _, l := range m {
		l.Error(msg, keyvals...)
	}
}

// ParseLevel maps a level name to a log.Level.
func ParseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
