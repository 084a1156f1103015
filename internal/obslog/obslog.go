// Package obslog owns the process-wide zap logger. Packages log through L()
// with snake_case event names and structured fields.
package obslog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/park285/chess-room/internal/config"
)

const defaultLogFile = "logs/chess-room.log"

var (
	current atomic.Pointer[zap.Logger]
	nop     = zap.NewNop()

	fileMu sync.Mutex
	file   io.Closer
)

// L returns the process logger. It is a no-op logger until Init runs.
func L() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return nop
}

// Set replaces the process logger; nil restores the no-op logger.
func Set(l *zap.Logger) {
	if l == nil {
		l = nop
	}
	current.Store(l)
}

// Init builds the process logger from cfg. Console and file sinks share the
// encoder picked by cfg.Format (legacy, json or console).
func Init(cfg config.LogConfig) error {
	level := parseLevel(cfg.Level)
	enc := encoderFor(cfg.Format)

	var cores []zapcore.Core
	if cfg.ToConsole {
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level))
	}
	if cfg.ToFile {
		f, err := openLogFile(cfg.File)
		if err != nil {
			return err
		}
		swapFile(f)
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.AddSync(f), level))
	} else {
		swapFile(nil)
	}
	if len(cores) == 0 {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(os.Stderr), level))
	}

	opts := []zap.Option{
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", "chess-room")),
	}
	if cfg.Caller || strings.EqualFold(strings.TrimSpace(cfg.Format), "legacy") {
		opts = append(opts, zap.AddCaller())
	}
	Set(zap.New(zapcore.NewTee(cores...), opts...))
	return nil
}

// Close flushes the logger and releases the log file, if one is open.
func Close() error {
	_ = L().Sync()
	swapFile(nil)
	return nil
}

func openLogFile(path string) (*os.File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultLogFile
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func swapFile(next io.Closer) {
	fileMu.Lock()
	prev := file
	file = next
	fileMu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
}

func parseLevel(s string) zapcore.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func encoderFor(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(cfg)
	case "console":
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	default:
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.ConsoleSeparator = " | "
		return zapcore.NewConsoleEncoder(cfg)
	}
}
