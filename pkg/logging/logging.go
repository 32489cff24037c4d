package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultLogFile = "foundry_cli.log"
const (
	maxLogSizeMB  = 5
	maxLogBackups = 5
	maxLogAgeDays = 14
)

// Logger is the process-wide logger. Init replaces it; until then it is
// slog's default so packages can log safely from tests.
var Logger = slog.Default()

// Options controls where and how structured logs are written.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	File   string // log file path, defaults under the user's home
	Debug  bool   // forces debug level and mirrors logs to stderr
}

// Init configures slog to write structured logs to a rotated file. Stdout
// is never written to, so command output stays parseable.
func Init(opts Options) (*slog.Logger, error) {
	level := parseLogLevel(opts.Level)
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlerOptions := &slog.HandlerOptions{Level: level}

	logPath := strings.TrimSpace(opts.File)
	if logPath == "" {
		logPath = defaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		logger := slog.New(newHandler(opts.Format, io.Discard, handlerOptions))
		setDefault(logger)
		return logger, err
	}

	var writer io.Writer = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
	if opts.Debug {
		writer = io.MultiWriter(writer, os.Stderr)
	}

	logger := slog.New(newHandler(opts.Format, writer, handlerOptions))
	setDefault(logger)
	return logger, nil
}

func setDefault(logger *slog.Logger) {
	Logger = logger
	slog.SetDefault(logger)
}

func defaultLogPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(homeDir) == "" {
		return filepath.Join(".foundry_cli", "logs", defaultLogFile)
	}
	return filepath.Join(homeDir, ".foundry_cli", "logs", defaultLogFile)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}

func newHandler(format string, out io.Writer, opts *slog.HandlerOptions) slog.Handler {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		return slog.NewTextHandler(out, opts)
	default:
		return slog.NewJSONHandler(out, opts)
	}
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// DebugEnabled returns true if debug logging is enabled.
func DebugEnabled() bool {
	return Logger.Enabled(context.TODO(), slog.LevelDebug)
}

// MaskSecret renders a key or token safe for logs, keeping only the first
// and last four characters of sufficiently long values.
func MaskSecret(secret string) string {
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
