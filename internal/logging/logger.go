// Package logging provides structured logging with zerolog.
// It supports json, console and simple text formats, log levels, run ID
// tracking, and automatic masking of sensitive fields.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zoobzio/qrcard"
)

// RedactedPlaceholder replaces the value of a sensitive field.
const RedactedPlaceholder = "***REDACTED***"

// simpleWriter formats logs as: [LEVEL](TIMESTAMP): {MESSAGE}
type simpleWriter struct {
	out io.Writer
}

func (sw *simpleWriter) Write(p []byte) (n int, err error) {
	var logEntry map[string]any
	if err := json.Unmarshal(p, &logEntry); err != nil {
		return sw.out.Write(p)
	}

	level, _ := logEntry["level"].(string)
	timestamp, _ := logEntry["time"].(string)
	message, _ := logEntry["message"].(string)

	formatted := fmt.Sprintf("[%s](%s): %s\n",
		strings.ToUpper(level),
		timestamp,
		message,
	)
	if _, err := sw.out.Write([]byte(formatted)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Level represents logging levels
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ParseLevel returns the Level named by s, or false.
func ParseLevel(s string) (Level, bool) {
	switch l := Level(strings.ToLower(s)); l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return l, true
	}
	return "", false
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level Level

	// Format is the output format (json, console or simple)
	Format string

	// Output is the writer for logs (default: os.Stderr)
	Output io.Writer

	// SensitiveFields are extra field names masked in logs, on top of the
	// record sensitive set.
	SensitiveFields []string
}

// Logger wraps zerolog for structured logging
type Logger struct {
	logger          zerolog.Logger
	config          LoggerConfig
	sensitiveFields map[string]bool
}

// NewLogger creates a new structured logger
func NewLogger(config LoggerConfig) *Logger {
	output := config.Output
	if output == nil {
		output = os.Stderr
	}
	if config.Level == "" {
		config.Level = LevelInfo
	}

	var zeroLevel zerolog.Level
	switch config.Level {
	case LevelDebug:
		zeroLevel = zerolog.DebugLevel
	case LevelWarn:
		zeroLevel = zerolog.WarnLevel
	case LevelError:
		zeroLevel = zerolog.ErrorLevel
	default:
		zeroLevel = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	switch config.Format {
	case "json":
		logger = zerolog.New(output).Level(zeroLevel).With().Timestamp().Logger()
	case "console":
		consoleOut := zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
		logger = zerolog.New(consoleOut).Level(zeroLevel).With().Timestamp().Logger()
	default:
		simpleOut := &simpleWriter{out: output}
		logger = zerolog.New(simpleOut).Level(zeroLevel).With().Timestamp().Logger()
	}

	// Case-insensitive: log keys rarely follow record casing.
	sensitiveFields := make(map[string]bool)
	for _, field := range qrcard.SensitiveFields() {
		sensitiveFields[strings.ToLower(field)] = true
	}
	for _, field := range config.SensitiveFields {
		sensitiveFields[strings.ToLower(field)] = true
	}

	return &Logger{
		logger:          logger,
		config:          config,
		sensitiveFields: sensitiveFields,
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	l := NewLogger(LoggerConfig{Format: "json", Output: io.Discard})
	l.logger = zerolog.Nop()
	return l
}

// WithContext returns a logger carrying the run ID stored in ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	runID := GetRunID(ctx)
	if runID == "" {
		return l
	}
	newLogger := *l
	newLogger.logger = l.logger.With().Str("run_id", runID).Logger()
	return &newLogger
}

// WithField returns a logger with an additional field
func (l *Logger) WithField(key string, value any) *Logger {
	newLogger := *l
	newLogger.logger = l.logger.With().Interface(key, l.maskSensitive(key, value)).Logger()
	return &newLogger
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	newLogger := *l
	ctx := l.logger.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, l.maskSensitive(key, value))
	}
	newLogger.logger = ctx.Logger()
	return &newLogger
}

// maskSensitive masks sensitive field values (case-insensitive)
func (l *Logger) maskSensitive(key string, value any) any {
	if l.sensitiveFields[strings.ToLower(key)] {
		return RedactedPlaceholder
	}
	return value
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...any) {
	l.logger.Debug().Msgf(format, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...any) {
	l.logger.Info().Msgf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...any) {
	l.logger.Warn().Msgf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	l.logger.Error().Msg(msg)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...any) {
	l.logger.Error().Msgf(format, args...)
}

// ErrorWithErr logs an error with the error object
func (l *Logger) ErrorWithErr(msg string, err error) {
	l.logger.Error().Err(err).Msg(msg)
}

// Payload logs an encoded payload by fingerprint and size, never by content.
func (l *Logger) Payload(msg string, fingerprint string, size int) {
	l.logger.Info().
		Str("fingerprint", fingerprint).
		Int("size", size).
		Msg(msg)
}

type contextKey string

const runIDKey contextKey = "run_id"

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// SetRunID stores the run ID in the context
func SetRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID gets the run ID from the context
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}
