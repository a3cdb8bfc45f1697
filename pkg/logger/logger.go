// Package logger provides the logging framework built on zerolog.
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level is a log level.
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config holds logger configuration.
type Config struct {
	Level      string `json:"level"`
	Format     string `json:"format"` // json/console
	Output     string `json:"output"` // stdout/stderr/file
	FilePath   string `json:"file_path,omitempty"`
	TimeFormat string `json:"time_format,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init initializes the global logger. Safe to call more than once.
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the global logger, initializing defaults if needed.
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// WithContext derives a logger carrying request-scoped fields.
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	if reqID, ok := ctx.Value("request_id").(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}
	if sectorID, ok := ctx.Value("sector_id").(string); ok {
		l = l.With().Str("sector_id", sectorID).Logger()
	}

	return &l
}

// Debug starts a debug event.
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info starts an info event.
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn starts a warn event.
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error starts an error event.
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal starts a fatal event.
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError starts an error event carrying err.
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField derives a logger with one extra field.
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// WithFields derives a logger with extra fields.
func WithFields(fields map[string]interface{}) *zerolog.Logger {
	ctx := Get().With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	l := ctx.Logger()
	return &l
}

// PlannerLogger is the planning engine component logger.
type PlannerLogger struct {
	base *zerolog.Logger
}

// NewPlannerLogger creates the planning engine logger.
func NewPlannerLogger() *PlannerLogger {
	l := Get().With().Str("component", "planner").Logger()
	return &PlannerLogger{base: &l}
}

// StartGeneration records the start of a generation run.
func (l *PlannerLogger) StartGeneration(sectorID string, staff, slots int) {
	l.base.Info().
		Str("sector_id", sectorID).
		Int("staff", staff).
		Int("slots", slots).
		Msg("starting planning generation")
}

// ConflictDetected records a detected conflict.
func (l *PlannerLogger) ConflictDetected(conflictType, severity, details string) {
	l.base.Warn().
		Str("type", conflictType).
		Str("severity", severity).
		Str("details", details).
		Msg("conflict detected")
}

// GenerationComplete records the end of a generation run.
func (l *PlannerLogger) GenerationComplete(sectorID string, duration time.Duration, assigned, unassigned int) {
	l.base.Info().
		Str("sector_id", sectorID).
		Dur("duration", duration).
		Int("assigned", assigned).
		Int("unassigned", unassigned).
		Msg("planning generation complete")
}

// PublishRejected records a publish aborted by re-validation.
func (l *PlannerLogger) PublishRejected(sectorID string, newConflicts int) {
	l.base.Warn().
		Str("sector_id", sectorID).
		Int("new_conflicts", newConflicts).
		Msg("publish rejected, planning changed")
}
