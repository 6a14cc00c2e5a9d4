package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type implLogger struct {
	logger zerolog.Logger
	level  string
}

// New creates a console logger writing to stdout.
func New(level string) Logger {
	return NewWithFormat(level, "console", os.Stdout)
}

// NewWithFormat creates a logger for the given format ("console" or "json").
func NewWithFormat(level, format string, out io.Writer) Logger {
	lvl := strings.ToLower(level)
	zlevel, err := zerolog.ParseLevel(lvl)
	if err != nil || lvl == "" {
		zlevel = zerolog.InfoLevel
		lvl = "info"
	}

	var zl zerolog.Logger
	if strings.ToLower(format) == "json" {
		zl = zerolog.New(out)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "2006/01/02 15:04:05"})
	}

	return &implLogger{
		logger: zl.Level(zlevel).With().Timestamp().Logger(),
		level:  lvl,
	}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &implLogger{logger: zerolog.Nop(), level: "error"}
}

func (l *implLogger) shouldLog(level string) bool {
	levels := map[string]int{
		"debug": 0,
		"info":  1,
		"warn":  2,
		"error": 3,
	}

	currentLevel, ok := levels[l.level]
	if !ok {
		currentLevel = 1
	}

	targetLevel, ok := levels[level]
	if !ok {
		return true
	}

	return targetLevel >= currentLevel
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("debug") {
		l.logger.Debug().Msgf(msg, args...)
	}
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("info") {
		l.logger.Info().Msgf(msg, args...)
	}
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("warn") {
		l.logger.Warn().Msgf(msg, args...)
	}
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("error") {
		l.logger.Error().Msgf(msg, args...)
	}
}

func (l *implLogger) With(fields map[string]interface{}) Logger {
	zc := l.logger.With()
	for k, v := range fields {
		zc = zc.Interface(k, v)
	}
	return &implLogger{logger: zc.Logger(), level: l.level}
}

// Fields builds a field map from alternating key-value pairs.
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// FormatError renders err for log lines, empty for nil.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%v", err)
}
