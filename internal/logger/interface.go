package logger

import "context"

// Logger is the logging interface used across the service.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})

	// With returns a child logger that attaches fields to every entry.
	With(fields map[string]interface{}) Logger
}

// Standard field keys.
const (
	FieldJobID     = "job_id"
	FieldStage     = "stage"
	FieldComponent = "component"
	FieldDuration  = "duration_ms"
)
