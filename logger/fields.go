package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for structured logging.
const (
	FieldRequestID = "request_id"
	FieldComponent = "component"

	FieldFile     = "file"
	FieldMimetype = "mimetype"
	FieldVersion  = "version"
	FieldScraper  = "scraper"
	FieldState    = "state"

	FieldArgv     = "argv"
	FieldExitCode = "exit_code"
	FieldBinary   = "binary"

	FieldStream = "stream"
	FieldField  = "field"

	FieldDurationMS = "duration_ms"
	FieldCount      = "count"
	FieldError      = "error"
	FieldWellFormed = "well_formed"
)

type contextKey string

const requestIDKey contextKey = "logger_request_id"

// WithRequestID adds a request ID to the context for logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns l with the request ID from ctx attached.
func FromContext(ctx context.Context, l *zap.SugaredLogger) *zap.SugaredLogger {
	if id := RequestID(ctx); id != "" {
		return l.With(FieldRequestID, id)
	}
	return l
}
