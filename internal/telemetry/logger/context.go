package logger

import "context"

type contextKey string

const (
	loggerKey      contextKey = "gamesvc.logger"
	operationIDKey contextKey = "gamesvc.operation_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithOperationID tags the context with a caller-chosen operation id.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationIDKey, id)
}

// OperationIDFromContext extracts the operation id from context.
func OperationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(operationIDKey).(string); ok {
		return id
	}
	return ""
}

// L returns the context logger enriched with the operation id, if any.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if id := OperationIDFromContext(ctx); id != "" {
		l = l.With("operation_id", id)
	}
	return l
}

// ForSubsystem returns l tagged with the subsystem attribute.
func ForSubsystem(l Logger, subsystem string) Logger {
	if l == nil {
		l = Default()
	}
	return l.With("subsystem", subsystem)
}
