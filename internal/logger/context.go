package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const runIDKey ctxKey = "run_id"

// WithRunID tags every log line written through FromCtx with the batch run id.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

func RunIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(runIDKey).(string); ok {
		return v
	}
	return ""
}

// FromCtx returns logger with run_id automatically added
func FromCtx(ctx context.Context) *zap.Logger {
	runID := RunIDFrom(ctx)
	if runID == "" {
		return L()
	}
	return L().With(zap.String("run_id", runID))
}
