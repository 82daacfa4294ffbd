package composables

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/sanjaithai/backoffice/pkg/constants"
)

// UseLogger returns the request-scoped logger. Outside of a request (CLI,
// tests) it falls back to the standard logrus logger.
func UseLogger(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(constants.LoggerKey).(*logrus.Entry); ok && logger != nil {
		return logger
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

func UseRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(constants.RequestIDKey).(string)
	return id, ok && id != ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, constants.RequestIDKey, id)
}
