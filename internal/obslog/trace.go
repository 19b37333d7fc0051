package obslog

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"go.uber.org/zap"
)

type loggerKey struct{}

// NewTraceID mints a time-sortable 24-hex-character ID: an 8-byte
// millisecond timestamp prefix followed by 4 random bytes, so endpoint
// trace IDs logged across a run still sort in start order.
func NewTraceID() string {
	ts := time.Now().UnixMilli()
	random := make([]byte, 4)
	_, _ = rand.Read(random)

	id := make([]byte, 12)
	id[0] = byte(ts >> 56)
	id[1] = byte(ts >> 48)
	id[2] = byte(ts >> 40)
	id[3] = byte(ts >> 32)
	id[4] = byte(ts >> 24)
	id[5] = byte(ts >> 16)
	id[6] = byte(ts >> 8)
	id[7] = byte(ts)
	copy(id[8:], random)

	return hex.EncodeToString(id)
}

// WithEndpointLogger scopes ctx to a logger tagged with the endpoint's
// name and a fresh trace ID, so every log line one endpoint's goroutine
// emits across connect/transfer/confirm can be grepped as a unit even
// while many endpoints run concurrently. It returns both the scoped
// context and the logger, for callers that want to log immediately
// without a second LoggerFromContext round-trip.
func WithEndpointLogger(ctx context.Context, base *zap.Logger, endpoint string) (context.Context, *zap.Logger) {
	scoped := base.With(zap.String("endpoint", endpoint), zap.String("traceId", NewTraceID()))
	return context.WithValue(ctx, loggerKey{}, scoped), scoped
}

// LoggerFromContext retrieves the endpoint-scoped logger WithEndpointLogger
// stored, or fallback if ctx carries none.
func LoggerFromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return logger
	}
	return fallback
}
