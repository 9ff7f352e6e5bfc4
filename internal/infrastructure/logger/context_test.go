package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestWithContext(t *testing.T) {
	t.Run("round-trips logger through context", func(t *testing.T) {
		logger := zap.NewNop()
		ctx := WithContext(context.Background(), logger)
		assert.Same(t, logger, FromContext(ctx))
	})

	t.Run("returns no-op logger when absent", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})
}

func TestWithRequestID(t *testing.T) {
	ctx, enriched := WithRequestID(context.Background(), zap.NewNop(), "req-123")

	assert.NotNil(t, enriched)
	assert.Equal(t, "req-123", GetRequestID(ctx))
}

func TestWithClientID(t *testing.T) {
	ctx, enriched := WithClientID(context.Background(), zap.NewNop(), "client-abc")

	assert.NotNil(t, enriched)
	assert.Equal(t, "client-abc", GetClientID(ctx))
}

func TestGetRequestID_Missing(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetClientID(context.Background()))
}

func TestContextLogger(t *testing.T) {
	t.Run("L never returns nil", func(t *testing.T) {
		cl := L(context.Background())
		assert.NotNil(t, cl)
		assert.NotNil(t, cl.Zap())
	})

	t.Run("logs do not panic without context fields", func(t *testing.T) {
		cl := WithLogger(context.Background(), zap.NewNop())
		cl.Debug("debug")
		cl.Info("info")
		cl.Warn("warn")
		cl.Error("error")
	})

	t.Run("With derives a child logger", func(t *testing.T) {
		cl := WithLogger(context.Background(), zap.NewNop())
		child := cl.With(zap.String("board_id", "1"))
		assert.NotNil(t, child)
		assert.NotSame(t, cl, child)
	})
}
