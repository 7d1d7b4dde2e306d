package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/reqctx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	original := Log
	t.Cleanup(func() { Log = original })

	require.NoError(t, Initialize("debug"))
	assert.True(t, Log.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Initialize("not-a-level"))
	assert.False(t, Log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, Log.Core().Enabled(zapcore.InfoLevel))
}

func TestFromContextAddsRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := WithLogger(context.Background(), zap.New(core))
	ctx = reqctx.WithRequestID(ctx, "req-42")
	ctx = reqctx.WithProvider(ctx, "twilio")

	FromContext(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "twilio", fields["provider"])
}

func TestFromContextOr(t *testing.T) {
	fallback := zap.NewNop()
	assert.Same(t, fallback, FromContextOr(context.Background(), fallback))

	scoped := zap.NewNop()
	assert.Same(t, scoped, FromContextOr(WithLogger(context.Background(), scoped), fallback))
}
