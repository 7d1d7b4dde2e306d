package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/logger"
	"go.uber.org/zap/zaptest"
)

func setupTestLogger(t *testing.T) {
	original := logger.Log
	logger.Log = zaptest.NewLogger(t)
	t.Cleanup(func() { logger.Log = original })
}

func TestSafeGo(t *testing.T) {
	setupTestLogger(t)

	t.Run("runs function", func(t *testing.T) {
		done := make(chan struct{})
		SafeGo(func() { close(done) }, nil)
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("function did not run")
		}
	})

	t.Run("passes panic to handler", func(t *testing.T) {
		recovered := make(chan interface{}, 1)
		SafeGo(func() { panic("boom") }, func(r interface{}, stack []byte) {
			assert.NotEmpty(t, stack)
			recovered <- r
		})
		select {
		case r := <-recovered:
			assert.Equal(t, "boom", r)
		case <-time.After(time.Second):
			t.Fatal("panic was not recovered")
		}
	})

	t.Run("default handler logs", func(t *testing.T) {
		done := make(chan struct{})
		SafeGo(func() {
			defer close(done)
			panic("logged")
		}, nil)
		<-done
	})
}

func TestRecoverWithLog(t *testing.T) {
	setupTestLogger(t)
	ctx := logger.WithLogger(context.Background(), zaptest.NewLogger(t))

	require.NotPanics(t, func() {
		defer RecoverWithLog(ctx, "test operation")
		panic("swallowed")
	})
}

func TestWrapWithContextRecovery(t *testing.T) {
	setupTestLogger(t)
	ctx := logger.WithLogger(context.Background(), zaptest.NewLogger(t))

	tests := []struct {
		name    string
		fn      func(ctx context.Context) error
		wantErr string
	}{
		{name: "no error", fn: func(ctx context.Context) error { return nil }},
		{name: "error passes through", fn: func(ctx context.Context) error { return errors.New("plain") }, wantErr: "plain"},
		{name: "panic becomes error", fn: func(ctx context.Context) error { panic("bad") }, wantErr: "panic recovered: bad"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := WrapWithContextRecovery(tc.fn)(ctx)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.wantErr)
		})
	}
}
