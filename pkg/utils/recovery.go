package utils

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/logger"
	"go.uber.org/zap"
)

// RecoverFn handles a recovered panic value and the stack at the time of the panic.
type RecoverFn func(r interface{}, stack []byte)

// SafeGo runs fn in a goroutine. A panic is passed to onPanic, or logged when onPanic is nil.
func SafeGo(fn func(), onPanic RecoverFn) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				if onPanic != nil {
					onPanic(r, stack)
					return
				}
				logPanic(nil, "goroutine", r, stack)
			}
		}()
		fn()
	}()
}

// RecoverWithLog must be deferred directly. It swallows a panic and logs it against operation.
func RecoverWithLog(ctx context.Context, operation string) {
	if r := recover(); r != nil {
		logPanic(ctx, operation, r, debug.Stack())
	}
}

// WrapWithContextRecovery turns a panic inside fn into a returned error.
func WrapWithContextRecovery(fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logPanic(ctx, "wrapped call", r, debug.Stack())
				err = fmt.Errorf("panic recovered: %v", r)
			}
		}()
		return fn(ctx)
	}
}

func logPanic(ctx context.Context, operation string, r interface{}, stack []byte) {
	var log *zap.Logger
	if ctx != nil {
		log = logger.FromContext(ctx)
	} else {
		log = logger.Log
	}
	if log == nil {
		fmt.Fprintf(os.Stderr, "[PANIC] Recovered from panic during %s: %v\n%s\n", operation, r, stack)
		return
	}
	log.Error(fmt.Sprintf("[panic] Recovered from panic during %s", operation),
		zap.Any("panic", r),
		zap.ByteString("stack", stack),
	)
}
