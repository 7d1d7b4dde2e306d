package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/config"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/observer"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/logger"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/utils"
)

const (
	TaskCourtesyMessage = "courtesy_message"
	TaskMealEvent       = "meal_event"

	defaultStopTimeout = 10 * time.Second
)

// BackgroundTask is fire-and-forget work that must not delay a webhook reply.
type BackgroundTask struct {
	Ctx  context.Context // detached from the request so it survives the response
	Name string
	Run  func(ctx context.Context) error
}

// IBackgroundWorker defines the interface for the background worker pool.
type IBackgroundWorker interface {
	SubmitTask(task BackgroundTask) error
	Stop()
}

// BackgroundWorker runs BackgroundTasks on a bounded goroutine pool.
type BackgroundWorker struct {
	pool       *ants.PoolWithFunc
	cfg        config.WorkerPoolConfig
	baseLogger *zap.Logger
}

var _ IBackgroundWorker = (*BackgroundWorker)(nil)

// NewBackgroundWorker creates and initializes the background worker pool.
func NewBackgroundWorker(cfg config.WorkerPoolConfig, baseLogger *zap.Logger) (*BackgroundWorker, error) {
	worker := &BackgroundWorker{
		cfg:        cfg,
		baseLogger: baseLogger.Named("background_worker"),
	}

	pool, err := ants.NewPoolWithFunc(cfg.PoolSize, func(i interface{}) {
		task, ok := i.(BackgroundTask)
		if !ok {
			worker.baseLogger.Error("Invalid task data type received", zap.Any("data", i))
			return
		}
		worker.processTask(task)
	},
		ants.WithExpiryDuration(cfg.ExpiryTime),
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(err interface{}) {
			worker.baseLogger.Error("Panic recovered in background worker", zap.Any("panic_error", err), zap.Stack("stack"))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create background worker pool: %w", err)
	}
	worker.pool = pool
	worker.baseLogger.Info("Background worker pool initialized",
		zap.Int("pool_size", cfg.PoolSize),
		zap.Duration("expiry_time", cfg.ExpiryTime),
	)
	return worker, nil
}

// SubmitTask hands task to an idle worker. It never blocks: when every worker is
// busy the task is dropped and an error wrapping ants.ErrPoolOverload is returned.
func (w *BackgroundWorker) SubmitTask(task BackgroundTask) error {
	if task.Ctx == nil {
		task.Ctx = context.Background()
	}
	start := time.Now()
	observer.IncBackgroundTasksSubmitted(task.Name)
	observer.SetBackgroundRunning(w.pool.Running())

	err := w.pool.Invoke(task)
	duration := time.Since(start)

	if err != nil {
		w.baseLogger.Warn("Failed to submit background task to pool",
			zap.String("task", task.Name),
			zap.Duration("submit_duration", duration),
			zap.Error(err),
		)
		observer.IncBackgroundTasksProcessed(task.Name, "submit_error")
		if errors.Is(err, ants.ErrPoolOverload) {
			return fmt.Errorf("background pool overload: %w", err)
		}
		return fmt.Errorf("failed to invoke background task: %w", err)
	}

	w.baseLogger.Debug("Submitted background task", zap.String("task", task.Name), zap.Duration("submit_duration", duration))
	return nil
}

func (w *BackgroundWorker) processTask(task BackgroundTask) {
	log := logger.FromContextOr(task.Ctx, w.baseLogger).With(zap.String("task", task.Name))
	start := time.Now()
	status := "success"

	if err := utils.WrapWithContextRecovery(task.Run)(task.Ctx); err != nil {
		status = "failure"
		log.Warn("Background task failed", zap.Error(err))
	}

	duration := time.Since(start)
	observer.ObserveBackgroundTaskDuration(task.Name, duration)
	observer.IncBackgroundTasksProcessed(task.Name, status)
	log.Debug("Finished background task", zap.Duration("duration", duration), zap.String("final_status", status))
}

// Stop waits for running tasks to finish, up to a bounded timeout, and releases the pool.
func (w *BackgroundWorker) Stop() {
	if w.pool == nil {
		return
	}
	w.baseLogger.Info("Releasing background worker pool")
	start := time.Now()
	if err := w.pool.ReleaseTimeout(defaultStopTimeout); err != nil {
		w.baseLogger.Warn("Background worker pool did not drain in time", zap.Error(err))
	}
	w.baseLogger.Info("Background worker pool released", zap.Duration("duration", time.Since(start)))
}
