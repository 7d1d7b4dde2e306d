package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/apperrors"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/jetstream"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/observer"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/storage"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/logger"
)

const publishTimeout = 5 * time.Second

// Recorder persists a successful analysis for the sender, best effort.
type Recorder interface {
	// Record reports whether the meal was stored. It never fails loudly.
	Record(ctx context.Context, senderID string, analysis *model.NutritionAnalysis, loggedAt time.Time) bool
}

// MealRecorder stores meal logs against users found by phone and announces them on NATS.
type MealRecorder struct {
	users      storage.UserRepo
	logs       storage.MealLogRepo
	publisher  jetstream.Publisher // nil disables meal events
	subject    string
	worker     IBackgroundWorker
	baseLogger *zap.Logger
}

var _ Recorder = (*MealRecorder)(nil)

func NewMealRecorder(
	users storage.UserRepo,
	logs storage.MealLogRepo,
	publisher jetstream.Publisher,
	subject string,
	worker IBackgroundWorker,
	baseLogger *zap.Logger,
) *MealRecorder {
	return &MealRecorder{
		users:      users,
		logs:       logs,
		publisher:  publisher,
		subject:    subject,
		worker:     worker,
		baseLogger: baseLogger.Named("meal_recorder"),
	}
}

func (r *MealRecorder) Record(ctx context.Context, senderID string, analysis *model.NutritionAnalysis, loggedAt time.Time) bool {
	log := logger.FromContextOr(ctx, r.baseLogger).With(zap.String("sender_id", senderID))

	if senderID == "" || analysis == nil {
		observer.IncMealLog("skipped")
		return false
	}

	user, err := r.users.FindByPhone(ctx, senderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Debug("No account for sender, meal not logged")
			observer.IncMealLog("user_not_found")
			return false
		}
		log.Warn("User lookup failed, meal not logged", zap.Error(err))
		observer.IncMealLog("lookup_error")
		return false
	}

	entry, err := model.NewMealLogEntry(user.ID, analysis, loggedAt)
	if err != nil {
		log.Warn("Could not build meal log entry", zap.String("user_id", user.ID), zap.Error(err))
		observer.IncMealLog("build_error")
		return false
	}

	if err := r.logs.Append(ctx, entry); err != nil {
		log.Warn("Failed to save meal log", zap.String("user_id", user.ID), zap.Error(err))
		observer.IncMealLog("save_error")
		return false
	}

	log.Info("Meal logged",
		zap.String("user_id", user.ID),
		zap.String("meal_log_id", entry.ID),
		zap.Float64("total_calories", entry.TotalCalories),
		zap.Int("health_score", entry.HealthScore))
	observer.IncMealLog("logged")

	r.publishLogged(ctx, entry)
	return true
}

// publishLogged announces entry in the background. Failures are logged only.
func (r *MealRecorder) publishLogged(ctx context.Context, entry *model.MealLogEntry) {
	if r.publisher == nil || r.worker == nil {
		return
	}
	log := logger.FromContextOr(ctx, r.baseLogger)

	data, err := json.Marshal(model.NewMealLoggedEvent(entry))
	if err != nil {
		log.Error("Failed to marshal meal logged event", zap.Error(err))
		return
	}

	subject := r.subject
	err = r.worker.SubmitTask(BackgroundTask{
		Ctx:  context.WithoutCancel(ctx),
		Name: TaskMealEvent,
		Run: func(taskCtx context.Context) error {
			taskCtx, cancel := context.WithTimeout(taskCtx, publishTimeout)
			defer cancel()
			pubErr := r.publisher.Publish(taskCtx, subject, data, entry.ID)
			observer.IncEventPublished(subject, pubErr)
			return pubErr
		},
	})
	if err != nil {
		log.Warn("Could not schedule meal logged event", zap.String("meal_log_id", entry.ID), zap.Error(err))
	}
}
