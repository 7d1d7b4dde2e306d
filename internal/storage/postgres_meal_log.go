package storage

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/apperrors"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/observer"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/validator"
)

// SaveMealLog appends one meal log entry. Entries are never updated.
func (r *PostgresRepo) SaveMealLog(ctx context.Context, entry *model.MealLogEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: nil meal log entry", apperrors.ErrBadRequest)
	}
	if err := validator.Validate(entry); err != nil {
		return err
	}

	start := time.Now()
	operation := func() error {
		return r.db.WithContext(ctx).Create(entry).Error
	}
	err := retryableOperation(ctx, newRetryPolicy(ctx, commitRetryMaxElapsedTime), "SaveMealLog", operation)
	observer.ObserveDbOperationDuration("create", "meal_log", time.Since(start), err)
	if err != nil {
		return checkConstraintViolation(err)
	}
	return nil
}
