package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/apperrors"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/observer"
)

// phoneCandidates returns the stored forms a sender address may match.
// Meta sends bare digits while Twilio sends E.164 with a leading "+".
func phoneCandidates(phone string) []string {
	digits := strings.TrimPrefix(strings.TrimSpace(phone), "+")
	if digits == "" {
		return nil
	}
	return []string{"+" + digits, digits}
}

// FindUserByPhone returns the user whose phone number matches phone with or without a leading "+".
func (r *PostgresRepo) FindUserByPhone(ctx context.Context, phone string) (*model.User, error) {
	candidates := phoneCandidates(phone)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: empty phone", apperrors.ErrNotFound)
	}

	start := time.Now()
	var user model.User
	operation := func() error {
		err := r.db.WithContext(ctx).Where("phone_number IN ?", candidates).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return fmt.Errorf("%w: find user by phone: %w", apperrors.ErrDatabase, err)
		}
		return nil
	}

	err := retryableOperation(ctx, newRetryPolicy(ctx, readRetryMaxElapsedTime), "FindUserByPhone", operation)
	observer.ObserveDbOperationDuration("find_by_phone", "user", time.Since(start), ignoreNotFound(err))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user with phone %s", apperrors.ErrNotFound, phone)
		}
		return nil, err
	}
	return &user, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
