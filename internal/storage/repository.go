package storage

import (
	"context"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
)

// UserRepo looks up accounts owned by the wider application.
type UserRepo interface {
	// FindByPhone returns apperrors.ErrNotFound when no account matches.
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
}

// MealLogRepo appends meal log entries.
type MealLogRepo interface {
	Append(ctx context.Context, entry *model.MealLogEntry) error
}

// HealthChecker reports whether the store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
