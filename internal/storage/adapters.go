package storage

import (
	"context"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
)

// UserRepoAdapter adapts the PostgresRepo to the UserRepo interface
type UserRepoAdapter struct {
	postgres *PostgresRepo
}

// NewUserRepoAdapter creates a new user repository adapter
func NewUserRepoAdapter(postgres *PostgresRepo) UserRepo {
	return &UserRepoAdapter{postgres: postgres}
}

func (a *UserRepoAdapter) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	return a.postgres.FindUserByPhone(ctx, phone)
}

// MealLogRepoAdapter adapts the PostgresRepo to the MealLogRepo interface
type MealLogRepoAdapter struct {
	postgres *PostgresRepo
}

// NewMealLogRepoAdapter creates a new meal log repository adapter
func NewMealLogRepoAdapter(postgres *PostgresRepo) MealLogRepo {
	return &MealLogRepoAdapter{postgres: postgres}
}

func (a *MealLogRepoAdapter) Append(ctx context.Context, entry *model.MealLogEntry) error {
	return a.postgres.SaveMealLog(ctx, entry)
}
