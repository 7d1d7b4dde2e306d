package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/storage"
)

var (
	_ storage.UserRepo      = (*UserRepoMock)(nil)
	_ storage.MealLogRepo   = (*MealLogRepoMock)(nil)
	_ storage.HealthChecker = (*HealthCheckerMock)(nil)
)

// UserRepoMock mocks the UserRepo interface
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MealLogRepoMock mocks the MealLogRepo interface
type MealLogRepoMock struct {
	mock.Mock
}

func (m *MealLogRepoMock) Append(ctx context.Context, entry *model.MealLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// HealthCheckerMock mocks the HealthChecker interface
type HealthCheckerMock struct {
	mock.Mock
}

func (m *HealthCheckerMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
