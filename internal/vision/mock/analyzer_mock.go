package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
)

// AnalyzerMock is a mock implementation of vision.Analyzer.
type AnalyzerMock struct {
	mock.Mock
}

func (m *AnalyzerMock) Analyze(ctx context.Context, imageURL string) (*model.NutritionAnalysis, error) {
	args := m.Called(ctx, imageURL)
	var analysis *model.NutritionAnalysis
	if a := args.Get(0); a != nil {
		analysis = a.(*model.NutritionAnalysis)
	}
	return analysis, args.Error(1)
}
