package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboundMessageKind(t *testing.T) {
	tests := []struct {
		name     string
		msg      InboundMessage
		expected MessageKind
	}{
		{name: "text only", msg: InboundMessage{Text: "help"}, expected: KindText},
		{name: "image only", msg: InboundMessage{HasMedia: true, MediaURL: "https://x/img.jpg"}, expected: KindImage},
		{name: "image wins over text", msg: InboundMessage{Text: "lunch", HasMedia: true, MediaURL: "https://x/img.jpg"}, expected: KindImage},
		{name: "unreadable image is still an image", msg: InboundMessage{HasMedia: true}, expected: KindImage},
		{name: "neither", msg: InboundMessage{}, expected: KindEmpty},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.msg.Kind())
		})
	}

	assert.False(t, (&InboundMessage{HasMedia: true}).MediaReadable())
	assert.True(t, (&InboundMessage{HasMedia: true, MediaURL: "u"}).MediaReadable())
}

func TestNewMealLogEntry(t *testing.T) {
	loggedAt := time.Date(2024, 5, 1, 12, 30, 0, 0, time.FixedZone("WIB", 7*3600))
	analysis := &NutritionAnalysis{
		Foods: []FoodItem{{Name: "Rice", Portion: "1 cup", Calories: "205", Protein: "4.3", Carbs: "45", Fats: "0.4"}},
		Totals: &Totals{
			Calories: "205", Protein: "4.3", Carbs: "45", Fats: "0.4",
		},
		HealthScore: 6,
		Tip:         "Add some vegetables.",
	}

	entry, err := NewMealLogEntry("user-1", analysis, loggedAt)
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "user-1", entry.UserID)
	assert.Equal(t, 205.0, entry.TotalCalories)
	assert.Equal(t, 4.3, entry.TotalProtein)
	assert.Equal(t, 45.0, entry.TotalCarbs)
	assert.Equal(t, 0.4, entry.TotalFats)
	assert.Equal(t, 6, entry.HealthScore)
	assert.Equal(t, SourceWhatsApp, entry.Source)
	assert.Equal(t, loggedAt.UTC(), entry.LoggedAt)

	var foods []FoodItem
	require.NoError(t, json.Unmarshal(entry.Foods, &foods))
	assert.Equal(t, analysis.Foods, foods)
}

func TestNewMealLogEntryErrors(t *testing.T) {
	_, err := NewMealLogEntry("user-1", nil, time.Now())
	assert.Error(t, err)

	bad := NewNutritionAnalysis()
	bad.Totals.Fats = "lots"
	_, err = NewMealLogEntry("user-1", bad, time.Now())
	assert.ErrorContains(t, err, "fats")
}

func TestNewMealLogEntryEmptyFoods(t *testing.T) {
	analysis := NewNutritionAnalysis()
	analysis.Foods = nil

	entry, err := NewMealLogEntry("user-1", analysis, time.Now())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(entry.Foods))
}

func TestNewMealLoggedEvent(t *testing.T) {
	entry, err := NewMealLogEntry("user-9", NewNutritionAnalysis(), time.Now())
	require.NoError(t, err)

	event := NewMealLoggedEvent(entry)
	assert.Equal(t, entry.ID, event.MealLogID)
	assert.Equal(t, "user-9", event.UserID)
	assert.Equal(t, entry.TotalCalories, event.TotalCalories)
	assert.Equal(t, SourceWhatsApp, event.Source)
}
