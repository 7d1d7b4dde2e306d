package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm/schema"
)

// SourceWhatsApp is the source recorded for every meal logged through a chat webhook.
const SourceWhatsApp = "whatsapp"

// MealLogEntry is an append-only record of one analyzed meal.
type MealLogEntry struct {
	ID            string         `json:"id" gorm:"primaryKey;type:uuid"`
	UserID        string         `json:"user_id" gorm:"index;type:text;not null" validate:"required"`
	Foods         datatypes.JSON `json:"foods" gorm:"type:jsonb;not null"`
	TotalCalories float64        `json:"total_calories"`
	TotalProtein  float64        `json:"total_protein"`
	TotalCarbs    float64        `json:"total_carbs"`
	TotalFats     float64        `json:"total_fats"`
	HealthScore   int            `json:"health_score"`
	Source        string         `json:"source" gorm:"type:text;not null"`
	LoggedAt      time.Time      `json:"logged_at" gorm:"index;not null"`
	CreatedAt     time.Time      `json:"created_at,omitempty" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the MealLogEntry model, respecting the Namer.
func (MealLogEntry) TableName(namer schema.Namer) string {
	return namer.TableName("meal_logs")
}

// NewMealLogEntry builds the record for analysis. loggedAt is when the analysis succeeded.
func NewMealLogEntry(userID string, analysis *NutritionAnalysis, loggedAt time.Time) (*MealLogEntry, error) {
	if analysis == nil || analysis.Totals == nil {
		return nil, fmt.Errorf("meal log for user %s: missing analysis totals", userID)
	}

	foods := analysis.Foods
	if foods == nil {
		foods = []FoodItem{}
	}
	foodsJSON, err := json.Marshal(foods)
	if err != nil {
		return nil, fmt.Errorf("marshal foods: %w", err)
	}

	entry := &MealLogEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Foods:       datatypes.JSON(foodsJSON),
		HealthScore: analysis.HealthScore,
		Source:      SourceWhatsApp,
		LoggedAt:    loggedAt.UTC(),
	}
	totals := []struct {
		dst *float64
		src json.Number
		key string
	}{
		{&entry.TotalCalories, analysis.Totals.Calories, "calories"},
		{&entry.TotalProtein, analysis.Totals.Protein, "protein"},
		{&entry.TotalCarbs, analysis.Totals.Carbs, "carbs"},
		{&entry.TotalFats, analysis.Totals.Fats, "fats"},
	}
	for _, t := range totals {
		v, err := t.src.Float64()
		if err != nil {
			return nil, fmt.Errorf("total %s %q: %w", t.key, t.src, err)
		}
		*t.dst = v
	}
	return entry, nil
}
