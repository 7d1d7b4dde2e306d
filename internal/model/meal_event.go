package model

import "time"

// MealLoggedEvent is published after a meal log entry is stored.
type MealLoggedEvent struct {
	MealLogID     string    `json:"meal_log_id"`
	UserID        string    `json:"user_id"`
	TotalCalories float64   `json:"total_calories"`
	HealthScore   int       `json:"health_score"`
	Source        string    `json:"source"`
	LoggedAt      time.Time `json:"logged_at"`
}

// NewMealLoggedEvent derives the event from a stored entry.
func NewMealLoggedEvent(entry *MealLogEntry) MealLoggedEvent {
	return MealLoggedEvent{
		MealLogID:     entry.ID,
		UserID:        entry.UserID,
		TotalCalories: entry.TotalCalories,
		HealthScore:   entry.HealthScore,
		Source:        entry.Source,
		LoggedAt:      entry.LoggedAt,
	}
}
