package model

import "encoding/json"

// FoodItem is one food the vision model detected. Numeric fields keep the model's own text.
type FoodItem struct {
	Name     string      `json:"name"`
	Portion  string      `json:"portion"`
	Calories json.Number `json:"calories"`
	Protein  json.Number `json:"protein"`
	Carbs    json.Number `json:"carbs"`
	Fats     json.Number `json:"fats"`
}

// Totals are computed by the model and need not equal the sum of Foods.
type Totals struct {
	Calories json.Number `json:"calories" validate:"required"`
	Protein  json.Number `json:"protein" validate:"required"`
	Carbs    json.Number `json:"carbs" validate:"required"`
	Fats     json.Number `json:"fats" validate:"required"`
}

// NutritionAnalysis is the validated result of one successful vision call.
// Foods keeps detection order.
type NutritionAnalysis struct {
	Foods       []FoodItem `json:"foods" validate:"required"`
	Totals      *Totals    `json:"totals" validate:"required"`
	HealthScore int        `json:"healthScore" validate:"required,min=1,max=10"`
	Tip         string     `json:"tip"`
}
