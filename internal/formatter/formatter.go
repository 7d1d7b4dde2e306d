// Package formatter renders nutrition analyses as chat-ready text.
package formatter

import (
	"encoding/json"
	"fmt"
	"strings"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
)

const (
	// AnalysisFailed is sent whenever no analysis is available for an image.
	AnalysisFailed = "😕 Sorry, I couldn't analyze that image. " +
		"Please try again with a clearer photo of your meal, taken from above in good light."

	// LoggedSuffix is appended to a formatted analysis once it has been saved.
	LoggedSuffix = "\n\n✅ Logged to your account."

	// GenericFailure is the reply for any unexpected error while handling a message.
	GenericFailure = "⚠️ Sorry, something went wrong on our side. Please try again in a moment."

	// Courtesy is sent ahead of a slow image analysis.
	Courtesy = "🔍 Analyzing your meal, one moment..."

	header = "🍽️ *Meal Analysis*"
	footer = "_Estimates are approximate. Send another photo anytime!_"
)

const (
	healthGood = "🟢"
	healthFair = "🟡"
	healthPoor = "🔴"
)

// Format builds the reply for an analysis. A nil analysis yields AnalysisFailed.
// The result is never empty and numbers are printed exactly as the model sent them.
func Format(a *model.NutritionAnalysis) string {
	if a == nil {
		return AnalysisFailed
	}

	var b strings.Builder
	b.WriteString(header)

	if len(a.Foods) > 0 {
		b.WriteString("\n\n*Foods detected:*")
		for i, f := range a.Foods {
			fmt.Fprintf(&b, "\n%d. %s", i+1, foodLine(f))
		}
	}

	if a.Totals != nil {
		b.WriteString("\n\n*Totals:*")
		writeTotal(&b, "🔥 Calories", a.Totals.Calories, " kcal")
		writeTotal(&b, "🥩 Protein", a.Totals.Protein, "g")
		writeTotal(&b, "🍞 Carbs", a.Totals.Carbs, "g")
		writeTotal(&b, "🥑 Fats", a.Totals.Fats, "g")
	}

	if a.HealthScore > 0 {
		fmt.Fprintf(&b, "\n\n%s *Health score:* %d/10", HealthIndicator(a.HealthScore), a.HealthScore)
	}

	if tip := strings.TrimSpace(a.Tip); tip != "" {
		b.WriteString("\n\n💡 *Tip:* ")
		b.WriteString(tip)
	}

	b.WriteString("\n\n")
	b.WriteString(footer)
	return b.String()
}

// HealthIndicator picks the glyph for a 1..10 health score.
func HealthIndicator(score int) string {
	switch {
	case score >= 7:
		return healthGood
	case score >= 5:
		return healthFair
	default:
		return healthPoor
	}
}

func foodLine(f model.FoodItem) string {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = "Unknown item"
	}
	if portion := strings.TrimSpace(f.Portion); portion != "" {
		name += " (" + portion + ")"
	}

	var macros []string
	if f.Calories != "" {
		macros = append(macros, f.Calories.String()+" kcal")
	}
	if f.Protein != "" {
		macros = append(macros, "P "+f.Protein.String()+"g")
	}
	if f.Carbs != "" {
		macros = append(macros, "C "+f.Carbs.String()+"g")
	}
	if f.Fats != "" {
		macros = append(macros, "F "+f.Fats.String()+"g")
	}
	if len(macros) == 0 {
		return name
	}
	return name + " - " + strings.Join(macros, " | ")
}

func writeTotal(b *strings.Builder, label string, v json.Number, unit string) {
	if v == "" {
		return
	}
	b.WriteString("\n")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(v.String())
	b.WriteString(unit)
}
