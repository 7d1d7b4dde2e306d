// Package command interprets text messages as bot commands and renders their replies.
package command

import (
	"math/rand/v2"
	"strings"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
)

const (
	HelpText = "🥗 *Meal Photo Bot*\n\n" +
		"Send me a photo of your meal and I'll estimate its calories and macros.\n\n" +
		"*Commands*\n" +
		"• *help* - show this menu\n" +
		"• *today* - your summary for today\n" +
		"• *goals* - your daily nutrition goals\n" +
		"• *tip* - a quick nutrition tip"

	TodayText = "📊 *Today*\n\n" +
		"Every meal photo you send is logged to your account. " +
		"Open the app to see today's calories, macros and health scores in one place."

	GoalsText = "🎯 *Daily goals*\n\n" +
		"Calories: 2000 kcal\n" +
		"Protein: 50g\n" +
		"Carbs: 275g\n" +
		"Fats: 78g\n\n" +
		"You can personalise these in the app."

	FallbackText = "👋 Hi! Send me a photo of your meal and I'll break down its nutrition for you.\n\n" +
		"Type *help* to see everything I can do."
)

var tips = []string{
	"Fill half your plate with vegetables to add fiber without many calories.",
	"Drink a glass of water before each meal. Thirst is often mistaken for hunger.",
	"Add a source of protein to every meal to stay full for longer.",
	"Swap refined grains for whole grains like brown rice or oats.",
	"Eat slowly. It takes about 20 minutes for your brain to register fullness.",
	"Plan tomorrow's lunch tonight so you're not relying on whatever is nearby.",
	"Colorful plates tend to be nutrient-rich plates. Aim for three colors.",
	"Healthy fats from nuts, seeds and olive oil help you absorb vitamins.",
	"Small consistent changes beat big short-lived diets. Keep going! 💪",
}

// Interpret maps free text to a command. Matching is exact after trimming and lower-casing.
func Interpret(text string) model.BotCommand {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "help", "menu":
		return model.CommandHelp
	case "today":
		return model.CommandToday
	case "goals":
		return model.CommandGoals
	case "tip":
		return model.CommandTip
	default:
		return model.CommandUnrecognized
	}
}

// Reply renders the response for cmd. Tip draws a fresh random tip on every call
// and CommandUnrecognized gets the fallback greeting.
func Reply(cmd model.BotCommand) string {
	switch cmd {
	case model.CommandHelp:
		return HelpText
	case model.CommandToday:
		return TodayText
	case model.CommandGoals:
		return GoalsText
	case model.CommandTip:
		return "💡 *Tip:* " + RandomTip()
	default:
		return FallbackText
	}
}

// Fallback is the reply for text that is not a command.
func Fallback() string {
	return FallbackText
}

// RandomTip returns one entry of the tip pool chosen uniformly at random.
func RandomTip() string {
	return tips[rand.IntN(len(tips))]
}

// Tips returns a copy of the tip pool.
func Tips() []string {
	return append([]string(nil), tips...)
}
