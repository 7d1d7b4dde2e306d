package vision

import (
	"encoding/json"
	"fmt"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/apperrors"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/validator"
)

// ExtractJSONObject returns the first balanced {...} span in text.
// Braces inside JSON strings are ignored, including strings with escaped quotes.
func ExtractJSONObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if start < 0 {
			if c == '{' {
				start = i
				depth = 1
			}
			continue
		}

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseAnalysis decodes and validates one JSON object produced by the model.
// Every failure wraps apperrors.ErrAnalysisUnavailable.
func ParseAnalysis(span string) (*model.NutritionAnalysis, error) {
	var analysis model.NutritionAnalysis
	if err := json.Unmarshal([]byte(span), &analysis); err != nil {
		return nil, fmt.Errorf("%w: unmarshal model reply: %v", apperrors.ErrAnalysisUnavailable, err)
	}
	if err := validator.Validate(&analysis); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrAnalysisUnavailable, err)
	}
	return &analysis, nil
}

// ParseReply extracts the JSON object from a free-form model reply and parses it.
func ParseReply(reply string) (*model.NutritionAnalysis, error) {
	span, ok := ExtractJSONObject(reply)
	if !ok {
		return nil, fmt.Errorf("%w: no json object in model reply", apperrors.ErrAnalysisUnavailable)
	}
	return ParseAnalysis(span)
}
