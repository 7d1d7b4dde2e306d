package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/apperrors"
)

const validJSON = `{"foods":[{"name":"Salad","portion":"1 bowl","calories":150,"protein":4,"carbs":12,"fats":9}],` +
	`"totals":{"calories":150,"protein":4,"carbs":12,"fats":9},"healthScore":8,"tip":"Nice and green."}`

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"prose around", "Sure! Here you go:\n" + `{"a":1}` + "\nEnjoy.", `{"a":1}`, true},
		{"markdown fence", "```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`, true},
		{"brace in string", `x {"tip":"use {curly} braces"} y`, `{"tip":"use {curly} braces"}`, true},
		{"escaped quote", `{"tip":"say \"}\" loudly"} trailing }`, `{"tip":"say \"}\" loudly"}`, true},
		{"escaped backslash", `{"p":"c:\\"} {"q":1}`, `{"p":"c:\\"}`, true},
		{"first of two", `{"a":1} {"b":2}`, `{"a":1}`, true},
		{"no object", "I cannot see any food.", "", false},
		{"unbalanced", `{"a":{"b":1}`, "", false},
		{"empty", "", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tc.input)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseReplyIgnoresProse(t *testing.T) {
	analysis, err := ParseReply("Here is the analysis you asked for:\n" + validJSON + "\nLet me know if you need more.")
	require.NoError(t, err)
	require.Len(t, analysis.Foods, 1)
	assert.Equal(t, "Salad", analysis.Foods[0].Name)
	assert.Equal(t, "150", analysis.Totals.Calories.String())
	assert.Equal(t, 8, analysis.HealthScore)
	assert.Equal(t, "Nice and green.", analysis.Tip)
}

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", validJSON, false},
		{"empty foods allowed", `{"foods":[],"totals":{"calories":0,"protein":0,"carbs":0,"fats":0},"healthScore":1}`, false},
		{"unknown fields allowed", `{"foods":[],"totals":{"calories":1,"protein":1,"carbs":1,"fats":1},"healthScore":5,"confidence":"high"}`, false},
		{"missing foods", `{"totals":{"calories":1,"protein":1,"carbs":1,"fats":1},"healthScore":5}`, true},
		{"missing totals", `{"foods":[],"healthScore":5}`, true},
		{"missing totals field", `{"foods":[],"totals":{"calories":1,"protein":1,"carbs":1},"healthScore":5}`, true},
		{"score too high", `{"foods":[],"totals":{"calories":1,"protein":1,"carbs":1,"fats":1},"healthScore":11}`, true},
		{"score missing", `{"foods":[],"totals":{"calories":1,"protein":1,"carbs":1,"fats":1}}`, true},
		{"score wrong type", `{"foods":[],"totals":{"calories":1,"protein":1,"carbs":1,"fats":1},"healthScore":"high"}`, true},
		{"foods wrong type", `{"foods":"rice","totals":{"calories":1,"protein":1,"carbs":1,"fats":1},"healthScore":5}`, true},
		{"malformed", `{"foods":[}`, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			analysis, err := ParseAnalysis(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrAnalysisUnavailable)
				assert.Nil(t, analysis)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, analysis)
		})
	}
}

func TestParseReplyNoJSON(t *testing.T) {
	analysis, err := ParseReply("Sorry, I can't help with that.")
	assert.Nil(t, analysis)
	assert.ErrorIs(t, err, apperrors.ErrAnalysisUnavailable)
	assert.Contains(t, err.Error(), "no json object")
}
