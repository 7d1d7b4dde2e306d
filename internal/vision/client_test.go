package vision

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/apperrors"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/config"
)

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]interface{}{"role": "assistant", "content": content},
			},
		},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 10, "total_tokens": 20},
	})
	return string(body)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.VisionConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		Model:     "gpt-4o",
		Timeout:   timeout,
		MaxTokens: 500,
	}, zaptest.NewLogger(t))
}

func TestAnalyzeSuccess(t *testing.T) {
	var captured map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody("Here you go:\n"+validJSON))
	}, 5*time.Second)

	analysis, err := client.Analyze(testContext(t), "https://x/img.jpg")
	require.NoError(t, err)
	require.Len(t, analysis.Foods, 1)
	assert.Equal(t, 8, analysis.HealthScore)

	assert.Equal(t, "gpt-4o", captured["model"])
	assert.EqualValues(t, 500, captured["max_tokens"])
	messages, ok := captured["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Contains(t, string(mustJSON(t, messages[1])), "https://x/img.jpg")
}

func TestAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		timeout  time.Duration
		contains string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
			},
			timeout:  5 * time.Second,
			contains: "model returned status 500",
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			timeout:  50 * time.Millisecond,
			contains: "timeout",
		},
		{
			name: "no json in reply",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, completionBody("I can't see any food in this picture."))
			},
			timeout:  5 * time.Second,
			contains: "no json object",
		},
		{
			name: "invalid analysis",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, completionBody(`{"foods":[],"healthScore":42}`))
			},
			timeout:  5 * time.Second,
			contains: "validation failed",
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o","choices":[]}`)
			},
			timeout:  5 * time.Second,
			contains: "no choices",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, tc.handler, tc.timeout)
			analysis, err := client.Analyze(testContext(t), "https://x/img.jpg")
			assert.Nil(t, analysis)
			require.Error(t, err)
			assert.True(t, apperrors.IsAnalysisUnavailable(err))
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(config.VisionConfig{APIKey: "k", Model: "gpt-4o"}, zaptest.NewLogger(t))
	assert.EqualValues(t, defaultMaxTokens, c.maxTokens)
	assert.Equal(t, "gpt-4o", c.model)
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
