package usecase

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
)

// inlineWorker runs submitted tasks synchronously so tests can assert on their effects.
type inlineWorker struct {
	mu    sync.Mutex
	tasks []string
	err   error
}

func (w *inlineWorker) SubmitTask(task BackgroundTask) error {
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	w.tasks = append(w.tasks, task.Name)
	w.mu.Unlock()
	_ = task.Run(task.Ctx)
	return nil
}

func (w *inlineWorker) Stop() {}

func (w *inlineWorker) submitted() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.tasks...)
}

var _ IBackgroundWorker = (*inlineWorker)(nil)

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func twilioForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhook/twilio", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// twimlText returns the single message carried by a TwiML response, or "" for an empty one.
func twimlText(t *testing.T, body string) string {
	t.Helper()
	var doc struct {
		Messages []string `xml:"Message"`
	}
	require.NoError(t, xml.Unmarshal([]byte(body), &doc), "body: %s", body)
	require.LessOrEqual(t, len(doc.Messages), 1)
	if len(doc.Messages) == 0 {
		return ""
	}
	return doc.Messages[0]
}

func sampleAnalysis() *model.NutritionAnalysis {
	return &model.NutritionAnalysis{
		Foods:       []model.FoodItem{{Name: "Oatmeal", Portion: "1 bowl", Calories: "300", Protein: "10", Carbs: "54", Fats: "5"}},
		Totals:      &model.Totals{Calories: "300", Protein: "10", Carbs: "54", Fats: "5"},
		HealthScore: 8,
		Tip:         "Top it with berries.",
	}
}
