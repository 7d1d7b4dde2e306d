package jetstream

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
)

func TestMealEventsStreamConfig(t *testing.T) {
	cfg := MealEventsStreamConfig("meal_events", []string{"v1.meals.logged"}, 72*time.Hour)

	assert.Equal(t, "meal_events", cfg.Name)
	assert.Equal(t, []string{"v1.meals.logged"}, cfg.Subjects)
	assert.Equal(t, nats.LimitsPolicy, cfg.Retention)
	assert.Equal(t, nats.FileStorage, cfg.Storage)
	assert.Equal(t, 72*time.Hour, cfg.MaxAge)
	assert.Equal(t, duplicateWindow, cfg.Duplicates)
}

func TestCloseWithoutConnection(t *testing.T) {
	c := &Client{}
	assert.NotPanics(t, c.Close)
}
