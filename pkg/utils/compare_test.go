package utils

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
)

func TestStreamConfigEqual(t *testing.T) {
	base := func() nats.StreamConfig {
		return nats.StreamConfig{
			Name:       "meal_events",
			Retention:  nats.LimitsPolicy,
			MaxAge:     72 * time.Hour,
			Storage:    nats.FileStorage,
			Duplicates: 2 * time.Minute,
			Subjects:   []string{"v1.meals.logged"},
		}
	}

	tests := []struct {
		name     string
		mutate   func(c *nats.StreamConfig)
		expected bool
	}{
		{name: "identical configs", mutate: func(c *nats.StreamConfig) {}, expected: true},
		{name: "different name", mutate: func(c *nats.StreamConfig) { c.Name = "other" }, expected: false},
		{name: "different retention", mutate: func(c *nats.StreamConfig) { c.Retention = nats.WorkQueuePolicy }, expected: false},
		{name: "different max age", mutate: func(c *nats.StreamConfig) { c.MaxAge = time.Hour }, expected: false},
		{name: "different storage", mutate: func(c *nats.StreamConfig) { c.Storage = nats.MemoryStorage }, expected: false},
		{name: "different duplicates window", mutate: func(c *nats.StreamConfig) { c.Duplicates = time.Minute }, expected: false},
		{name: "extra subject", mutate: func(c *nats.StreamConfig) { c.Subjects = append(c.Subjects, "v1.meals.other") }, expected: false},
		{name: "max msgs is not managed", mutate: func(c *nats.StreamConfig) { c.MaxMsgs = 10 }, expected: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, b := base(), base()
			tc.mutate(&b)
			assert.Equal(t, tc.expected, StreamConfigEqual(a, b))
		})
	}
}
