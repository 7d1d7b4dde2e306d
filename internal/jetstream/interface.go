package jetstream

import (
	"context"

	"github.com/nats-io/nats.go"
)

// Publisher is the subset of JetStream this service uses: stream setup and publishing.
type Publisher interface {
	// SetupStream creates the stream or updates it when its managed fields differ.
	SetupStream(ctx context.Context, streamConfig *nats.StreamConfig) error
	// Publish sends data to subject. A non-empty msgID lets the server drop duplicates.
	Publish(ctx context.Context, subject string, data []byte, msgID string) error
	Close()
}
