package mock

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/mock"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/jetstream"
)

// PublisherMock is a mock implementation of jetstream.Publisher
type PublisherMock struct {
	mock.Mock
}

var _ jetstream.Publisher = (*PublisherMock)(nil)

func (m *PublisherMock) SetupStream(ctx context.Context, streamConfig *nats.StreamConfig) error {
	args := m.Called(ctx, streamConfig)
	return args.Error(0)
}

func (m *PublisherMock) Publish(ctx context.Context, subject string, data []byte, msgID string) error {
	args := m.Called(ctx, subject, data, msgID)
	return args.Error(0)
}

func (m *PublisherMock) Close() {
	m.Called()
}
