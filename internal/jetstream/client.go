package jetstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/apperrors"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/logger"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/utils"
)

// duplicateWindow bounds how long the server remembers message ids for de-duplication.
const duplicateWindow = 2 * time.Minute

// Client wraps NATS JetStream functionality
type Client struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

var _ Publisher = (*Client)(nil)

// NewClient connects to NATS and opens a JetStream context. The connection retries in the background.
func NewClient(url string) (*Client, error) {
	nc, err := nats.Connect(url,
		nats.Name("daisi-meal-photo-bot"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Log.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(nc *nats.Conn, s *nats.Subscription, err error) {
			logger.Log.Error("NATS error", zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect: %w", apperrors.ErrNATS, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: failed to create JetStream context: %w", apperrors.ErrNATS, err)
	}

	return &Client{nc: nc, js: js}, nil
}

// MealEventsStreamConfig describes the stream that holds meal events.
func MealEventsStreamConfig(name string, subjects []string, maxAge time.Duration) *nats.StreamConfig {
	return &nats.StreamConfig{
		Name:       name,
		Subjects:   subjects,
		Retention:  nats.LimitsPolicy,
		Storage:    nats.FileStorage,
		MaxAge:     maxAge,
		Duplicates: duplicateWindow,
	}
}

// SetupStream ensures the stream exists with the given configuration
func (c *Client) SetupStream(ctx context.Context, streamConfig *nats.StreamConfig) error {
	log := logger.FromContext(ctx).With(zap.String("stream", streamConfig.Name))

	stream, err := c.js.StreamInfo(streamConfig.Name, nats.Context(ctx))
	if err != nil && !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("%w: stream info for '%s': %w", apperrors.ErrNATS, streamConfig.Name, err)
	}

	switch {
	case stream == nil:
		if _, err := c.js.AddStream(streamConfig, nats.Context(ctx)); err != nil {
			return fmt.Errorf("%w: add stream '%s': %w", apperrors.ErrNATS, streamConfig.Name, err)
		}
		log.Info("Created stream", zap.Strings("subjects", streamConfig.Subjects))
	case !utils.StreamConfigEqual(stream.Config, *streamConfig):
		if _, err := c.js.UpdateStream(streamConfig, nats.Context(ctx)); err != nil {
			return fmt.Errorf("%w: update stream '%s': %w", apperrors.ErrNATS, streamConfig.Name, err)
		}
		log.Info("Updated stream", zap.Strings("subjects", streamConfig.Subjects))
	default:
		log.Debug("Stream up to date")
	}
	return nil
}

// Publish publishes data to subject, tagging it with msgID for server-side de-duplication.
func (c *Client) Publish(ctx context.Context, subject string, data []byte, msgID string) error {
	msg := nats.NewMsg(subject)
	msg.Data = data

	opts := []nats.PubOpt{nats.Context(ctx)}
	if msgID != "" {
		opts = append(opts, nats.MsgId(msgID))
	}
	if _, err := c.js.PublishMsg(msg, opts...); err != nil {
		return fmt.Errorf("%w: publish to %s: %w", apperrors.ErrNATS, subject, err)
	}
	return nil
}

// Close drains and closes the NATS connection
func (c *Client) Close() {
	if c.nc == nil {
		return
	}
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
	}
}
