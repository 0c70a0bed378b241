package redispub

// Package redispub provides the Redis-backed publish sink the generation
// workers subscribe to. Publishing is fire-and-forget: a nil error only means
// Redis accepted the message.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mealhow/mealhow-api/internal/core"
	"github.com/mealhow/mealhow-api/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

// Publisher publishes dispatch events to Redis channels named after their
// fully qualified topic.
type Publisher struct {
	client redis.UniversalClient
	logger *slog.Logger
}

var _ core.Publisher = (*Publisher)(nil)

// NewPublisher creates a Publisher over the given Redis client.
func NewPublisher(client redis.UniversalClient, logger *slog.Logger) (*Publisher, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client: client,
		logger: logger.With("component", "publisher"),
	}, nil
}

// Publish sends the event payload to the event's topic channel.
func (p *Publisher) Publish(ctx context.Context, event model.DispatchEvent) error {
	if event.Topic == "" {
		return errors.New("dispatch event topic is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("dispatch event payload is required")
	}

	if err := p.client.Publish(ctx, event.Topic, event.Payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", event.Topic, err)
	}

	p.logger.DebugContext(ctx, "dispatch event published",
		"topic", event.Topic,
		"payload_bytes", len(event.Payload),
	)
	return nil
}
