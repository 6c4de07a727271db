package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultChannel = "quiz:bank:reloaded"

// Broadcaster fans bank reload events out to every connected client. With a
// Redis client the event goes through Pub/Sub so all API replicas forward it;
// without one it goes straight to the local hub.
type Broadcaster struct {
	redis   *redis.Client
	hub     *Hub
	channel string
	logger  zerolog.Logger
}

// NewBroadcaster creates a bank reload broadcaster. redis may be nil.
func NewBroadcaster(redis *redis.Client, hub *Hub, channel string, logger zerolog.Logger) *Broadcaster {
	if channel == "" {
		channel = defaultChannel
	}
	return &Broadcaster{
		redis:   redis,
		hub:     hub,
		channel: channel,
		logger:  logger.With().Str("component", "bank_broadcaster").Logger(),
	}
}

// Publish announces a reload.
func (b *Broadcaster) Publish(ctx context.Context, evt BankReloadedPayload) error {
	raw, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal bank reload event: %w", err)
	}
	if b.redis == nil {
		b.forward(string(raw))
		return nil
	}
	if err := b.redis.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish bank reload event: %w", err)
	}
	return nil
}

// Run subscribes to the reload channel and blocks until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.redis == nil || b.hub == nil {
		return nil
	}

	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.forward(msg.Payload)
		}
	}
}

func (b *Broadcaster) forward(payload string) {
	if b.hub == nil {
		return
	}
	var evt BankReloadedPayload
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		b.logger.Warn().Err(err).Msg("failed to decode bank reload payload")
		return
	}

	msg, err := NewMessage(TypeBankReloaded, evt)
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to marshal bank reload WS payload")
		return
	}
	if err := b.hub.BroadcastAll(msg); err != nil {
		b.logger.Warn().Err(err).Msg("failed to broadcast bank reload")
	}
}
