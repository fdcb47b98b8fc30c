package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/internal/domain/providers"
	redisclient "github.com/zatekoja/workshopbooking/internal/infrastructure/clients/redis"
)

// subscriberBuffer bounds each subscriber channel; slow readers drop events
const subscriberBuffer = 100

// RedisEventBus implements the EventBus interface using Redis Pub/Sub
type RedisEventBus struct {
	client        *redisclient.Client
	subscriptions map[string]*redis.PubSub
	hub           *hub
	mu            sync.Mutex
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
		hub:           newHub(),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Publish publishes an event to every instance subscribed to the channel
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.SessionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("channel", channel).Str("event_id", event.ID).Str("type", string(event.Type)).Msg("published session event")
	return nil
}

// Subscribe subscribes to events on a channel until ctx is done. The hub
// membership and the Redis subscription change together under b.mu, so a
// subscriber arriving during another's teardown keeps a live subscription.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.SessionEvent, error) {
	b.mu.Lock()
	if _, exists := b.subscriptions[channel]; !exists {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		b.subscriptions[channel] = pubsub
		go b.receiveMessages(channel, pubsub)
	}
	eventChan, count := b.hub.add(channel)
	b.mu.Unlock()

	log.Debug().Str("channel", channel).Int("subscribers", count).Msg("subscribed")

	go func() {
		<-ctx.Done()
		b.release(channel, eventChan)
	}()

	return eventChan, nil
}

// release drops one subscriber and closes the Redis subscription once the
// channel has no local subscribers left
func (b *RedisEventBus) release(channel string, ch chan *entities.SessionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hub.remove(channel, ch) == 0 {
		b.closeSubscriptionLocked(channel)
	}
}

// receiveMessages fans messages from Redis out to local subscribers
func (b *RedisEventBus) receiveMessages(channel string, pubsub *redis.PubSub) {
	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event entities.SessionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("failed to unmarshal session event")
				continue
			}
			b.hub.broadcast(channel, &event)
		}
	}
}

// closeSubscriptionLocked closes the Redis subscription; b.mu must be held
func (b *RedisEventBus) closeSubscriptionLocked(channel string) {
	if pubsub, ok := b.subscriptions[channel]; ok {
		if err := pubsub.Close(); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("failed to close subscription")
		}
		delete(b.subscriptions, channel)
	}
}

// Unsubscribe drops every subscriber of a channel
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	b.hub.removeAll(channel)
	b.closeSubscriptionLocked(channel)
	b.mu.Unlock()

	log.Debug().Str("channel", channel).Msg("unsubscribed")
	return nil
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.Lock()
	for channel := range b.subscriptions {
		b.hub.removeAll(channel)
		b.closeSubscriptionLocked(channel)
	}
	b.mu.Unlock()

	log.Info().Msg("event bus closed")
	return nil
}
