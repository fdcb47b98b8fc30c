package events

import (
	"context"
	"sync"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/internal/domain/providers"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

// MemoryEventBus delivers events within one process. It backs the session
// broadcast when Redis is unavailable.
type MemoryEventBus struct {
	hub    *hub
	mu     sync.RWMutex
	closed bool
}

// NewMemoryEventBus creates an in-process event bus
func NewMemoryEventBus() providers.EventBus {
	return &MemoryEventBus{hub: newHub()}
}

// Publish delivers the event to current subscribers of the channel
func (b *MemoryEventBus) Publish(_ context.Context, channel string, event *entities.SessionEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return apperrors.NewInternalError("event bus closed", nil)
	}
	b.hub.broadcast(channel, event)
	return nil
}

// Subscribe subscribes to events on a channel until ctx is done
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.SessionEvent, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, apperrors.NewInternalError("event bus closed", nil)
	}

	ch, _ := b.hub.add(channel)
	go func() {
		<-ctx.Done()
		b.hub.remove(channel, ch)
	}()
	return ch, nil
}

// Unsubscribe drops every subscriber of a channel
func (b *MemoryEventBus) Unsubscribe(_ context.Context, channel string) error {
	b.hub.removeAll(channel)
	return nil
}

// Close closes every subscriber channel
func (b *MemoryEventBus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	for _, channel := range b.hub.channels() {
		b.hub.removeAll(channel)
	}
	return nil
}
