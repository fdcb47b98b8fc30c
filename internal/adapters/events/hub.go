package events

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
)

// hub tracks local subscriber channels per bus channel. Every subscriber
// channel is closed exactly once, by whichever of remove or removeAll
// gets to it first.
type hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *entities.SessionEvent]struct{}
}

func newHub() *hub {
	return &hub{subscribers: make(map[string]map[chan *entities.SessionEvent]struct{})}
}

func (h *hub) add(channel string) (chan *entities.SessionEvent, int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[channel] == nil {
		h.subscribers[channel] = make(map[chan *entities.SessionEvent]struct{})
	}
	ch := make(chan *entities.SessionEvent, subscriberBuffer)
	h.subscribers[channel][ch] = struct{}{}
	return ch, len(h.subscribers[channel])
}

// remove closes one subscriber and returns how many remain on the channel
func (h *hub) remove(channel string, ch chan *entities.SessionEvent) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscribers[channel]
	if !ok {
		return 0
	}
	if _, ok := subs[ch]; ok {
		delete(subs, ch)
		close(ch)
	}
	if len(subs) == 0 {
		delete(h.subscribers, channel)
	}
	return len(subs)
}

func (h *hub) removeAll(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers[channel] {
		close(ch)
	}
	delete(h.subscribers, channel)
}

func (h *hub) channels() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.subscribers))
	for channel := range h.subscribers {
		out = append(out, channel)
	}
	return out
}

func (h *hub) broadcast(channel string, event *entities.SessionEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[channel] {
		select {
		case ch <- event:
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("subscriber channel full, skipping event")
		}
	}
}
