package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
)

// SSEHandler streams session changes (sign-in, sign-out, role changes) to
// the signed-in user
type SSEHandler struct {
	sessions  SessionService
	heartbeat time.Duration
	clients   map[string]int // user id -> open streams
	mu        sync.RWMutex
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(sessions SessionService) *SSEHandler {
	return &SSEHandler{
		sessions:  sessions,
		heartbeat: 30 * time.Second,
		clients:   make(map[string]int),
	}
}

// StreamSessionEvents handles GET /api/auth/events
func (h *SSEHandler) StreamSessionEvents(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	userID := session.User.ID

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	logger := hlog.FromRequest(r)
	events, err := h.sessions.Subscribe(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	h.registerClient(userID)
	defer h.unregisterClient(userID)

	h.sendEvent(w, "connected", map[string]interface{}{
		"user_id":   userID,
		"timestamp": time.Now(),
	})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Str("user_id", userID).Msg("client disconnected from session stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.Type), event)
			flusher.Flush()
			if event.Type == entities.SessionEventSignedOut {
				return
			}
		}
	}
}

func (h *SSEHandler) registerClient(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID]++
}

func (h *SSEHandler) unregisterClient(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID]--
	if h.clients[userID] <= 0 {
		delete(h.clients, userID)
	}
}

// sendEvent sends an SSE event to the client
func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of open streams
func (h *SSEHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, n := range h.clients {
		count += n
	}
	return count
}
