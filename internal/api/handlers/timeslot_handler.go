package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
)

// TimeSlotService defines the time-slot operations used by the handlers.
type TimeSlotService interface {
	Options(start string) (*entities.TimeSlotOptions, error)
	Book(ctx context.Context, req entities.BookTimeSlotRequest) (*entities.TimeSlot, error)
}

// TimeSlotHandler handles time-slot bookings
type TimeSlotHandler struct {
	service TimeSlotService
}

// NewTimeSlotHandler creates a new time-slot handler
func NewTimeSlotHandler(service TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{service: service}
}

// GetOptions handles GET /api/timeslots/options?start=HH:MM
func (h *TimeSlotHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Options(r.URL.Query().Get("start"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, opts)
}

// BookTimeSlot handles POST /api/timeslots
func (h *TimeSlotHandler) BookTimeSlot(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req entities.BookTimeSlotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	userID, err := ownUserID(session, req.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	req.UserID = userID

	slot, err := h.service.Book(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"timeSlot": slot,
		"banner":   successBanner("Time slot saved successfully"),
	})
}
