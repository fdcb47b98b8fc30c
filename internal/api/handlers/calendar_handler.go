package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/pkg/calendar"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

// CalendarService defines the calendar operations used by the handlers.
type CalendarService interface {
	Today() calendar.Date
	Window(ctx context.Context, userID string) (*entities.BookingWindow, error)
	Month(ref calendar.Date) *entities.AdminMonth
	Selection(ctx context.Context, userID string) ([]calendar.Date, error)
	ToggleDate(ctx context.Context, userID string, d calendar.Date) (*entities.BookingWindow, bool, error)
	ClearSelection(ctx context.Context, userID string) error
	SubmitDates(ctx context.Context, userID string, dates []calendar.Date) ([]*entities.CalendarDate, error)
	MyDates(ctx context.Context, userID string) ([]*entities.CalendarDate, error)
	AdminMonth(ctx context.Context, ref calendar.Date) (*entities.AdminMonth, error)
	DateDetail(ctx context.Context, d calendar.Date) (*entities.DateDetail, error)
}

// CalendarHandler handles the booking calendar of the signed-in user
type CalendarHandler struct {
	service CalendarService
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(service CalendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// GetWindow handles GET /api/calendar/window
func (h *CalendarHandler) GetWindow(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	window, err := h.service.Window(r.Context(), session.User.ID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, window)
}

// GetMonth handles GET /api/calendar/month?month=YYYY-MM
func (h *CalendarHandler) GetMonth(w http.ResponseWriter, r *http.Request) {
	ref, err := monthParam(r, h.service.Today())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.service.Month(ref))
}

// GetSelection handles GET /api/calendar/selection
func (h *CalendarHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	dates, err := h.service.Selection(r.Context(), session.User.ID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if dates == nil {
		dates = []calendar.Date{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"selected": dates})
}

// ClearSelection handles DELETE /api/calendar/selection
func (h *CalendarHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	if err := h.service.ClearSelection(r.Context(), session.User.ID); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type toggleRequest struct {
	Date string `json:"date"`
}

// ToggleDate handles POST /api/calendar/selection/toggle
func (h *CalendarHandler) ToggleDate(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	d, err := calendar.ParseDate(req.Date)
	if err != nil {
		respondWithAppError(w, r, apperrors.NewFieldValidationError("Please choose a valid date",
			map[string]string{"date": err.Error()}))
		return
	}

	window, selected, err := h.service.ToggleDate(r.Context(), session.User.ID, d)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"date":     d,
		"selected": selected,
		"window":   window,
	})
}

type submitDatesRequest struct {
	UserID string   `json:"userId"`
	Dates  []string `json:"dates"`
}

// maxSubmittedDates bounds the raw list before parsing; duplicates count
const maxSubmittedDates = 64

// SubmitDates handles POST /api/calendar/dates
func (h *CalendarHandler) SubmitDates(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req submitDatesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	userID, err := ownUserID(session, req.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if len(req.Dates) > maxSubmittedDates {
		respondWithAppError(w, r, apperrors.NewValidationError("Too many dates in one request"))
		return
	}

	dates := make([]calendar.Date, 0, len(req.Dates))
	for _, raw := range req.Dates {
		d, err := calendar.ParseDate(raw)
		if err != nil {
			respondWithAppError(w, r, apperrors.NewFieldValidationError("Please choose valid dates",
				map[string]string{"dates": err.Error()}))
			return
		}
		dates = append(dates, d)
	}

	saved, err := h.service.SubmitDates(r.Context(), userID, dates)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"dates":  saved,
		"banner": successBanner("Dates saved successfully"),
	})
}

// MyDates handles GET /api/calendar/dates/mine
func (h *CalendarHandler) MyDates(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	dates, err := h.service.MyDates(r.Context(), session.User.ID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if dates == nil {
		dates = []*entities.CalendarDate{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"dates": dates})
}

// monthParam reads ?month=YYYY-MM, defaulting to the month of today
func monthParam(r *http.Request, today calendar.Date) (calendar.Date, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return today.FirstOfMonth(), nil
	}
	ref, err := calendar.ParseMonth(raw)
	if err != nil {
		return calendar.Date{}, apperrors.NewFieldValidationError("Please choose a valid month",
			map[string]string{"month": err.Error()})
	}
	return ref, nil
}
