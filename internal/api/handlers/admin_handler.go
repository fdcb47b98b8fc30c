package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/pkg/calendar"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

// UserService defines the user administration operations used by the handlers.
type UserService interface {
	ListUsers(ctx context.Context, page int) (*entities.UserPage, error)
	GetUserDetail(ctx context.Context, userID string) (*entities.UserDetail, error)
	SetAdmin(ctx context.Context, actorID, userID string, isAdmin bool) error
}

// AdminHandler handles the admin user list and calendar
type AdminHandler struct {
	users    UserService
	calendar CalendarService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(users UserService, calendar CalendarService) *AdminHandler {
	return &AdminHandler{users: users, calendar: calendar}
}

// ListUsers handles GET /api/admin/users?page=N
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid page parameter")
			return
		}
		page = parsed
	}

	result, err := h.users.ListUsers(r.Context(), page)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GetUser handles GET /api/admin/users/{userId}
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	detail, err := h.users.GetUserDetail(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, detail)
}

type setRoleRequest struct {
	IsAdmin *bool `json:"isAdmin"`
}

// SetRole handles PATCH /api/admin/users/{userId}/role
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	userID := chi.URLParam(r, "userId")

	var req setRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if req.IsAdmin == nil {
		respondWithAppError(w, r, apperrors.NewFieldValidationError("isAdmin is required",
			map[string]string{"isAdmin": "isAdmin is required"}))
		return
	}

	if err := h.users.SetAdmin(r.Context(), session.User.ID, userID, *req.IsAdmin); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"userId":  userID,
		"isAdmin": *req.IsAdmin,
		"banner":  successBanner("Role updated"),
	})
}

// GetCalendar handles GET /api/admin/calendar?month=YYYY-MM
func (h *AdminHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ref, err := monthParam(r, h.calendar.Today())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	month, err := h.calendar.AdminMonth(r.Context(), ref)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, month)
}

// GetDate handles GET /api/admin/calendar/{date}
func (h *AdminHandler) GetDate(w http.ResponseWriter, r *http.Request) {
	d, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		respondWithAppError(w, r, apperrors.NewFieldValidationError("Please choose a valid date",
			map[string]string{"date": err.Error()}))
		return
	}

	detail, err := h.calendar.DateDetail(r.Context(), d)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, detail)
}
