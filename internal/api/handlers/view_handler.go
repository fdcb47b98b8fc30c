package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zatekoja/workshopbooking/internal/api/middleware"
	"github.com/zatekoja/workshopbooking/pkg/calendar"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

// View names returned in the "view" field of every page model
const (
	ViewLogin         = "login"
	ViewRegister      = "register"
	ViewConfirm       = "confirm"
	ViewDashboard     = "dashboard"
	ViewCalendar      = "calendar"
	ViewAdminUsers    = "admin_users"
	ViewAdminUser     = "admin_user"
	ViewAdminCalendar = "admin_calendar"
	ViewAdminDate     = "admin_date"
)

type link struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// ViewHandler renders the page models behind each route. Pages never fail
// outright: a fetch error renders the page in its error state with a banner.
type ViewHandler struct {
	sessions  SessionService
	calendar  CalendarService
	users     UserService
	timeSlots TimeSlotService
}

// NewViewHandler creates a new view handler
func NewViewHandler(sessions SessionService, calendar CalendarService, users UserService, timeSlots TimeSlotService) *ViewHandler {
	return &ViewHandler{sessions: sessions, calendar: calendar, users: users, timeSlots: timeSlots}
}

// Root handles GET /
func (h *ViewHandler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, middleware.DashboardPath, http.StatusSeeOther)
}

// Login handles GET /login
func (h *ViewHandler) Login(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"view":   ViewLogin,
		"fields": []string{"email", "password"},
		"links":  []link{{Label: "Create an account", Path: "/register"}},
	})
}

// Register handles GET /register
func (h *ViewHandler) Register(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"view":   ViewRegister,
		"fields": []string{"email", "password", "confirmPassword"},
		"links":  []link{{Label: "Already have an account? Sign in", Path: middleware.LoginPath}},
	})
}

// Confirm handles GET /confirm?token=...
func (h *ViewHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"view":  ViewConfirm,
		"token": r.URL.Query().Get("token"),
	})
}

// Dashboard handles GET /dashboard
func (h *ViewHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	user := h.sessions.CurrentUser(r.Context(), session)
	links := []link{{Label: "Book workshop dates", Path: "/calendar"}}
	if user.IsAdmin {
		links = append(links,
			link{Label: "Manage users", Path: "/admin/users"},
			link{Label: "Reservations calendar", Path: "/admin/calendar"},
		)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"view":  ViewDashboard,
		"user":  user,
		"links": links,
	})
}

// Calendar handles GET /calendar
func (h *ViewHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	window, err := h.calendar.Window(r.Context(), session.User.ID)
	if err != nil {
		renderViewError(w, r, ViewCalendar, err)
		return
	}
	opts, err := h.timeSlots.Options("")
	if err != nil {
		renderViewError(w, r, ViewCalendar, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"view":      ViewCalendar,
		"state":     "ready",
		"window":    window,
		"timeSlots": opts,
	})
}

// AdminUsers handles GET /admin/users
func (h *ViewHandler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	result, err := h.users.ListUsers(r.Context(), page)
	if err != nil {
		renderViewError(w, r, ViewAdminUsers, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"view":  ViewAdminUsers,
		"state": "ready",
		"page":  result,
	})
}

// AdminUser handles GET /admin/users/{userId}
func (h *ViewHandler) AdminUser(w http.ResponseWriter, r *http.Request) {
	detail, err := h.users.GetUserDetail(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		renderViewError(w, r, ViewAdminUser, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"view":   ViewAdminUser,
		"state":  "ready",
		"detail": detail,
	})
}

// AdminCalendar handles GET /admin/calendar
func (h *ViewHandler) AdminCalendar(w http.ResponseWriter, r *http.Request) {
	ref, err := monthParam(r, h.calendar.Today())
	if err != nil {
		renderViewError(w, r, ViewAdminCalendar, err)
		return
	}

	month, err := h.calendar.AdminMonth(r.Context(), ref)
	if err != nil {
		renderViewError(w, r, ViewAdminCalendar, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"view":  ViewAdminCalendar,
		"state": "ready",
		"month": month,
	})
}

// AdminDate handles GET /admin/calendar/{date}
func (h *ViewHandler) AdminDate(w http.ResponseWriter, r *http.Request) {
	d, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		renderViewError(w, r, ViewAdminDate, apperrors.NewFieldValidationError("Please choose a valid date",
			map[string]string{"date": err.Error()}))
		return
	}

	detail, err := h.calendar.DateDetail(r.Context(), d)
	if err != nil {
		renderViewError(w, r, ViewAdminDate, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"view":   ViewAdminDate,
		"state":  string(detail.State),
		"detail": detail,
	})
}

// renderViewError renders a page in its error state. The status still
// reflects the error kind.
func renderViewError(w http.ResponseWriter, r *http.Request, view string, err error) {
	status, body := errorBody(r, err)
	respondWithJSON(w, status, viewError{View: view, State: "error", errorResponse: body})
}

type viewError struct {
	View  string `json:"view"`
	State string `json:"state"`
	errorResponse
}
