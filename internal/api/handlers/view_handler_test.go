package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/workshopbooking/internal/api/handlers"
	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/pkg/calendar"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

func newViewHandler(sessions *stubSessions, cal *stubCalendar, users *stubUsers) *handlers.ViewHandler {
	return handlers.NewViewHandler(sessions, cal, users, &stubTimeSlots{opts: &entities.TimeSlotOptions{Starts: []string{"14:00"}, Ends: []string{}}})
}

func TestViewHandler_Root(t *testing.T) {
	rec := httptest.NewRecorder()
	newViewHandler(&stubSessions{}, &stubCalendar{}, &stubUsers{}).Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestViewHandler_Dashboard_AdminLinks(t *testing.T) {
	tests := []struct {
		name      string
		isAdmin   bool
		wantLinks int
	}{
		{name: "member", isAdmin: false, wantLinks: 1},
		{name: "admin", isAdmin: true, wantLinks: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newViewHandler(&stubSessions{isAdmin: tt.isAdmin}, &stubCalendar{}, &stubUsers{})
			rec := httptest.NewRecorder()
			h.Dashboard(rec, signedIn(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "u-1"))

			require.Equal(t, http.StatusOK, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, handlers.ViewDashboard, body["view"])
			assert.Len(t, body["links"], tt.wantLinks)
		})
	}
}

func TestViewHandler_Calendar(t *testing.T) {
	cal := &stubCalendar{window: &entities.BookingWindow{Title: "March 2024", Max: 6}}
	rec := httptest.NewRecorder()
	newViewHandler(&stubSessions{}, cal, &stubUsers{}).Calendar(rec, signedIn(httptest.NewRequest(http.MethodGet, "/calendar", nil), "u-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", cal.gotUserID)
	body := decodeBody(t, rec)
	assert.Equal(t, "ready", body["state"])
	assert.Equal(t, "March 2024", body["window"].(map[string]interface{})["title"])
}

func TestViewHandler_Calendar_FetchErrorRendersErrorState(t *testing.T) {
	cal := &stubCalendar{err: apperrors.NewNetworkError("Failed to load your selection", assert.AnError)}
	rec := httptest.NewRecorder()
	newViewHandler(&stubSessions{}, cal, &stubUsers{}).Calendar(rec, signedIn(httptest.NewRequest(http.MethodGet, "/calendar", nil), "u-1"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, handlers.ViewCalendar, body["view"])
	assert.Equal(t, "error", body["state"])
	banner := bannerOf(t, body)
	assert.Equal(t, "network", banner["kind"])
	assert.Equal(t, true, banner["dismissible"])
}

func TestViewHandler_AdminDate_NoRows(t *testing.T) {
	cal := &stubCalendar{detail: &entities.DateDetail{
		Date:      calendar.MustParseDate("2024-03-15"),
		State:     entities.DetailStateEmpty,
		Message:   entities.NoDateDetailsMessage,
		Attendees: []entities.DateAttendance{},
	}}
	rec := httptest.NewRecorder()
	req := withParams(httptest.NewRequest(http.MethodGet, "/admin/calendar/2024-03-15", nil), "date", "2024-03-15")
	newViewHandler(&stubSessions{}, cal, &stubUsers{}).AdminDate(rec, signedIn(req, "u-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, calendar.MustParseDate("2024-03-15"), cal.gotDates[0])
	body := decodeBody(t, rec)
	assert.Equal(t, handlers.ViewAdminDate, body["view"])
	assert.Equal(t, "empty", body["state"])
	assert.Equal(t, "No details available for this date.", body["detail"].(map[string]interface{})["message"])
}

func TestViewHandler_AdminUsers(t *testing.T) {
	users := &stubUsers{page: &entities.UserPage{Page: 1, PerPage: 20, Users: []entities.UserWithRole{}}}
	rec := httptest.NewRecorder()
	newViewHandler(&stubSessions{}, &stubCalendar{}, users).AdminUsers(rec, httptest.NewRequest(http.MethodGet, "/admin/users?page=3", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, users.gotPage)
	assert.Equal(t, handlers.ViewAdminUsers, decodeBody(t, rec)["view"])
}

func TestViewHandler_PublicViews(t *testing.T) {
	h := newViewHandler(&stubSessions{}, &stubCalendar{}, &stubUsers{})

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodGet, "/register", nil))
	assert.Equal(t, handlers.ViewRegister, decodeBody(t, rec)["view"])

	rec = httptest.NewRecorder()
	h.Confirm(rec, httptest.NewRequest(http.MethodGet, "/confirm?token=abc", nil))
	body := decodeBody(t, rec)
	assert.Equal(t, handlers.ViewConfirm, body["view"])
	assert.Equal(t, "abc", body["token"])
}
