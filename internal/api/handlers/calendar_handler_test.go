package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/workshopbooking/internal/api/handlers"
	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/pkg/calendar"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

func TestCalendarHandler_SubmitDates(t *testing.T) {
	svc := &stubCalendar{saved: []*entities.CalendarDate{
		{UserID: "u-1", Date: calendar.MustParseDate("2024-03-14")},
		{UserID: "u-1", Date: calendar.MustParseDate("2024-03-15")},
		{UserID: "u-1", Date: calendar.MustParseDate("2024-03-16")},
	}}
	handler := handlers.NewCalendarHandler(svc)

	req := jsonRequest(http.MethodPost, "/api/calendar/dates",
		`{"userId":"u-1","dates":["2024-03-14","2024-03-15","2024-03-16"]}`)
	rec := httptest.NewRecorder()
	handler.SubmitDates(rec, signedIn(req, "u-1"))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u-1", svc.gotUserID)
	assert.Equal(t, []calendar.Date{
		calendar.MustParseDate("2024-03-14"),
		calendar.MustParseDate("2024-03-15"),
		calendar.MustParseDate("2024-03-16"),
	}, svc.gotDates)

	body := decodeBody(t, rec)
	dates := body["dates"].([]interface{})
	require.Len(t, dates, 3)
	assert.Equal(t, "2024-03-14", dates[0].(map[string]interface{})["date"])
	assert.Equal(t, "Dates saved successfully", bannerOf(t, body)["message"])
}

func TestCalendarHandler_SubmitDates_DefaultsToCaller(t *testing.T) {
	svc := &stubCalendar{}
	handler := handlers.NewCalendarHandler(svc)

	rec := httptest.NewRecorder()
	handler.SubmitDates(rec, signedIn(jsonRequest(http.MethodPost, "/api/calendar/dates", `{"dates":["2024-03-14"]}`), "u-1"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u-1", svc.gotUserID)
}

func TestCalendarHandler_SubmitDates_RejectsOtherUser(t *testing.T) {
	svc := &stubCalendar{}
	handler := handlers.NewCalendarHandler(svc)

	rec := httptest.NewRecorder()
	handler.SubmitDates(rec, signedIn(jsonRequest(http.MethodPost, "/api/calendar/dates",
		`{"userId":"u-2","dates":["2024-03-14"]}`), "u-1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, svc.gotUserID)
}

func TestCalendarHandler_SubmitDates_RejectsOversizedList(t *testing.T) {
	svc := &stubCalendar{}
	handler := handlers.NewCalendarHandler(svc)

	list := strings.TrimSuffix(strings.Repeat(`"2024-03-14",`, 65), ",")
	rec := httptest.NewRecorder()
	handler.SubmitDates(rec, signedIn(jsonRequest(http.MethodPost, "/api/calendar/dates",
		`{"dates":[`+list+`]}`), "u-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.gotDates)
}

func TestCalendarHandler_SubmitDates_InvalidDate(t *testing.T) {
	handler := handlers.NewCalendarHandler(&stubCalendar{})

	rec := httptest.NewRecorder()
	handler.SubmitDates(rec, signedIn(jsonRequest(http.MethodPost, "/api/calendar/dates",
		`{"dates":["2024-03-14T00:00:00Z"]}`), "u-1"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["fields"], "dates")
}

func TestCalendarHandler_SubmitDates_WriteFailure(t *testing.T) {
	svc := &stubCalendar{err: apperrors.NewNetworkError("Failed to save dates", assert.AnError)}
	handler := handlers.NewCalendarHandler(svc)

	rec := httptest.NewRecorder()
	handler.SubmitDates(rec, signedIn(jsonRequest(http.MethodPost, "/api/calendar/dates", `{"dates":["2024-03-14"]}`), "u-1"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	banner := bannerOf(t, decodeBody(t, rec))
	assert.Equal(t, "network", banner["kind"])
	assert.Contains(t, banner["message"], "Failed to save dates")
}

func TestCalendarHandler_ToggleDate(t *testing.T) {
	svc := &stubCalendar{toggled: true, window: &entities.BookingWindow{Max: 6}}
	handler := handlers.NewCalendarHandler(svc)

	rec := httptest.NewRecorder()
	handler.ToggleDate(rec, signedIn(jsonRequest(http.MethodPost, "/api/calendar/selection/toggle", `{"date":"2024-03-14"}`), "u-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []calendar.Date{calendar.MustParseDate("2024-03-14")}, svc.gotDates)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["selected"])
	assert.Equal(t, "2024-03-14", body["date"])
}

func TestCalendarHandler_ToggleDate_CapReached(t *testing.T) {
	svc := &stubCalendar{err: apperrors.NewValidationError("Maximum 6 days can be selected")}
	handler := handlers.NewCalendarHandler(svc)

	rec := httptest.NewRecorder()
	handler.ToggleDate(rec, signedIn(jsonRequest(http.MethodPost, "/api/calendar/selection/toggle", `{"date":"2024-03-22"}`), "u-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Maximum 6 days can be selected", body["error"])
	assert.Equal(t, "validation", bannerOf(t, body)["kind"])
}

func TestCalendarHandler_GetSelection_EmptyIsArray(t *testing.T) {
	handler := handlers.NewCalendarHandler(&stubCalendar{})

	rec := httptest.NewRecorder()
	handler.GetSelection(rec, signedIn(httptest.NewRequest(http.MethodGet, "/api/calendar/selection", nil), "u-1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"selected":[]}`, rec.Body.String())
}

func TestCalendarHandler_ClearSelection(t *testing.T) {
	svc := &stubCalendar{}
	handler := handlers.NewCalendarHandler(svc)

	rec := httptest.NewRecorder()
	handler.ClearSelection(rec, signedIn(httptest.NewRequest(http.MethodDelete, "/api/calendar/selection", nil), "u-1"))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u-1", svc.gotUserID)
}

func TestCalendarHandler_GetMonth(t *testing.T) {
	svc := &stubCalendar{today: calendar.MustParseDate("2024-03-13")}
	handler := handlers.NewCalendarHandler(svc)

	rec := httptest.NewRecorder()
	handler.GetMonth(rec, httptest.NewRequest(http.MethodGet, "/api/calendar/month", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-03-01", svc.gotMonth.String())

	rec = httptest.NewRecorder()
	handler.GetMonth(rec, httptest.NewRequest(http.MethodGet, "/api/calendar/month?month=2024-07", nil))
	assert.Equal(t, "2024-07-01", svc.gotMonth.String())

	rec = httptest.NewRecorder()
	handler.GetMonth(rec, httptest.NewRequest(http.MethodGet, "/api/calendar/month?month=July", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
