package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/workshopbooking/internal/api/middleware"
	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/pkg/calendar"
)

type stubSessions struct {
	session   *entities.Session
	identity  *entities.Identity
	err       error
	signOut   error
	isAdmin   bool
	events    chan *entities.SessionEvent
	signedOut []string
}

func (s *stubSessions) SignIn(ctx context.Context, creds entities.Credentials) (*entities.Session, error) {
	return s.session, s.err
}

func (s *stubSessions) SignUp(ctx context.Context, creds entities.Credentials) (*entities.Identity, error) {
	return s.identity, s.err
}

func (s *stubSessions) Confirm(ctx context.Context, token string) (*entities.Session, error) {
	return s.session, s.err
}

func (s *stubSessions) SignOut(ctx context.Context, session *entities.Session) error {
	s.signedOut = append(s.signedOut, session.User.ID)
	return s.signOut
}

func (s *stubSessions) CurrentUser(ctx context.Context, session *entities.Session) *entities.UserWithRole {
	return &entities.UserWithRole{Identity: session.User, IsAdmin: s.isAdmin}
}

func (s *stubSessions) Subscribe(ctx context.Context, userID string) (<-chan *entities.SessionEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

type stubCalendar struct {
	today     calendar.Date
	window    *entities.BookingWindow
	selected  []calendar.Date
	toggled   bool
	saved     []*entities.CalendarDate
	month     *entities.AdminMonth
	detail    *entities.DateDetail
	err       error
	gotUserID string
	gotDates  []calendar.Date
	gotMonth  calendar.Date
}

func (s *stubCalendar) Today() calendar.Date { return s.today }

func (s *stubCalendar) Window(ctx context.Context, userID string) (*entities.BookingWindow, error) {
	s.gotUserID = userID
	return s.window, s.err
}

func (s *stubCalendar) Month(ref calendar.Date) *entities.AdminMonth {
	s.gotMonth = ref
	return &entities.AdminMonth{Month: ref.String()[:7]}
}

func (s *stubCalendar) Selection(ctx context.Context, userID string) ([]calendar.Date, error) {
	s.gotUserID = userID
	return s.selected, s.err
}

func (s *stubCalendar) ToggleDate(ctx context.Context, userID string, d calendar.Date) (*entities.BookingWindow, bool, error) {
	s.gotUserID = userID
	s.gotDates = []calendar.Date{d}
	return s.window, s.toggled, s.err
}

func (s *stubCalendar) ClearSelection(ctx context.Context, userID string) error {
	s.gotUserID = userID
	return s.err
}

func (s *stubCalendar) SubmitDates(ctx context.Context, userID string, dates []calendar.Date) ([]*entities.CalendarDate, error) {
	s.gotUserID = userID
	s.gotDates = dates
	return s.saved, s.err
}

func (s *stubCalendar) MyDates(ctx context.Context, userID string) ([]*entities.CalendarDate, error) {
	s.gotUserID = userID
	return s.saved, s.err
}

func (s *stubCalendar) AdminMonth(ctx context.Context, ref calendar.Date) (*entities.AdminMonth, error) {
	s.gotMonth = ref
	return s.month, s.err
}

func (s *stubCalendar) DateDetail(ctx context.Context, d calendar.Date) (*entities.DateDetail, error) {
	s.gotDates = []calendar.Date{d}
	return s.detail, s.err
}

type stubUsers struct {
	page      *entities.UserPage
	detail    *entities.UserDetail
	err       error
	gotPage   int
	gotActor  string
	gotUserID string
	gotAdmin  bool
}

func (s *stubUsers) ListUsers(ctx context.Context, page int) (*entities.UserPage, error) {
	s.gotPage = page
	return s.page, s.err
}

func (s *stubUsers) GetUserDetail(ctx context.Context, userID string) (*entities.UserDetail, error) {
	s.gotUserID = userID
	return s.detail, s.err
}

func (s *stubUsers) SetAdmin(ctx context.Context, actorID, userID string, isAdmin bool) error {
	s.gotActor, s.gotUserID, s.gotAdmin = actorID, userID, isAdmin
	return s.err
}

type stubTimeSlots struct {
	opts   *entities.TimeSlotOptions
	slot   *entities.TimeSlot
	err    error
	gotReq entities.BookTimeSlotRequest
}

func (s *stubTimeSlots) Options(start string) (*entities.TimeSlotOptions, error) {
	return s.opts, s.err
}

func (s *stubTimeSlots) Book(ctx context.Context, req entities.BookTimeSlotRequest) (*entities.TimeSlot, error) {
	s.gotReq = req
	return s.slot, s.err
}

func signedIn(req *http.Request, userID string) *http.Request {
	session := &entities.Session{AccessToken: "token-" + userID, User: entities.Identity{ID: userID, Email: userID + "@example.com"}}
	return req.WithContext(middleware.WithSession(req.Context(), session))
}

func withParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func bannerOf(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	banner, ok := body["banner"].(map[string]interface{})
	require.True(t, ok, "response has no banner: %v", body)
	return banner
}
