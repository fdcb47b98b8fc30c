package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/zatekoja/workshopbooking/internal/api/middleware"
	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

// SessionService defines the session operations used by the auth handlers.
type SessionService interface {
	SignIn(ctx context.Context, creds entities.Credentials) (*entities.Session, error)
	SignUp(ctx context.Context, creds entities.Credentials) (*entities.Identity, error)
	Confirm(ctx context.Context, token string) (*entities.Session, error)
	SignOut(ctx context.Context, session *entities.Session) error
	CurrentUser(ctx context.Context, session *entities.Session) *entities.UserWithRole
	Subscribe(ctx context.Context, userID string) (<-chan *entities.SessionEvent, error)
}

// AuthHandler handles sign-in, sign-up and the current user.
type AuthHandler struct {
	sessions      SessionService
	secureCookies bool
}

// NewAuthHandler creates a new auth handler. secureCookies marks the access
// token cookie Secure.
func NewAuthHandler(sessions SessionService, secureCookies bool) *AuthHandler {
	return &AuthHandler{sessions: sessions, secureCookies: secureCookies}
}

type sessionResponse struct {
	User        *entities.UserWithRole `json:"user"`
	AccessToken string                 `json:"accessToken"`
	ExpiresAt   time.Time              `json:"expiresAt"`
	Redirect    string                 `json:"redirect"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds entities.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	session, err := h.sessions.SignIn(r.Context(), creds)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	h.setSessionCookie(w, session)
	respondWithJSON(w, http.StatusOK, sessionResponse{
		User:        h.sessions.CurrentUser(r.Context(), session),
		AccessToken: session.AccessToken,
		ExpiresAt:   session.ExpiresAt,
		Redirect:    middleware.DashboardPath,
	})
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var creds entities.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	user, err := h.sessions.SignUp(r.Context(), creds)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"user":     user,
		"redirect": middleware.LoginPath,
		"banner":   successBanner("Registration successful. Please check your email to confirm your account."),
	})
}

type confirmRequest struct {
	Token string `json:"token"`
}

// Confirm handles POST /api/auth/confirm
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	session, err := h.sessions.Confirm(r.Context(), req.Token)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	h.setSessionCookie(w, session)
	respondWithJSON(w, http.StatusOK, sessionResponse{
		User:        h.sessions.CurrentUser(r.Context(), session),
		AccessToken: session.AccessToken,
		ExpiresAt:   session.ExpiresAt,
		Redirect:    middleware.DashboardPath,
	})
}

// Logout handles POST /api/auth/logout. The local session is always torn
// down; a failed remote revoke only downgrades the banner to a warning.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	err := h.sessions.SignOut(r.Context(), session)
	h.clearSessionCookie(w)

	banner := successBanner("You have been signed out.")
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("remote sign-out failed")
		banner = Banner{Kind: "network", Message: apperrors.MessageOf(err), Dismissible: true, Tone: ToneWarning}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"redirect": middleware.LoginPath,
		"banner":   banner,
	})
}

// CurrentUser handles GET /api/auth/user
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, h.sessions.CurrentUser(r.Context(), session))
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *entities.Session) {
	cookie := &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    session.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if !session.ExpiresAt.IsZero() {
		cookie.Expires = session.ExpiresAt
	}
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// requireSession returns the session the gate attached, answering 401 when
// the handler was mounted without one.
func requireSession(w http.ResponseWriter, r *http.Request) (*entities.Session, bool) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondWithAppError(w, r, apperrors.NewUnauthenticatedError("Please sign in to continue"))
		return nil, false
	}
	return session, true
}

// ownUserID checks that a payload userId, when present, names the caller.
func ownUserID(session *entities.Session, userID string) (string, error) {
	if userID == "" || userID == session.User.ID {
		return session.User.ID, nil
	}
	return "", apperrors.NewAuthorizationError("You can only book for your own account")
}
