package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/zatekoja/workshopbooking/internal/application/services"
	"github.com/zatekoja/workshopbooking/internal/domain/entities"
)

// AccessTokenCookie carries the access token for browser clients
const AccessTokenCookie = "access_token"

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

type sessionKey struct{}

// SessionResolver maps an access token to a gate state
type SessionResolver interface {
	Resolve(ctx context.Context, accessToken string) (services.SessionState, *entities.Session, error)
}

// RoleChecker answers the admin question; it must deny on any failure
type RoleChecker interface {
	IsAdmin(ctx context.Context, userID string) bool
}

// WithSession attaches a resolved session to ctx
func WithSession(ctx context.Context, session *entities.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session attached by RequireSession
func SessionFromContext(ctx context.Context) (*entities.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(*entities.Session)
	return session, ok && session != nil
}

// AccessToken reads the bearer token, falling back to the session cookie
func AccessToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func writeGateJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// deny redirects views and answers API calls with status
func deny(w http.ResponseWriter, r *http.Request, status int, location, message string) {
	if isAPI(r) {
		writeGateJSON(w, status, map[string]interface{}{"error": message})
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// RequireSession is the authenticated gate. Until the store has started it
// answers with a loading placeholder; anonymous callers go to the login page.
func RequireSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state, session, err := resolver.Resolve(r.Context(), AccessToken(r))
			if err != nil {
				hlog.FromRequest(r).Warn().Err(err).Msg("failed to resolve session")
			}

			switch state {
			case services.SessionLoading:
				w.Header().Set("Retry-After", "1")
				writeGateJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"view": "loading"})
			case services.SessionAuthenticated:
				next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
			default:
				deny(w, r, http.StatusUnauthorized, LoginPath, "authentication required")
			}
		})
	}
}

// RequireAdmin is the admin gate; it must be mounted inside RequireSession.
// Only an explicit true from the role lookup lets the request through.
func RequireAdmin(roles RoleChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				deny(w, r, http.StatusUnauthorized, LoginPath, "authentication required")
				return
			}
			if !roles.IsAdmin(r.Context(), session.User.ID) {
				hlog.FromRequest(r).Info().Str("user_id", session.User.ID).Msg("admin access denied")
				deny(w, r, http.StatusForbidden, DashboardPath, "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectIfAuthenticated sends signed-in users from the auth forms to the
// dashboard
func RedirectIfAuthenticated(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := AccessToken(r)
			if token != "" {
				if state, _, _ := resolver.Resolve(r.Context(), token); state == services.SessionAuthenticated {
					http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
