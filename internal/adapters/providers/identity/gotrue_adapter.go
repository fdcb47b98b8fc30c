package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/internal/domain/providers"
	"github.com/zatekoja/workshopbooking/pkg/config"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

var timeNow = time.Now

// GoTrueAdapter implements IdentityProvider against a GoTrue-compatible
// REST API. Access tokens are verified locally when a JWT secret is set.
type GoTrueAdapter struct {
	baseURL        string
	anonKey        string
	serviceRoleKey string
	jwtSecret      []byte
	audience       string
	client         *http.Client
}

// NewGoTrueAdapter creates a new identity adapter
func NewGoTrueAdapter(cfg *config.IdentityConfig) providers.IdentityProvider {
	return &GoTrueAdapter{
		baseURL:        strings.TrimRight(cfg.URL, "/"),
		anonKey:        cfg.AnonKey,
		serviceRoleKey: cfg.ServiceRoleKey,
		jwtSecret:      []byte(cfg.JWTSecret),
		audience:       cfg.JWTAudience,
		client:         &http.Client{Timeout: cfg.Timeout},
	}
}

type gotrueUser struct {
	ID               string                 `json:"id"`
	Email            string                 `json:"email"`
	EmailConfirmedAt *time.Time             `json:"email_confirmed_at"`
	BannedUntil      *time.Time             `json:"banned_until"`
	CreatedAt        time.Time              `json:"created_at"`
	UserMetadata     map[string]interface{} `json:"user_metadata"`
}

type gotrueSession struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"`
	ExpiresAt    int64      `json:"expires_at"`
	User         gotrueUser `json:"user"`
}

type gotrueError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e gotrueError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// claims are the GoTrue access-token claims this service reads
type claims struct {
	Email         string                 `json:"email"`
	EmailVerified *bool                  `json:"email_verified,omitempty"`
	UserMetadata  map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// emailVerified reads the top-level claim, falling back to the copy
// GoTrue keeps in user_metadata. Absent means unverified.
func (c *claims) emailVerified() bool {
	if c.EmailVerified != nil {
		return *c.EmailVerified
	}
	v, _ := c.UserMetadata["email_verified"].(bool)
	return v
}

// SignIn exchanges email and password for a session
func (a *GoTrueAdapter) SignIn(ctx context.Context, email, password string) (*entities.Session, error) {
	var out gotrueSession
	body := map[string]string{"email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/token?grant_type=password", a.anonKey, body, &out); err != nil {
		return nil, err
	}
	return toSession(&out), nil
}

// SignUp registers a new identity
func (a *GoTrueAdapter) SignUp(ctx context.Context, email, password string) (*entities.Identity, error) {
	// Depending on the autoconfirm setting the response is either a user or
	// a session wrapping the user.
	var out struct {
		gotrueUser
		User *gotrueUser `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/signup", a.anonKey, body, &out); err != nil {
		return nil, err
	}
	if out.User != nil {
		return toIdentity(out.User), nil
	}
	return toIdentity(&out.gotrueUser), nil
}

// SignOut revokes the session behind accessToken
func (a *GoTrueAdapter) SignOut(ctx context.Context, accessToken string) error {
	return a.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

// GetSession resolves an access token, locally when a JWT secret is
// configured and through GET /user otherwise
func (a *GoTrueAdapter) GetSession(ctx context.Context, accessToken string) (*entities.Session, error) {
	if accessToken == "" {
		return nil, apperrors.NewUnauthenticatedError("missing access token")
	}
	if len(a.jwtSecret) > 0 {
		return a.verifyToken(accessToken)
	}

	var user gotrueUser
	if err := a.do(ctx, http.MethodGet, "/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &entities.Session{AccessToken: accessToken, User: *toIdentity(&user)}, nil
}

func (a *GoTrueAdapter) verifyToken(accessToken string) (*entities.Session, error) {
	parsed := &claims{}
	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(timeNow),
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	_, err := jwt.ParseWithClaims(accessToken, parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	}, opts...)
	if err != nil {
		return nil, apperrors.NewUnauthenticatedError("invalid or expired session")
	}
	if parsed.Subject == "" {
		return nil, apperrors.NewUnauthenticatedError("token has no subject")
	}

	// Tokens carry no ban state. GoTrue stops issuing and refreshing them
	// for banned users, so a valid token means active until it expires.
	session := &entities.Session{
		AccessToken: accessToken,
		User: entities.Identity{
			ID:            parsed.Subject,
			Email:         parsed.Email,
			DisplayName:   displayName(parsed.UserMetadata, parsed.Email),
			EmailVerified: parsed.emailVerified(),
			IsActive:      true,
		},
	}
	if parsed.ExpiresAt != nil {
		session.ExpiresAt = parsed.ExpiresAt.Time
	}
	if parsed.IssuedAt != nil {
		session.User.CreatedAt = parsed.IssuedAt.Time
	}
	return session, nil
}

// GetUserByID looks up one identity with the service role key
func (a *GoTrueAdapter) GetUserByID(ctx context.Context, id string) (*entities.Identity, error) {
	var user gotrueUser
	if err := a.do(ctx, http.MethodGet, "/admin/users/"+url.PathEscape(id), a.serviceRoleKey, nil, &user); err != nil {
		return nil, err
	}
	return toIdentity(&user), nil
}

// ListUsers returns one page (1-based) of identities
func (a *GoTrueAdapter) ListUsers(ctx context.Context, page, perPage int) ([]entities.Identity, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var out struct {
		Users []gotrueUser `json:"users"`
	}
	if err := a.do(ctx, http.MethodGet, "/admin/users?"+q.Encode(), a.serviceRoleKey, nil, &out); err != nil {
		return nil, err
	}

	users := make([]entities.Identity, 0, len(out.Users))
	for i := range out.Users {
		users = append(users, *toIdentity(&out.Users[i]))
	}
	return users, nil
}

// VerifyEmail confirms a sign-up with the token from the confirmation link
func (a *GoTrueAdapter) VerifyEmail(ctx context.Context, token string) (*entities.Session, error) {
	var out gotrueSession
	body := map[string]string{"type": "signup", "token": token}
	if err := a.do(ctx, http.MethodPost, "/verify", a.anonKey, body, &out); err != nil {
		return nil, err
	}
	return toSession(&out), nil
}

func (a *GoTrueAdapter) do(ctx context.Context, method, path, bearer string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError("failed to encode identity request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return apperrors.NewInternalError("failed to build identity request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.anonKey != "" {
		req.Header.Set("apikey", a.anonKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return apperrors.NewNetworkError("identity service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var remote gotrueError
		_ = json.NewDecoder(resp.Body).Decode(&remote)
		return statusError(resp.StatusCode, remote.text())
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewNetworkError("invalid identity service response", err)
	}
	return nil
}

func statusError(status int, msg string) error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.NewUnauthenticatedError(msg)
	case status == http.StatusNotFound:
		return apperrors.NewNotFoundError(msg)
	case status == http.StatusConflict:
		return apperrors.NewConflictError(msg)
	case status >= 400 && status < 500:
		return apperrors.NewValidationError(msg)
	default:
		return apperrors.NewNetworkError("identity service error", fmt.Errorf("status %d: %s", status, msg))
	}
}

func toSession(s *gotrueSession) *entities.Session {
	session := &entities.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		User:         *toIdentity(&s.User),
	}
	switch {
	case s.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(s.ExpiresAt, 0)
	case s.ExpiresIn > 0:
		session.ExpiresAt = timeNow().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return session
}

func toIdentity(u *gotrueUser) *entities.Identity {
	return &entities.Identity{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   displayName(u.UserMetadata, u.Email),
		EmailVerified: u.EmailConfirmedAt != nil,
		IsActive:      u.BannedUntil == nil || !u.BannedUntil.After(timeNow()),
		CreatedAt:     u.CreatedAt,
	}
}

// displayName prefers the name fields sign-up forms store in user metadata
func displayName(meta map[string]interface{}, email string) string {
	for _, key := range []string{"display_name", "full_name", "name"} {
		if v, ok := meta[key].(string); ok && v != "" {
			return v
		}
	}
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
