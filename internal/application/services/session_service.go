package services

import (
	"context"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/internal/domain/providers"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

// SessionState is the outcome of the authenticated gate
type SessionState string

const (
	// SessionLoading means the store has not started; callers show a placeholder
	SessionLoading SessionState = "loading"
	// SessionAuthenticated means a valid session was resolved
	SessionAuthenticated SessionState = "authenticated"
	// SessionAnonymous means there is no valid session
	SessionAnonymous SessionState = "anonymous"
)

// SessionStore owns session resolution and the sign-in lifecycle. It is
// constructed once at startup and passed to whatever needs it.
type SessionStore struct {
	identity   providers.IdentityProvider
	roles      *RoleService
	selections *CalendarService
	bus        providers.EventBus
	validate   *validator.Validate
	started    atomic.Bool
}

// NewSessionStore creates a session store; it resolves nothing until Start
func NewSessionStore(
	identity providers.IdentityProvider,
	roles *RoleService,
	selections *CalendarService,
	bus providers.EventBus,
) *SessionStore {
	return &SessionStore{
		identity:   identity,
		roles:      roles,
		selections: selections,
		bus:        bus,
		validate:   newValidator(),
	}
}

// Start marks the store ready to resolve sessions
func (s *SessionStore) Start(ctx context.Context) error {
	s.started.Store(true)
	log.Ctx(ctx).Info().Msg("session store started")
	return nil
}

// Close stops resolving sessions; requests see the loading state again
func (s *SessionStore) Close() error {
	s.started.Store(false)
	return nil
}

// Started reports whether Start has run
func (s *SessionStore) Started() bool {
	return s.started.Load()
}

// Resolve maps an access token to a gate state. Any failure to resolve the
// token yields anonymous; the error is returned for logging.
func (s *SessionStore) Resolve(ctx context.Context, accessToken string) (SessionState, *entities.Session, error) {
	if !s.Started() {
		return SessionLoading, nil, nil
	}
	if accessToken == "" {
		return SessionAnonymous, nil, nil
	}

	session, err := s.identity.GetSession(ctx, accessToken)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrorTypeUnauthenticated) {
			return SessionAnonymous, nil, nil
		}
		return SessionAnonymous, nil, err
	}
	if session.Expired(timeNow()) {
		return SessionAnonymous, nil, nil
	}
	return SessionAuthenticated, session, nil
}

// SignIn validates the form and exchanges the credentials for a session
func (s *SessionStore) SignIn(ctx context.Context, creds entities.Credentials) (*entities.Session, error) {
	if err := validateCredentials(s.validate, &creds, false); err != nil {
		return nil, err
	}

	session, err := s.identity.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, entities.NewSessionEvent(entities.SessionEventSignedIn, session.User.ID, s.roles.IsAdmin(ctx, session.User.ID)))
	log.Ctx(ctx).Info().Str("user_id", session.User.ID).Msg("user signed in")
	return session, nil
}

// SignUp validates the form and registers a new identity. The identity
// service sends the confirmation email.
func (s *SessionStore) SignUp(ctx context.Context, creds entities.Credentials) (*entities.Identity, error) {
	if err := validateCredentials(s.validate, &creds, true); err != nil {
		return nil, err
	}

	user, err := s.identity.SignUp(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Confirm completes a sign-up from the emailed confirmation token
func (s *SessionStore) Confirm(ctx context.Context, token string) (*entities.Session, error) {
	if token == "" {
		return nil, apperrors.NewFieldValidationError("Confirmation token is required",
			map[string]string{"token": "Confirmation token is required"})
	}

	session, err := s.identity.VerifyEmail(ctx, token)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, entities.NewSessionEvent(entities.SessionEventSignedIn, session.User.ID, s.roles.IsAdmin(ctx, session.User.ID)))
	return session, nil
}

// SignOut tears the session down: the draft selection and cached role are
// dropped and the change is broadcast even when the remote revoke fails, in
// which case the remote error is returned.
func (s *SessionStore) SignOut(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return apperrors.NewUnauthenticatedError("not signed in")
	}

	remoteErr := s.identity.SignOut(ctx, session.AccessToken)
	if remoteErr != nil {
		log.Ctx(ctx).Warn().Err(remoteErr).Str("user_id", session.User.ID).Msg("failed to revoke session remotely")
	}

	userID := session.User.ID
	if s.selections != nil {
		if err := s.selections.ClearSelection(ctx, userID); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("failed to drop draft selection")
		}
	}
	s.roles.Invalidate(ctx, userID)
	s.publish(ctx, entities.NewSessionEvent(entities.SessionEventSignedOut, userID, false))

	return remoteErr
}

// CurrentUser returns the signed-in identity with its admin flag
func (s *SessionStore) CurrentUser(ctx context.Context, session *entities.Session) *entities.UserWithRole {
	return &entities.UserWithRole{
		Identity: session.User,
		IsAdmin:  s.roles.IsAdmin(ctx, session.User.ID),
	}
}

// Subscribe streams the session events of one user until ctx is done
func (s *SessionStore) Subscribe(ctx context.Context, userID string) (<-chan *entities.SessionEvent, error) {
	if s.bus == nil {
		return nil, apperrors.NewInternalError("session events are not configured", nil)
	}
	return s.bus.Subscribe(ctx, providers.GetUserChannel(userID))
}

func (s *SessionStore) publish(ctx context.Context, event *entities.SessionEvent) {
	if s.bus == nil {
		return
	}
	for _, channel := range []string{providers.EventChannelSessions, providers.GetUserChannel(event.UserID)} {
		if err := s.bus.Publish(ctx, channel, event); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("channel", channel).Msg("failed to publish session event")
		}
	}
}
