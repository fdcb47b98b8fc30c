package providers

import (
	"context"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
)

// IdentityProvider defines the interface for the hosted identity service
// (sign-in, sign-up, sessions and the admin user directory).
type IdentityProvider interface {
	// SignIn exchanges email and password for a session
	SignIn(ctx context.Context, email, password string) (*entities.Session, error)

	// SignUp registers a new identity; the identity service sends the
	// confirmation email
	SignUp(ctx context.Context, email, password string) (*entities.Identity, error)

	// SignOut revokes the session behind accessToken
	SignOut(ctx context.Context, accessToken string) error

	// GetSession resolves an access token into the session it belongs to
	GetSession(ctx context.Context, accessToken string) (*entities.Session, error)

	// GetUserByID looks up one identity
	GetUserByID(ctx context.Context, id string) (*entities.Identity, error)

	// ListUsers returns one page (1-based) of identities
	ListUsers(ctx context.Context, page, perPage int) ([]entities.Identity, error)

	// VerifyEmail confirms a sign-up with the token from the confirmation link
	VerifyEmail(ctx context.Context, token string) (*entities.Session, error)
}
