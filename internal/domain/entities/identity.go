package entities

import (
	"time"
)

// Identity is a user account owned by the identity service. It is read-only
// here; the admin flag lives in user_roles and is looked up separately.
type Identity struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName"`
	EmailVerified bool      `json:"emailVerified"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UserWithRole pairs an identity with its admin flag for the admin views.
type UserWithRole struct {
	Identity
	IsAdmin bool `json:"isAdmin"`
}

// Session is the identity service's representation of a signed-in user.
type Session struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         Identity  `json:"user"`
}

// Expired reports whether the access token is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Credentials are the sign-in / sign-up form values.
type Credentials struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

// UserPage is one page of the admin user list.
type UserPage struct {
	Users   []UserWithRole `json:"users"`
	Page    int            `json:"page"`
	PerPage int            `json:"perPage"`
	HasNext bool           `json:"hasNext"`
}
