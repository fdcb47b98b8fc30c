package entities

// UserRole is a row of user_roles, the single source of truth for the admin
// flag.
type UserRole struct {
	UserID  string `json:"user_id" db:"user_id"`
	IsAdmin bool   `json:"is_admin" db:"is_admin"`
}
