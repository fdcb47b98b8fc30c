package repositories

import (
	"context"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/pkg/calendar"
)

// CalendarDateRepository defines the interface for calendar_dates operations
type CalendarDateRepository interface {
	// CreateMany inserts one row per date in a single statement
	CreateMany(ctx context.Context, dates []*entities.CalendarDate) error

	// ListByUser retrieves the dates a user claimed
	ListByUser(ctx context.Context, userID string) ([]*entities.CalendarDate, error)

	// CountByRange counts claims per date between from and to inclusive
	CountByRange(ctx context.Context, from, to calendar.Date) ([]entities.DateCount, error)

	// UsersByDate calls the get_users_by_date procedure
	UsersByDate(ctx context.Context, date calendar.Date) ([]*entities.DateAttendee, error)
}

// TimeSlotRepository defines the interface for time_slots operations
type TimeSlotRepository interface {
	// Create inserts a time slot
	Create(ctx context.Context, slot *entities.TimeSlot) error

	// ListByUser retrieves a user's slots
	ListByUser(ctx context.Context, userID string) ([]*entities.TimeSlot, error)

	// ListByDate retrieves every slot on one date
	ListByDate(ctx context.Context, date calendar.Date) ([]*entities.TimeSlot, error)
}

// RoleRepository defines the interface for user_roles operations
type RoleRepository interface {
	// IsAdmin returns the admin flag of a user; false when no row exists
	IsAdmin(ctx context.Context, userID string) (bool, error)

	// GetByUserIDs returns the roles of the given users keyed by user id
	GetByUserIDs(ctx context.Context, userIDs []string) (map[string]*entities.UserRole, error)

	// Upsert creates or updates a role row
	Upsert(ctx context.Context, role *entities.UserRole) error
}
