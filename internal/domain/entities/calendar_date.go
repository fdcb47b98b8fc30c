package entities

import (
	"time"

	"github.com/zatekoja/workshopbooking/pkg/calendar"
)

// CalendarDate is one reservation-date claim by one user. Rows are only ever
// inserted; several users may claim the same date.
type CalendarDate struct {
	UserID    string        `json:"user_id" db:"user_id"`
	Date      calendar.Date `json:"date" db:"date"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// DateCount is the number of claims on one date.
type DateCount struct {
	Date  calendar.Date `json:"date"`
	Count int           `json:"count"`
}

// DateAttendee is a row returned by get_users_by_date.
type DateAttendee struct {
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
