package entities

import (
	"github.com/zatekoja/workshopbooking/pkg/calendar"
)

// DetailState tells a detail view whether it has content to show.
type DetailState string

const (
	DetailStateReady DetailState = "ready"
	DetailStateEmpty DetailState = "empty"
)

// NoDateDetailsMessage is shown for a date nobody claimed.
const NoDateDetailsMessage = "No details available for this date."

// DateDetail is the admin view of one date: who claimed it and the slots
// they booked that day.
type DateDetail struct {
	Date      calendar.Date    `json:"date"`
	State     DetailState      `json:"state"`
	Message   string           `json:"message,omitempty"`
	Attendees []DateAttendance `json:"attendees"`
}

// DateAttendance is one user's claim on a date. User is nil when the identity
// service no longer knows the id.
type DateAttendance struct {
	UserID    string     `json:"userId"`
	User      *Identity  `json:"user,omitempty"`
	ClaimedAt string     `json:"claimedAt"`
	TimeSlots []TimeSlot `json:"timeSlots"`
}

// UserDetail is the admin view of one user.
type UserDetail struct {
	User      UserWithRole   `json:"user"`
	Dates     []CalendarDate `json:"dates"`
	TimeSlots []TimeSlot     `json:"timeSlots"`
}

// AdminMonth is the admin calendar for one month.
type AdminMonth struct {
	Title  string                 `json:"title"`
	Month  string                 `json:"month"`
	Cells  []calendar.MonthCell   `json:"cells"`
	Weeks  [][]calendar.MonthCell `json:"weeks"`
	Counts map[string]int         `json:"counts"`
	Today  calendar.Date          `json:"today"`
}

// BookingWindow is the user calendar: the two-week window and the current
// draft selection.
type BookingWindow struct {
	Title     string          `json:"title"`
	Days      []calendar.Day  `json:"days"`
	Selected  []calendar.Date `json:"selected"`
	Max       int             `json:"max"`
	CanSubmit bool            `json:"canSubmit"`
}
