package entities

import (
	"time"

	"github.com/zatekoja/workshopbooking/pkg/calendar"
)

// TimeSlot is a start/end range a user booked on a date. It is recorded
// independently of CalendarDate.
type TimeSlot struct {
	ID        string        `json:"id" db:"id"`
	UserID    string        `json:"userId" db:"user_id"`
	Date      calendar.Date `json:"date" db:"date"`
	StartTime string        `json:"startTime" db:"start_time"`
	EndTime   string        `json:"endTime" db:"end_time"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
}

// TimeSlotOptions lists the selectable start times and, once a start is
// chosen, the end times allowed after it.
type TimeSlotOptions struct {
	Starts []string          `json:"starts"`
	Ends   []string          `json:"ends"`
	Labels map[string]string `json:"labels,omitempty"` // "14:30" -> "2:30 PM"
}

// BookTimeSlotRequest is the payload of a time-slot booking.
type BookTimeSlotRequest struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}
