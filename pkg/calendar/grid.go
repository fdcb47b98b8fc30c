// Package calendar holds the date arithmetic behind the booking views: the
// month grid of the admin calendar, the rolling two-week window users pick
// from, the bounded date selection and the bookable time options.
//
// Nothing here reads the clock. Callers pass "today" explicitly.
package calendar

import (
	"fmt"
	"time"
)

// WindowDays is the length of the bookable window.
const WindowDays = 14

// SelectableRule decides which weekdays of the window can be booked.
type SelectableRule string

const (
	// RuleThuFriSat allows every Thursday, Friday and Saturday.
	RuleThuFriSat SelectableRule = "thu-fri-sat"
	// RuleThuFriSatExceptFirstSaturday also blocks a Saturday in the first
	// seven days of its month.
	RuleThuFriSatExceptFirstSaturday SelectableRule = "thu-fri-sat-except-first-saturday"
)

// MonthCell is one cell of a month grid; nil marks a leading blank.
type MonthCell *int

// Day is one cell of the two-week window.
type Day struct {
	Day          int        `json:"day"`
	Month        time.Month `json:"month"`
	Year         int        `json:"year"`
	Date         Date       `json:"date"`
	IsSelectable bool       `json:"isSelectable"`
	IsToday      bool       `json:"isToday"`
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the English name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// MonthGrid returns the cells of ref's month: one nil per weekday before the
// 1st (weeks start on Sunday) followed by 1..daysInMonth. No trailing padding.
func MonthGrid(ref Date) []MonthCell {
	first := ref.FirstOfMonth()
	leading := int(first.Weekday())
	days := ref.DaysInMonth()

	cells := make([]MonthCell, 0, leading+days)
	for i := 0; i < leading; i++ {
		cells = append(cells, nil)
	}
	for day := 1; day <= days; day++ {
		n := day
		cells = append(cells, &n)
	}
	return cells
}

// MonthWeeks chunks MonthGrid into rows of seven, padding the last row with
// nil cells.
func MonthWeeks(ref Date) [][]MonthCell {
	cells := MonthGrid(ref)
	var weeks [][]MonthCell
	for len(cells) > 0 {
		n := 7
		if len(cells) < n {
			n = len(cells)
		}
		week := make([]MonthCell, 7)
		copy(week, cells[:n])
		weeks = append(weeks, week)
		cells = cells[n:]
	}
	return weeks
}

// MondayOnOrBefore returns the most recent Monday on or before d.
func MondayOnOrBefore(d Date) Date {
	sinceMonday := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-sinceMonday)
}

// TwoWeekWindow returns the 14 days starting at the Monday on or before today.
func TwoWeekWindow(today Date, rule SelectableRule) []Day {
	start := MondayOnOrBefore(today)
	days := make([]Day, 0, WindowDays)
	for i := 0; i < WindowDays; i++ {
		d := start.AddDays(i)
		days = append(days, Day{
			Day:          d.Day,
			Month:        d.Month,
			Year:         d.Year,
			Date:         d,
			IsSelectable: rule.Allows(d),
			IsToday:      d == today,
		})
	}
	return days
}

// Allows reports whether the weekday rule accepts d, ignoring the window.
func (r SelectableRule) Allows(d Date) bool {
	switch d.Weekday() {
	case time.Thursday, time.Friday:
		return true
	case time.Saturday:
		return r != RuleThuFriSatExceptFirstSaturday || d.Day > 7
	default:
		return false
	}
}

// Valid reports whether r is a known rule.
func (r SelectableRule) Valid() bool {
	return r == RuleThuFriSat || r == RuleThuFriSatExceptFirstSaturday
}

// IsSelectable reports whether d is a selectable cell of the window anchored
// at today.
func IsSelectable(d, today Date, rule SelectableRule) bool {
	start := MondayOnOrBefore(today)
	end := start.AddDays(WindowDays - 1)
	if d.Before(start) || d.After(end) {
		return false
	}
	return rule.Allows(d)
}

// WindowTitle labels a window, naming both months when it straddles two.
func WindowTitle(days []Day) string {
	if len(days) == 0 {
		return ""
	}
	first, last := days[0], days[len(days)-1]
	if first.Month == last.Month {
		return fmt.Sprintf("%s %d", MonthName(first.Month), first.Year)
	}
	return fmt.Sprintf("%s - %s %d", MonthName(first.Month), MonthName(last.Month), last.Year)
}
