package calendar

import (
	"fmt"
	"time"
)

const (
	// OpeningTime is the first bookable start.
	OpeningTime = "14:00"
	// ClosingTime is the latest possible end.
	ClosingTime = "19:00"
	// SlotStep is the granularity of start and end times.
	SlotStep = 30 * time.Minute
	// MinSlotDuration is the shortest bookable range.
	MinSlotDuration = 30 * time.Minute
)

const clockLayout = "15:04"

// ParseClock parses an HH:MM time of day into minutes since midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func formatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int((d%time.Hour)/time.Minute))
}

// StartOptions lists the bookable start times, 14:00 through 18:30.
func StartOptions() []string {
	open, _ := ParseClock(OpeningTime)
	closing, _ := ParseClock(ClosingTime)
	var out []string
	for t := open; t+MinSlotDuration <= closing; t += SlotStep {
		out = append(out, formatClock(t))
	}
	return out
}

// EndOptions lists the end times strictly after start, up to 19:00.
func EndOptions(start string) ([]string, error) {
	from, err := ParseClock(start)
	if err != nil {
		return nil, err
	}
	closing, _ := ParseClock(ClosingTime)
	open, _ := ParseClock(OpeningTime)
	var out []string
	for t := open + SlotStep; t <= closing; t += SlotStep {
		if t > from {
			out = append(out, formatClock(t))
		}
	}
	return out, nil
}

// ValidateTimeRange checks that start and end sit on the grid, inside
// opening hours, and at least MinSlotDuration apart. The returned map is keyed
// by field name and empty when the range is valid.
func ValidateTimeRange(start, end string) map[string]string {
	fields := map[string]string{}
	if start == "" {
		fields["startTime"] = "Start time is required"
	}
	if end == "" {
		fields["endTime"] = "End time is required"
	}
	if len(fields) > 0 {
		return fields
	}

	if !contains(StartOptions(), start) {
		fields["startTime"] = fmt.Sprintf("Start time must be between %s and 18:30 on a 30 minute step", OpeningTime)
		return fields
	}
	ends, _ := EndOptions(start)
	if !contains(ends, end) {
		fields["endTime"] = fmt.Sprintf("End time must be after the start time and no later than %s", ClosingTime)
		return fields
	}

	from, _ := ParseClock(start)
	to, _ := ParseClock(end)
	if to-from < MinSlotDuration {
		fields["endTime"] = "Please select a time range of at least 30 minutes"
	}
	return fields
}

// FormatClock12 renders an HH:MM value as "2:30 PM".
func FormatClock12(s string) string {
	d, err := ParseClock(s)
	if err != nil {
		return ""
	}
	hour := int(d / time.Hour)
	minute := int((d % time.Hour) / time.Minute)
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h12 := hour % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, minute, suffix)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
