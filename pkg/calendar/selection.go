package calendar

import (
	"fmt"

	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

// MaxSelectedDates caps how many dates one submission may carry.
const MaxSelectedDates = 6

// Selection is an ordered set of dates chosen but not yet submitted.
// The zero value is not usable; use NewSelection.
type Selection struct {
	max   int
	dates []Date
}

// NewSelection returns an empty selection bounded by max (MaxSelectedDates
// when max <= 0).
func NewSelection(max int) *Selection {
	if max <= 0 {
		max = MaxSelectedDates
	}
	return &Selection{max: max}
}

// RestoreSelection rebuilds a selection from stored dates, dropping
// duplicates and anything beyond the cap.
func RestoreSelection(max int, dates []Date) *Selection {
	s := NewSelection(max)
	seen := make(map[Date]struct{}, s.max)
	for _, d := range dates {
		if len(s.dates) == s.max {
			break
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		s.dates = append(s.dates, d)
	}
	return s
}

// UniqueDates drops repeated dates, keeping first-seen order. It stops with
// MaxDatesError as soon as more than max distinct dates have been seen.
func UniqueDates(max int, dates []Date) ([]Date, error) {
	if max <= 0 {
		max = MaxSelectedDates
	}
	seen := make(map[Date]struct{}, max+1)
	out := make([]Date, 0, max)
	for _, d := range dates {
		if _, dup := seen[d]; dup {
			continue
		}
		if len(out) == max {
			return nil, MaxDatesError(max)
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out, nil
}

// Toggle removes d when selected, otherwise adds it. Adding to a full
// selection fails with a validation error and leaves the set unchanged.
func (s *Selection) Toggle(d Date) (selected bool, err error) {
	for i, existing := range s.dates {
		if existing == d {
			s.dates = append(s.dates[:i:i], s.dates[i+1:]...)
			return false, nil
		}
	}
	if len(s.dates) >= s.max {
		return false, MaxDatesError(s.max)
	}
	s.dates = append(s.dates, d)
	return true, nil
}

// Contains reports whether d is selected.
func (s *Selection) Contains(d Date) bool {
	for _, existing := range s.dates {
		if existing == d {
			return true
		}
	}
	return false
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.dates = nil
}

// Len returns the number of selected dates.
func (s *Selection) Len() int {
	return len(s.dates)
}

// Max returns the cap.
func (s *Selection) Max() int {
	return s.max
}

// Dates returns a copy of the selected dates in selection order.
func (s *Selection) Dates() []Date {
	out := make([]Date, len(s.dates))
	copy(out, s.dates)
	return out
}

// MaxDatesError is the error returned when a selection is full.
func MaxDatesError(max int) *apperrors.AppError {
	return apperrors.NewValidationError(fmt.Sprintf("Maximum %d days can be selected", max))
}
