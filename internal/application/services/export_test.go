package services

import "time"

// SetClock replaces the service clock until the returned func is called.
func SetClock(f func() time.Time) func() {
	prev := timeNow
	timeNow = f
	return func() { timeNow = prev }
}
