package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOptions(t *testing.T) {
	opts := StartOptions()

	require.Len(t, opts, 10)
	assert.Equal(t, "14:00", opts[0])
	assert.Equal(t, "18:30", opts[len(opts)-1])
}

func TestEndOptions(t *testing.T) {
	opts, err := EndOptions("17:30")
	require.NoError(t, err)
	assert.Equal(t, []string{"18:00", "18:30", "19:00"}, opts)

	_, err = EndOptions("5pm")
	assert.Error(t, err)
}

func TestValidateTimeRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		wantField  string
	}{
		{name: "valid", start: "14:00", end: "15:30"},
		{name: "last slot", start: "18:30", end: "19:00"},
		{name: "missing start", end: "15:00", wantField: "startTime"},
		{name: "missing end", start: "15:00", wantField: "endTime"},
		{name: "before opening", start: "13:30", end: "15:00", wantField: "startTime"},
		{name: "off grid", start: "14:15", end: "15:00", wantField: "startTime"},
		{name: "end before start", start: "16:00", end: "15:00", wantField: "endTime"},
		{name: "end equals start", start: "16:00", end: "16:00", wantField: "endTime"},
		{name: "after closing", start: "18:30", end: "19:30", wantField: "endTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := ValidateTimeRange(tt.start, tt.end)
			if tt.wantField == "" {
				assert.Empty(t, fields)
				return
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestFormatClock12(t *testing.T) {
	assert.Equal(t, "2:00 PM", FormatClock12("14:00"))
	assert.Equal(t, "12:30 PM", FormatClock12("12:30"))
	assert.Equal(t, "12:00 AM", FormatClock12("00:00"))
	assert.Empty(t, FormatClock12("noon"))
}
