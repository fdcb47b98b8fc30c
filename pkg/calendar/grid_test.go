package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthGrid_ShapeForEveryMonthOf2024And2025(t *testing.T) {
	for year := 2024; year <= 2025; year++ {
		for month := time.January; month <= time.December; month++ {
			ref := NewDate(year, month, 15)
			cells := MonthGrid(ref)

			leading := int(ref.FirstOfMonth().Weekday())
			days := ref.DaysInMonth()
			require.Len(t, cells, leading+days, "%d-%02d", year, month)

			for i := 0; i < leading; i++ {
				assert.Nil(t, cells[i])
			}
			for i := leading; i < len(cells); i++ {
				require.NotNil(t, cells[i])
				assert.Equal(t, i-leading+1, *cells[i])
			}
		}
	}
}

func TestMonthGrid_KnownMonths(t *testing.T) {
	// March 2024 starts on a Friday and has 31 days.
	cells := MonthGrid(MustParseDate("2024-03-15"))
	assert.Len(t, cells, 5+31)

	// February 2024 is a leap month starting on a Thursday.
	cells = MonthGrid(MustParseDate("2024-02-01"))
	assert.Len(t, cells, 4+29)
}

func TestMonthWeeks_PadsLastRow(t *testing.T) {
	weeks := MonthWeeks(MustParseDate("2024-03-01"))

	require.Len(t, weeks, 6)
	for _, w := range weeks {
		assert.Len(t, w, 7)
	}
	assert.Equal(t, 31, *weeks[5][0])
	assert.Nil(t, weeks[5][1])
}

func TestTwoWeekWindow_StartsOnMondayAndSpans14Days(t *testing.T) {
	start := MustParseDate("2024-01-01")
	for i := 0; i < 400; i++ {
		today := start.AddDays(i)
		days := TwoWeekWindow(today, RuleThuFriSat)

		require.Len(t, days, WindowDays)
		assert.Equal(t, time.Monday, days[0].Date.Weekday(), "today=%s", today)
		for j := 1; j < len(days); j++ {
			assert.Equal(t, days[j-1].Date.AddDays(1), days[j].Date)
		}
		assert.False(t, today.Before(days[0].Date))
		assert.True(t, today.Before(days[0].Date.AddDays(7)))
	}
}

func TestTwoWeekWindow_FlagsTodayAndSelectableDays(t *testing.T) {
	// Wednesday 2024-03-13; window runs Mon 11 .. Sun 24.
	today := MustParseDate("2024-03-13")
	days := TwoWeekWindow(today, RuleThuFriSat)

	var selectable []string
	var todays []string
	for _, d := range days {
		if d.IsSelectable {
			selectable = append(selectable, d.Date.String())
		}
		if d.IsToday {
			todays = append(todays, d.Date.String())
		}
	}

	assert.Equal(t, []string{
		"2024-03-14", "2024-03-15", "2024-03-16",
		"2024-03-21", "2024-03-22", "2024-03-23",
	}, selectable)
	assert.Equal(t, []string{"2024-03-13"}, todays)
}

func TestTwoWeekWindow_ExcludesFirstSaturday(t *testing.T) {
	// Window Mon 2024-06-03 .. Sun 2024-06-16. June 1st was the first
	// Saturday, so both Saturdays in the window stay open.
	days := TwoWeekWindow(MustParseDate("2024-06-03"), RuleThuFriSatExceptFirstSaturday)

	byDate := map[string]Day{}
	for _, d := range days {
		byDate[d.Date.String()] = d
	}
	assert.True(t, byDate["2024-06-08"].IsSelectable, "June 8th is past the first seven days")
	assert.True(t, byDate["2024-06-15"].IsSelectable)

	days = TwoWeekWindow(MustParseDate("2024-03-01"), RuleThuFriSatExceptFirstSaturday)
	byDate = map[string]Day{}
	for _, d := range days {
		byDate[d.Date.String()] = d
	}
	assert.False(t, byDate["2024-03-02"].IsSelectable, "first Saturday of March")
	assert.True(t, byDate["2024-03-09"].IsSelectable)
	assert.True(t, byDate["2024-02-29"].IsSelectable, "Thursday stays selectable")
}

func TestIsSelectable_OutsideWindow(t *testing.T) {
	today := MustParseDate("2024-03-13")

	assert.True(t, IsSelectable(MustParseDate("2024-03-14"), today, RuleThuFriSat))
	assert.False(t, IsSelectable(MustParseDate("2024-03-28"), today, RuleThuFriSat))
	assert.False(t, IsSelectable(MustParseDate("2024-03-07"), today, RuleThuFriSat))
	assert.False(t, IsSelectable(MustParseDate("2024-03-18"), today, RuleThuFriSat))
}

func TestWindowTitle(t *testing.T) {
	assert.Equal(t, "March 2024", WindowTitle(TwoWeekWindow(MustParseDate("2024-03-13"), RuleThuFriSat)))
	assert.Equal(t, "March - April 2024", WindowTitle(TwoWeekWindow(MustParseDate("2024-03-27"), RuleThuFriSat)))
	assert.Empty(t, WindowTitle(nil))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.March, Day: 15}, d)
	assert.Equal(t, "2024-03-15", d.String())

	_, err = ParseDate("2024-03-15T10:00:00Z")
	assert.Error(t, err)
	_, err = ParseDate("15/03/2024")
	assert.Error(t, err)
}

func TestParseMonth(t *testing.T) {
	d, err := ParseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", d.String())
	assert.Equal(t, 29, d.DaysInMonth())

	_, err = ParseMonth("2024-13")
	assert.Error(t, err)
	_, err = ParseMonth("2024-02-01")
	assert.Error(t, err)
}

func TestToday_UsesLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	now := time.Date(2024, 3, 14, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-15", Today(now, paris).String())
	assert.Equal(t, "2024-03-14", Today(now, nil).String())
}
