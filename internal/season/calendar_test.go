package season

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mango-sync-backend/internal/apperr"
	"mango-sync-backend/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthFor(t *testing.T) {
	planted := date(2024, time.January, 15)

	testCases := []struct {
		name     string
		asOf     time.Time
		expected int
	}{
		{name: "Planting day is month 1", asOf: planted, expected: 1},
		{name: "Later the same day", asOf: planted.Add(20 * time.Hour), expected: 1},
		{name: "One day short of a month", asOf: date(2024, time.February, 14), expected: 1},
		{name: "Exactly one month", asOf: date(2024, time.February, 15), expected: 2},
		{name: "Eleven months", asOf: date(2024, time.December, 15), expected: 12},
		{name: "Full cycle wraps to month 1", asOf: date(2025, time.January, 20), expected: 1},
		{name: "Second cycle", asOf: date(2025, time.March, 16), expected: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			month, err := MonthFor(planted, tc.asOf)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, month)
		})
	}
}

func TestMonthForRejectsFuturePlanting(t *testing.T) {
	_, err := MonthFor(date(2024, time.March, 2), date(2024, time.March, 1))
	assert.ErrorIs(t, err, apperr.ErrInvalidDate)
}

func TestMonthForProperties(t *testing.T) {
	plantings := []time.Time{
		date(2020, time.January, 31),
		date(2023, time.February, 28),
		date(2024, time.February, 29),
		date(2024, time.July, 1),
		date(2024, time.December, 31),
	}

	for _, p := range plantings {
		first, err := MonthFor(p, p)
		require.NoError(t, err)
		assert.Equal(t, 1, first)

		prev := first
		for offset := 0; offset < 48; offset++ {
			asOf := p.AddDate(0, 0, offset*11)
			month, err := MonthFor(p, asOf)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, month, 1)
			assert.LessOrEqual(t, month, 12)

			// Advancing by exactly 12 months lands on the same month.
			later, err := MonthFor(p, asOf.AddDate(1, 0, 0))
			require.NoError(t, err)
			assert.Equal(t, month, later, "planted %s as of %s", p, asOf)

			// Non-decreasing, except when wrapping from 12 back to 1.
			if month < prev {
				assert.Equal(t, 12, prev)
				assert.Equal(t, 1, month)
			}
			prev = month
		}
	}
}

func TestElapsedMonths(t *testing.T) {
	n, err := ElapsedMonths(date(2024, time.January, 31), date(2024, time.February, 29))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = ElapsedMonths(date(2024, time.January, 15), date(2026, time.April, 15))
	require.NoError(t, err)
	assert.Equal(t, 27, n)
}

func TestNextAndPreviousMonth(t *testing.T) {
	next, err := NextMonth(12)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	prev, err := PreviousMonth(1)
	require.NoError(t, err)
	assert.Equal(t, 12, prev)

	for m := 1; m <= 12; m++ {
		n, err := NextMonth(m)
		require.NoError(t, err)
		back, err := PreviousMonth(n)
		require.NoError(t, err)
		assert.Equal(t, m, back)
	}

	_, err = NextMonth(13)
	assert.ErrorIs(t, err, apperr.ErrSeasonNotFound)
	_, err = PreviousMonth(0)
	assert.ErrorIs(t, err, apperr.ErrSeasonNotFound)
}

func TestCalendar(t *testing.T) {
	cal, err := NewCalendar(DefaultSeasons())
	require.NoError(t, err)

	s, err := cal.DetailsFor(9)
	require.NoError(t, err)
	assert.Equal(t, "Harvest Timing & Technique", s.Title)
	assert.NotEmpty(t, s.Activities)

	_, err = cal.DetailsFor(0)
	assert.ErrorIs(t, err, apperr.ErrSeasonNotFound)

	summary := cal.Summary()
	require.Len(t, summary, 12)
	for i, entry := range summary {
		assert.Equal(t, i+1, entry.Month)
		assert.NotEmpty(t, entry.ShortDescription)
	}
	assert.Len(t, cal.All(), 12)
}

func TestCalendarReturnsCopies(t *testing.T) {
	cal, err := NewCalendar(DefaultSeasons())
	require.NoError(t, err)

	s, _ := cal.DetailsFor(1)
	s.Activities[0] = "changed"

	again, _ := cal.DetailsFor(1)
	assert.Equal(t, "Site selection and preparation", again.Activities[0])
}

func TestNewCalendarRejectsIncompleteTable(t *testing.T) {
	seasons := DefaultSeasons()

	_, err := NewCalendar(seasons[:11])
	assert.Error(t, err)

	dup := append([]model.Season(nil), seasons...)
	dup[11].Month = 1
	_, err = NewCalendar(dup)
	assert.Error(t, err)
}
