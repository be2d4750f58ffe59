// Package season maps planting dates onto the repeating 12-month advisory
// cycle and serves the month-indexed advisory content.
package season

import (
	"fmt"
	"time"

	"mango-sync-backend/internal/apperr"
	"mango-sync-backend/internal/model"
)

// MonthsInCycle is the length of the advisory cycle.
const MonthsInCycle = 12

// ElapsedMonths counts whole calendar months from plantingDate to asOf,
// comparing calendar dates in UTC. It fails with apperr.ErrInvalidDate when
// plantingDate is after asOf.
func ElapsedMonths(plantingDate, asOf time.Time) (int, error) {
	p := dateOf(plantingDate)
	a := dateOf(asOf)
	if p.After(a) {
		return 0, apperr.Wrap(
			fmt.Errorf("planting date %s is after %s", p.Format(time.DateOnly), a.Format(time.DateOnly)),
			apperr.ErrInvalidDate, "INVALID_DATE", "planting date cannot be in the future")
	}

	months := (a.Year()-p.Year())*12 + int(a.Month()) - int(p.Month())
	if a.Day() < p.Day() {
		months--
	}
	return months, nil
}

// MonthFor returns the season month (1-12) for a farm planted on plantingDate,
// as of asOf. The planting month itself is month 1.
func MonthFor(plantingDate, asOf time.Time) (int, error) {
	elapsed, err := ElapsedMonths(plantingDate, asOf)
	if err != nil {
		return 0, err
	}
	return elapsed%MonthsInCycle + 1, nil
}

// NextMonth is the cyclic successor of month.
func NextMonth(month int) (int, error) {
	if err := checkMonth(month); err != nil {
		return 0, err
	}
	return month%MonthsInCycle + 1, nil
}

// PreviousMonth is the cyclic predecessor of month.
func PreviousMonth(month int) (int, error) {
	if err := checkMonth(month); err != nil {
		return 0, err
	}
	return (month+MonthsInCycle-2)%MonthsInCycle + 1, nil
}

func checkMonth(month int) error {
	if month < 1 || month > MonthsInCycle {
		return notFound(month)
	}
	return nil
}

func notFound(month int) error {
	return apperr.New(apperr.ErrSeasonNotFound, "SEASON_NOT_FOUND", fmt.Sprintf("season for month %d not found", month))
}

func dateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Summary is the short form of a season.
type Summary struct {
	Month            int    `json:"month"`
	Title            string `json:"title"`
	ShortDescription string `json:"short_description"`
}

// Calendar is an immutable, complete 12-entry advisory table.
type Calendar struct {
	seasons [MonthsInCycle]model.Season
}

// NewCalendar validates that seasons cover months 1-12 exactly once.
func NewCalendar(seasons []model.Season) (*Calendar, error) {
	if len(seasons) != MonthsInCycle {
		return nil, fmt.Errorf("season table has %d entries, want %d", len(seasons), MonthsInCycle)
	}
	var c Calendar
	seen := make(map[int]bool, MonthsInCycle)
	for _, s := range seasons {
		if err := checkMonth(s.Month); err != nil {
			return nil, fmt.Errorf("season table: %w", err)
		}
		if seen[s.Month] {
			return nil, fmt.Errorf("season table: month %d appears twice", s.Month)
		}
		seen[s.Month] = true
		s.Activities = append([]string(nil), s.Activities...)
		c.seasons[s.Month-1] = s
	}
	return &c, nil
}

// DetailsFor returns the full advisory for month.
func (c *Calendar) DetailsFor(month int) (model.Season, error) {
	if err := checkMonth(month); err != nil {
		return model.Season{}, err
	}
	s := c.seasons[month-1]
	s.Activities = append([]string(nil), s.Activities...)
	return s, nil
}

// All returns every season ordered by month.
func (c *Calendar) All() []model.Season {
	out := make([]model.Season, 0, MonthsInCycle)
	for m := 1; m <= MonthsInCycle; m++ {
		s, _ := c.DetailsFor(m)
		out = append(out, s)
	}
	return out
}

// Summary returns title and short description for every month, ordered by month.
func (c *Calendar) Summary() []Summary {
	out := make([]Summary, 0, MonthsInCycle)
	for _, s := range c.seasons {
		out = append(out, Summary{Month: s.Month, Title: s.Title, ShortDescription: s.ShortDescription})
	}
	return out
}
