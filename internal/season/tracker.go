package season

import (
	"context"
	"fmt"
	"time"

	"mango-sync-backend/internal/model"
)

// MonthSaver persists a farm's current season month.
type MonthSaver interface {
	UpdateSeasonMonth(ctx context.Context, farmID int64, month int) error
}

// Tracker keeps one farm's persisted season month in step with its planting date.
// Recomputation is lazy: callers refresh when they read the farm's season.
type Tracker struct {
	farm  *model.Farm
	saver MonthSaver
}

// NewTracker wraps farm. Refresh mutates farm.CurrentSeasonMonth on change.
func NewTracker(farm *model.Farm, saver MonthSaver) *Tracker {
	return &Tracker{farm: farm, saver: saver}
}

// ExpectedMonth is the season month the farm should be in at now.
func (t *Tracker) ExpectedMonth(now time.Time) (int, error) {
	return MonthFor(t.farm.PlantingDate, now)
}

// NeedsUpdate reports whether the persisted month lags the expected one.
func (t *Tracker) NeedsUpdate(now time.Time) (bool, error) {
	expected, err := t.ExpectedMonth(now)
	if err != nil {
		return false, err
	}
	return expected != t.farm.CurrentSeasonMonth, nil
}

// Refresh persists the expected month when it differs and reports whether it did.
// A second call with the same now is a no-op.
func (t *Tracker) Refresh(ctx context.Context, now time.Time) (bool, error) {
	expected, err := t.ExpectedMonth(now)
	if err != nil {
		return false, err
	}
	if expected == t.farm.CurrentSeasonMonth {
		return false, nil
	}
	if err := t.saver.UpdateSeasonMonth(ctx, t.farm.ID, expected); err != nil {
		return false, fmt.Errorf("failed to update season month for farm %d: %w", t.farm.ID, err)
	}
	t.farm.CurrentSeasonMonth = expected
	return true, nil
}
