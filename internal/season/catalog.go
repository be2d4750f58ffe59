package season

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"mango-sync-backend/internal/model"
)

const calendarKey = "calendar"

// Source loads the persisted season table.
type Source interface {
	ListSeasons(ctx context.Context) ([]model.Season, error)
}

// Catalog serves the season Calendar, caching it for ttl. Season content is
// reference data that only changes out-of-band, so no invalidation is needed
// beyond expiry.
type Catalog struct {
	source Source
	cache  *cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalog creates a Catalog over source.
func NewCatalog(source Source, ttl time.Duration, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		source: source,
		cache:  cache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: logger.Named("seasons"),
	}
}

// Calendar returns the cached calendar, loading it from the source on a miss.
func (c *Catalog) Calendar(ctx context.Context) (*Calendar, error) {
	if cal, found := c.cache.Get(calendarKey); found {
		return cal.(*Calendar), nil
	}

	seasons, err := c.source.ListSeasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load seasons: %w", err)
	}
	cal, err := NewCalendar(seasons)
	if err != nil {
		return nil, err
	}

	c.cache.Set(calendarKey, cal, c.ttl)
	c.logger.Debug("season calendar loaded", zap.Int("seasons", len(seasons)))
	return cal, nil
}

// Invalidate drops the cached calendar, e.g. after reseeding.
func (c *Catalog) Invalidate() {
	c.cache.Delete(calendarKey)
}
