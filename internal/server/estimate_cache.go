package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/coocood/freecache"
	"github.com/meltforce/fittrack/internal/energy"
	"github.com/meltforce/fittrack/internal/metrics"
	"github.com/meltforce/fittrack/internal/models"
)

// estimateCache memoizes weekly plan estimates. Keys include the plan's
// update time, so an edited plan never hits a stale entry.
type estimateCache struct {
	cache   *freecache.Cache
	ttl     int
	metrics *metrics.Manager
}

func newEstimateCache(c *freecache.Cache, ttl time.Duration, m *metrics.Manager) *estimateCache {
	return &estimateCache{cache: c, ttl: int(ttl.Seconds()), metrics: m}
}

func estimateKey(p *models.WorkoutPlan, weightLbs float64, opts energy.Options) []byte {
	return []byte(fmt.Sprintf("estimate::%d::%s::%d::%g::%g::%g",
		p.UserID, p.ID, p.UpdatedAt.UnixNano(), weightLbs, opts.SecondsPerRep, opts.RestBetweenSetsSeconds))
}

func (c *estimateCache) get(key []byte) (*estimateResponse, bool) {
	raw, err := c.cache.Get(key)
	if err != nil {
		c.count("miss")
		return nil, false
	}
	var resp estimateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.count("miss")
		return nil, false
	}
	c.count("hit")
	return &resp, true
}

func (c *estimateCache) set(key []byte, resp *estimateResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encoding estimate: %w", err)
	}
	return c.cache.Set(key, raw, c.ttl)
}

func (c *estimateCache) count(result string) {
	if c.metrics != nil {
		c.metrics.CounterEstimateCache.WithLabelValues(result).Inc()
	}
}
