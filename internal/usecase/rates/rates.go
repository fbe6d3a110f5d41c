// Package rates supplies the configured interest, commission, and collateral
// rates behind an explicit, TTL-bounded cache. The surrounding system used a
// module-level memo for these lookups; here the cache is an injected object
// with a clear invalidation path.
package rates

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"microcredit-backend/internal/config"
)

const cacheKey = "rates:current"

type Rates struct {
	Interest          decimal.Decimal `json:"interest"`
	Commission        decimal.Decimal `json:"commission"`
	CollateralPercent decimal.Decimal `json:"collateral_percent"`
}

// Source is where rates actually come from; the cache sits in front of it.
type Source interface {
	Fetch(ctx context.Context) (Rates, error)
}

// ConfigSource serves the rates loaded at boot.
type ConfigSource struct{ cfg *config.Config }

func NewConfigSource(cfg *config.Config) *ConfigSource { return &ConfigSource{cfg: cfg} }

func (s *ConfigSource) Fetch(context.Context) (Rates, error) {
	return Rates{
		Interest:          s.cfg.InterestRate,
		Commission:        s.cfg.CommissionRate,
		CollateralPercent: s.cfg.CollateralPercent,
	}, nil
}

type Cache struct {
	source Source
	rdb    *redis.Client // nil disables caching
	ttl    time.Duration
	log    *logrus.Logger
}

func NewCache(source Source, rdb *redis.Client, ttl time.Duration, log *logrus.Logger) *Cache {
	return &Cache{source: source, rdb: rdb, ttl: ttl, log: log}
}

// Current returns the rates, serving from redis within the TTL. A cache
// failure falls back to the source with a warning; it never fails a caller
// that the source could serve.
func (c *Cache) Current(ctx context.Context) (Rates, error) {
	if c.rdb == nil {
		return c.source.Fetch(ctx)
	}

	raw, err := c.rdb.Get(ctx, cacheKey).Bytes()
	if err == nil {
		var r Rates
		if jerr := json.Unmarshal(raw, &r); jerr == nil {
			return r, nil
		}
		c.log.Warnf("rates: corrupt cache entry, refetching")
	} else if err != redis.Nil {
		c.log.Warnf("rates: cache read failed: %v", err)
	}

	r, err := c.source.Fetch(ctx)
	if err != nil {
		return Rates{}, err
	}
	payload, _ := json.Marshal(r)
	if err := c.rdb.Set(ctx, cacheKey, payload, c.ttl).Err(); err != nil {
		c.log.Warnf("rates: cache write failed: %v", err)
	}
	return r, nil
}

// Invalidate drops the cached entry so the next Current hits the source.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, cacheKey).Err()
}
