// Package querycache caches region query results in Redis, keyed by
// query region, collection version and touched cells.
package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/geoconsole/spatial-canvas/internal/cache/keys"
	"github.com/geoconsole/spatial-canvas/internal/cache/redisstore"
	"github.com/geoconsole/spatial-canvas/internal/model"
	"github.com/geoconsole/spatial-canvas/internal/observability"
)

type Cache interface {
	Get(ctx context.Context, q model.QueryRequest, version uint64, cells model.Cells) ([]model.Feature, bool)
	Put(ctx context.Context, q model.QueryRequest, version uint64, cells model.Cells, feats []model.Feature)
	PurgeCells(ctx context.Context, cells model.Cells) error
}

// Scorer reports how hot a cell currently is. Hot cells get longer
// TTLs: their entries are re-requested often and invalidation purges
// them by cell anyway.
type Scorer interface {
	Score(cell string) float64
}

type TTLs struct {
	Cold    time.Duration
	Default time.Duration
	Hot     time.Duration
}

type redisCache struct {
	log       *slog.Logger
	cli       *redisstore.Client
	ttls      TTLs
	scorer    Scorer
	threshold float64
	opTimeout time.Duration
}

func NewRedis(log *slog.Logger, cli *redisstore.Client, ttls TTLs, scorer Scorer, threshold float64, opTimeout time.Duration) Cache {
	if log == nil {
		log = slog.Default()
	}
	if ttls.Default <= 0 {
		ttls.Default = time.Minute
	}
	if ttls.Cold <= 0 {
		ttls.Cold = ttls.Default / 2
	}
	if ttls.Hot <= 0 {
		ttls.Hot = 2 * ttls.Default
	}
	if opTimeout <= 0 {
		opTimeout = 250 * time.Millisecond
	}
	return &redisCache{
		log:       log,
		cli:       cli,
		ttls:      ttls,
		scorer:    scorer,
		threshold: threshold,
		opTimeout: opTimeout,
	}
}

// Get is best-effort: cache errors degrade to a miss and the query is
// evaluated against the collection. No retry, no backoff.
func (c *redisCache) Get(ctx context.Context, q model.QueryRequest, version uint64, cells model.Cells) ([]model.Feature, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	key := keys.Query(q, version, cells)
	raw, ok, err := c.cli.Get(ctx, key)
	if err != nil {
		c.log.Warn("query cache get failed", "key", key, "err", err)
		observability.IncCacheMiss()
		return nil, false
	}
	if !ok {
		observability.IncCacheMiss()
		return nil, false
	}

	var feats []model.Feature
	if err := json.Unmarshal(raw, &feats); err != nil {
		c.log.Warn("query cache entry corrupt", "key", key, "err", err)
		observability.IncCacheMiss()
		return nil, false
	}
	observability.IncCacheHit()
	return feats, true
}

func (c *redisCache) Put(ctx context.Context, q model.QueryRequest, version uint64, cells model.Cells, feats []model.Feature) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	raw, err := json.Marshal(feats)
	if err != nil {
		c.log.Warn("query cache encode failed", "err", err)
		return
	}

	ttl := c.classTTL(cells)
	key := keys.Query(q, version, cells)
	if err := c.cli.Set(ctx, key, raw, ttl); err != nil {
		c.log.Warn("query cache put failed", "key", key, "err", err)
		return
	}

	// record the key under each touched cell so invalidation can
	// purge by cell; the set outlives the entry slightly, which only
	// costs spurious deletes
	for _, cell := range cells {
		if err := c.cli.SAdd(ctx, keys.Cell(cell), 2*ttl, key); err != nil {
			c.log.Warn("query cache cell index failed", "cell", cell, "err", err)
			return
		}
	}
}

func (c *redisCache) PurgeCells(ctx context.Context, cells model.Cells) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	for _, cell := range cells {
		ck := keys.Cell(cell)
		members, err := c.cli.SMembers(ctx, ck)
		if err != nil {
			return fmt.Errorf("purge cell %s: %w", cell, err)
		}
		if err := c.cli.Del(ctx, append(members, ck)...); err != nil {
			return fmt.Errorf("purge cell %s: %w", cell, err)
		}
	}
	return nil
}

// classTTL picks the TTL band from the hottest touched cell.
func (c *redisCache) classTTL(cells model.Cells) time.Duration {
	if c.scorer == nil || c.threshold <= 0 {
		return c.ttls.Default
	}
	max := 0.0
	for _, cell := range cells {
		if s := c.scorer.Score(cell); s > max {
			max = s
		}
	}
	switch {
	case max >= c.threshold:
		return c.ttls.Hot
	case max < c.threshold/4:
		return c.ttls.Cold
	default:
		return c.ttls.Default
	}
}

// Noop is used when no Redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, model.QueryRequest, uint64, model.Cells) ([]model.Feature, bool) {
	return nil, false
}
func (Noop) Put(context.Context, model.QueryRequest, uint64, model.Cells, []model.Feature) {}
func (Noop) PurgeCells(context.Context, model.Cells) error                                { return nil }
