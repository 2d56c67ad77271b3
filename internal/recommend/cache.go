package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/bookgraph/internal/observability"
	"github.com/yungbote/bookgraph/internal/platform/logger"
)

const (
	DefaultCacheTTL = time.Hour
	cacheKeyPrefix  = "bookgraph:book:"
)

// redisKV is the subset of *goredis.Client the cache uses.
type redisKV interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
}

// CachedBooks is a read-through cache over Searcher.GetBook. Redis failures are logged
// and fall through to the backend. Concurrent misses for one id share a single lookup.
type CachedBooks struct {
	Searcher
	kv      redisKV
	ttl     time.Duration
	group   singleflight.Group
	log     *logger.Logger
	metrics *observability.Metrics
}

func NewCachedBooks(inner Searcher, kv redisKV, ttl time.Duration, log *logger.Logger, metrics *observability.Metrics) *CachedBooks {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CachedBooks{
		Searcher: inner,
		kv:       kv,
		ttl:      ttl,
		log:      log.With("service", "BookCache"),
		metrics:  metrics,
	}
}

func (c *CachedBooks) GetBook(ctx context.Context, id string) (BookView, error) {
	key := cacheKeyPrefix + id
	raw, err := c.kv.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var view BookView
		if uerr := json.Unmarshal(raw, &view); uerr == nil {
			c.metrics.IncBookCache("hit")
			return view, nil
		}
		c.log.Warn("Dropping undecodable cache entry", "key", key)
		c.metrics.IncBookCache("error")
	case errors.Is(err, goredis.Nil):
		c.metrics.IncBookCache("miss")
	default:
		c.log.Warn("Book cache read failed (falling back)", "key", key, "error", err)
		c.metrics.IncBookCache("error")
	}

	// The shared lookup outlives any single caller; each caller stops waiting on its own ctx.
	ch := c.group.DoChan(id, func() (any, error) {
		lookupCtx := context.WithoutCancel(ctx)
		view, err := c.Searcher.GetBook(lookupCtx, id)
		if err != nil {
			return BookView{}, err
		}
		if raw, merr := json.Marshal(view); merr == nil {
			if serr := c.kv.Set(lookupCtx, key, raw, c.ttl).Err(); serr != nil {
				c.log.Warn("Book cache write failed", "key", key, "error", serr)
			}
		}
		return view, nil
	})
	select {
	case <-ctx.Done():
		return BookView{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return BookView{}, res.Err
		}
		return res.Val.(BookView), nil
	}
}
