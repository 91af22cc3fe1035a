// Package runcache caches grounded run answers by prompt.
package runcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridchat/internal/db"
	"github.com/kailas-cloud/hybridchat/internal/domain"
	"github.com/kailas-cloud/hybridchat/internal/domain/run"
)

var cacheKeyPrefix = domain.KeyPrefix + "run_cache:"

// delegator is the decorated capability.
type delegator interface {
	Delegate(ctx context.Context, prompt string) *run.Run
}

// store is the consumer interface for the run cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedDelegator serves repeated prompts from a key-value store.
// Only extracted answers are cached; failed runs are always retried.
type CachedDelegator struct {
	inner      delegator
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner delegator,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedDelegator {
	return &CachedDelegator{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Delegate returns a cached answer or runs the inner delegator.
// Cache errors are logged and never fail the call.
func (c *CachedDelegator) Delegate(ctx context.Context, prompt string) *run.Run {
	key := c.cacheKey(prompt)

	if text, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return run.NewCached(text)
	}

	c.incCache("miss")

	r := c.inner.Delegate(ctx, prompt)
	if text, ok := r.Text(); ok {
		c.putToCache(ctx, key, text)
	}
	return r
}

func (c *CachedDelegator) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedDelegator) cacheKey(prompt string) string {
	h := sha256.Sum256([]byte(prompt))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedDelegator) getFromCache(ctx context.Context, key string) (string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached run answer", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (c *CachedDelegator) putToCache(ctx context.Context, key, text string) {
	if err := c.store.SetWithTTL(ctx, key, []byte(text), c.ttl); err != nil {
		c.logger.Warn("Failed to cache run answer", zap.String("key", key), zap.Error(err))
	}
}
