package model

import (
	"context"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheObserver receives cache hit/miss notifications.
type CacheObserver interface {
	CacheLookup(hit bool)
}

// Cached wraps a Classifier with an in-memory LRU keyed by the full feature
// row. The wrapped classifier must be immutable for this to be sound.
type Cached struct {
	inner    Classifier
	cache    *lru.Cache[[maxCachedWidth]float64, int]
	observer CacheObserver
}

// maxCachedWidth bounds the key array; wider rows bypass the cache.
const maxCachedWidth = 32

// NewCached creates a cache decorator holding up to size predictions.
// A nil observer is allowed.
func NewCached(inner Classifier, size int, observer CacheObserver) (*Cached, error) {
	cache, err := lru.New[[maxCachedWidth]float64, int](size)
	if err != nil {
		return nil, fmt.Errorf("create prediction cache: %w", err)
	}
	return &Cached{inner: inner, cache: cache, observer: observer}, nil
}

func (c *Cached) NumFeatures() int {
	return c.inner.NumFeatures()
}

func (c *Cached) Predict(ctx context.Context, features []float64) (int, error) {
	if len(features) > maxCachedWidth || len(features) != c.inner.NumFeatures() {
		return c.inner.Predict(ctx, features)
	}

	var key [maxCachedWidth]float64
	copy(key[:], features)

	if label, ok := c.cache.Get(key); ok {
		c.observe(true)
		return label, nil
	}
	c.observe(false)

	label, err := c.inner.Predict(ctx, features)
	if err != nil {
		return label, err
	}
	c.cache.Add(key, label)
	return label, nil
}

// Len returns the number of cached predictions.
func (c *Cached) Len() int {
	return c.cache.Len()
}

// Close closes the wrapped classifier if it holds resources.
func (c *Cached) Close() error {
	if closer, ok := c.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Cached) observe(hit bool) {
	if c.observer != nil {
		c.observer.CacheLookup(hit)
	}
}
