package fetcher

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// PageCache stores fetched content by key hash. store.Store satisfies it.
type PageCache interface {
	GetCachedPage(ctx context.Context, urlHash string) ([]byte, error)
	SetCachedPage(ctx context.Context, urlHash string, content []byte, ttl time.Duration) error
}

// Cached serves repeated targets from a PageCache. Cache failures are logged
// and never fail the fetch. Partial renders are never stored.
type Cached struct {
	next  Client
	cache PageCache
	ttl   time.Duration
}

// WithCache wraps next with cache. A non-positive ttl disables caching.
func WithCache(next Client, cache PageCache, ttl time.Duration) Client {
	if cache == nil || ttl <= 0 {
		return next
	}
	return &Cached{next: next, cache: cache, ttl: ttl}
}

// CacheKey hashes everything that changes the content of target.
func CacheKey(target Target) string {
	h := sha256.New()
	h.Write([]byte(target.URL))
	if target.Form != nil {
		h.Write([]byte{0})
		h.Write([]byte(target.Form.Value))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Rendered reports whether content satisfies the wait condition of target. A
// target with AllowMissing can come back without its WaitFor element when the
// page was captured as is; such content is a partial render.
func Rendered(target Target, content []byte) bool {
	if target.WaitFor == "" || !target.AllowMissing {
		return true
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return false
	}
	return doc.Find(target.WaitFor).Length() > 0
}

// Fetch returns the cached content for target or fetches and stores it.
func (c *Cached) Fetch(ctx context.Context, target Target) ([]byte, error) {
	key := CacheKey(target)
	if content, err := c.cache.GetCachedPage(ctx, key); err != nil {
		zap.L().Warn("fetch: cache read failed", zap.String("url", target.URL), zap.Error(err))
	} else if content != nil {
		zap.L().Debug("fetch: cache hit", zap.String("url", target.URL))
		return content, nil
	}

	content, err := c.next.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	if !Rendered(target, content) {
		zap.L().Debug("fetch: partial render not cached",
			zap.String("url", target.URL),
			zap.String("selector", target.WaitFor),
		)
		return content, nil
	}
	if err := c.cache.SetCachedPage(ctx, key, content, c.ttl); err != nil {
		zap.L().Warn("fetch: cache write failed", zap.String("url", target.URL), zap.Error(err))
	}
	return content, nil
}
