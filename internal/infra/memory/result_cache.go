package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"company-quiz-service/internal/app"
)

// ResultCache is an in-process implementation of app.ResultCache with per-key expiry.
type ResultCache struct {
	clock func() time.Time

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type entryKind int

const (
	kindString entryKind = iota
	kindList
	kindSet
)

type cacheEntry struct {
	kind      entryKind
	str       string
	list      []string
	set       map[string]struct{}
	expiresAt time.Time
}

func NewResultCache() *ResultCache {
	return NewResultCacheWithClock(time.Now)
}

// NewResultCacheWithClock allows deterministic expiry in tests.
func NewResultCacheWithClock(now func() time.Time) *ResultCache {
	return &ResultCache{clock: now, entries: make(map[string]*cacheEntry)}
}

func (c *ResultCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.liveLocked(key, kindString)
	if err != nil {
		return "", err
	}
	if e == nil {
		return "", app.ErrCacheMiss
	}
	return e.str, nil
}

func (c *ResultCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{kind: kindString, str: value, expiresAt: c.expiry(ttl)}
	return nil
}

func (c *ResultCache) ListAppend(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.liveLocked(key, kindList)
	if err != nil {
		return err
	}
	if e == nil {
		e = &cacheEntry{kind: kindList}
		c.entries[key] = e
	}
	e.list = append(e.list, value)
	e.expiresAt = c.expiry(ttl)
	return nil
}

func (c *ResultCache) ListRange(_ context.Context, key string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.liveLocked(key, kindList)
	if err != nil || e == nil {
		return nil, err
	}
	return append([]string(nil), e.list...), nil
}

func (c *ResultCache) SetAdd(_ context.Context, key, member string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.liveLocked(key, kindSet)
	if err != nil {
		return err
	}
	if e == nil {
		e = &cacheEntry{kind: kindSet, set: make(map[string]struct{})}
		c.entries[key] = e
	}
	e.set[member] = struct{}{}
	e.expiresAt = c.expiry(ttl)
	return nil
}

func (c *ResultCache) SetMembers(_ context.Context, key string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.liveLocked(key, kindSet)
	if err != nil || e == nil {
		return nil, err
	}
	out := make([]string, 0, len(e.set))
	for m := range e.set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

// liveLocked returns the unexpired entry for key, nil when absent, or an
// error when the key holds another kind of value.
func (c *ResultCache) liveLocked(key string, kind entryKind) (*cacheEntry, error) {
	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(c.clock()) {
		delete(c.entries, key)
		return nil, nil
	}
	if e.kind != kind {
		return nil, fmt.Errorf("key %q holds the wrong kind of value", key)
	}
	return e, nil
}

func (c *ResultCache) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.clock().Add(ttl)
}
