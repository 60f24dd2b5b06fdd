package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/josephgoksu/promptforge/internal/errors"
	"github.com/josephgoksu/promptforge/types"
)

// Config configures a ResultCache (spec.md §4.8: optional size cap, optional
// TTL).
type Config struct {
	// MaxEntries bounds the cache via LRU eviction. 0 means unbounded.
	MaxEntries int
	// TTL expires entries opportunistically on Get. 0 means no expiry.
	TTL time.Duration
}

// store is the minimal backing-map contract, implemented either by a plain
// mutex-guarded map (unbounded) or hashicorp/golang-lru/v2 (bounded).
type store interface {
	get(k types.CacheKey) (types.CacheEntry, bool)
	put(k types.CacheKey, v types.CacheEntry)
}

// ResultCache is the content-addressed, in-memory, optionally-evicting
// result cache (spec.md §4.8). A singleflight.Group ensures a second Get
// for an in-flight key waits for the outstanding compute instead of
// launching a duplicate LLM call.
type ResultCache struct {
	backing store
	ttl     time.Duration
	sf      singleflight.Group
}

// New builds a ResultCache per cfg.
func New(cfg Config) *ResultCache {
	var b store
	if cfg.MaxEntries > 0 {
		b = newLRUStore(cfg.MaxEntries)
	} else {
		b = newMapStore()
	}
	return &ResultCache{backing: b, ttl: cfg.TTL}
}

// Get returns the cached result for key, if present and unexpired.
func (rc *ResultCache) Get(key types.CacheKey) (types.ImprovementResult, bool) {
	entry, ok := rc.backing.get(key)
	if !ok {
		return types.ImprovementResult{}, false
	}
	if rc.expired(entry) {
		return types.ImprovementResult{}, false
	}
	return entry.Result, true
}

// Put inserts or overwrites the entry for key (spec.md §4.8: "atomic
// within one process").
func (rc *ResultCache) Put(key types.CacheKey, result types.ImprovementResult) {
	rc.backing.put(key, types.CacheEntry{Result: result, InsertedAtUnixNano: time.Now().UnixNano()})
}

func (rc *ResultCache) expired(entry types.CacheEntry) bool {
	if rc.ttl <= 0 {
		return false
	}
	return time.Since(time.Unix(0, entry.InsertedAtUnixNano)) > rc.ttl
}

// GetOrCompute returns the cached result for key if present; otherwise it
// single-flights compute across concurrent callers sharing key, caches a
// successful result, and never caches a failure (spec.md §4.8).
func (rc *ResultCache) GetOrCompute(ctx context.Context, key types.CacheKey, compute func(ctx context.Context) (types.ImprovementResult, *errors.Error)) (types.ImprovementResult, *errors.Error) {
	if result, ok := rc.Get(key); ok {
		return result, nil
	}

	v, err, _ := rc.sf.Do(string(key), func() (interface{}, error) {
		result, cerr := compute(ctx)
		if cerr != nil {
			return types.ImprovementResult{}, cerr
		}
		rc.Put(key, result)
		return result, nil
	})
	if err != nil {
		if ee, ok := err.(*errors.Error); ok {
			return types.ImprovementResult{}, ee
		}
		return types.ImprovementResult{}, errors.Wrap(errors.KindInternal, "cache compute failed", err)
	}
	return v.(types.ImprovementResult), nil
}

type mapStore struct {
	mu sync.RWMutex
	m  map[types.CacheKey]types.CacheEntry
}

func newMapStore() *mapStore {
	return &mapStore{m: make(map[types.CacheKey]types.CacheEntry)}
}

func (s *mapStore) get(k types.CacheKey) (types.CacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.m[k]
	return e, ok
}

func (s *mapStore) put(k types.CacheKey, v types.CacheEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[k] = v
}

type lruStore struct {
	c *lru.Cache[types.CacheKey, types.CacheEntry]
}

func newLRUStore(size int) *lruStore {
	c, _ := lru.New[types.CacheKey, types.CacheEntry](size)
	return &lruStore{c: c}
}

func (s *lruStore) get(k types.CacheKey) (types.CacheEntry, bool) {
	return s.c.Get(k)
}

func (s *lruStore) put(k types.CacheKey, v types.CacheEntry) {
	s.c.Add(k, v)
}
