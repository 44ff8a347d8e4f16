package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"spamlens/internal/domain"
)

const (
	defaultSize = 256
	defaultTTL  = 10 * time.Minute
)

type cacheEntry struct {
	exp domain.Explanation
	gen uint64
}

// ExplanationCache is an in-memory LRU of explanations with a TTL.
// Invalidate bumps a generation counter so entries written by requests
// that started before the invalidation are never served.
type ExplanationCache struct {
	mu  sync.RWMutex
	lru *expirable.LRU[string, cacheEntry]
	gen uint64
}

func NewExplanationCache(maxSize int, ttl time.Duration) *ExplanationCache {
	if maxSize <= 0 {
		maxSize = defaultSize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ExplanationCache{
		lru: expirable.NewLRU[string, cacheEntry](maxSize, nil, ttl),
	}
}

// Key identifies an explanation by everything that determines it. Only
// seeded requests produce reproducible output, so unseeded ones report
// ok=false.
func Key(scope string, req domain.ExplainRequest) (key string, ok bool) {
	if req.Seed == nil {
		return "", false
	}
	h := sha256.New()
	writeString := func(s string) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}
	writeInt := func(v uint64) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], v)
		h.Write(n[:])
	}
	writeString(scope)
	writeString(req.Document)
	writeInt(uint64(req.TargetClass))
	writeInt(uint64(req.NumFeatures))
	writeInt(uint64(req.NumSamples))
	writeInt(*req.Seed)
	return hex.EncodeToString(h.Sum(nil)), true
}

func (c *ExplanationCache) Get(key string) (domain.Explanation, bool) {
	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	entry, ok := c.lru.Get(key)
	if !ok {
		return domain.Explanation{}, false
	}
	if entry.gen != gen {
		c.lru.Remove(key)
		return domain.Explanation{}, false
	}
	return entry.exp, true
}

func (c *ExplanationCache) Put(key string, exp domain.Explanation) {
	c.PutAt(key, exp, c.Generation())
}

// PutAt stores exp only if no invalidation happened since gen was read.
func (c *ExplanationCache) PutAt(key string, exp domain.Explanation, gen uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if gen != c.gen {
		return
	}
	c.lru.Add(key, cacheEntry{exp: exp, gen: gen})
}

func (c *ExplanationCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

func (c *ExplanationCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.gen++
}

func (c *ExplanationCache) Size() int {
	return c.lru.Len()
}
