package openrouter

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/flashgen/flashgen-api/internal/llm"
	"github.com/flashgen/flashgen-api/internal/llm/schema"
)

// ResponseCache is a bounded, TTL-evicting in-process cache of completion
// responses. It is a performance optimization only: entries may be stale
// relative to model updates and a concurrent miss merely costs a duplicate
// upstream call. Safe for concurrent use.
//
// The cache is an explicit constructor dependency of the gateway; it is
// created once per process and cleared only through Clear.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	// order tracks insertion order for eviction when the cache is full.
	order []string

	maxSize int
	ttl     time.Duration
}

type cacheEntry struct {
	response  llm.Response
	expiresAt time.Time
}

// Cache defaults: 100 entries, 5 minute lifetime.
const (
	DefaultCacheSize = 100
	DefaultCacheTTL  = 5 * time.Minute
)

// NewResponseCache creates a cache bounded to maxSize entries with the given
// per-entry TTL. Non-positive arguments fall back to the defaults.
func NewResponseCache(maxSize int, ttl time.Duration) *ResponseCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResponseCache{
		entries: make(map[string]cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get returns the cached response for key, or nil when absent or expired.
// Expired entries are dropped on access.
func (c *ResponseCache) Get(key string) *llm.Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		c.removeLocked(key)
		return nil
	}

	resp := entry.response
	resp.FromCache = true
	return &resp
}

// Put stores a response under key, evicting the oldest insertion when full.
// Last writer wins on concurrent population of the same key; both writers
// hold valid responses to the same request.
func (c *ResponseCache) Put(key string, resp *llm.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.entries) >= c.maxSize && len(c.order) > 0 {
			c.removeLocked(c.order[0])
		}
		c.order = append(c.order, key)
	}

	c.entries[key] = cacheEntry{
		response:  *resp,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Len reports the number of live entries, expired ones included until their
// next access.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	c.order = nil
}

func (c *ResponseCache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// cacheKeyPayload is the stable serialization the cache key is derived from:
// everything that influences the upstream response.
type cacheKeyPayload struct {
	Model          string                 `json:"model"`
	SystemMessage  string                 `json:"system_message"`
	Messages       []llm.Message          `json:"messages"`
	Params         llm.Params             `json:"params"`
	ResponseFormat *schema.ResponseFormat `json:"response_format,omitempty"`
}

// cacheKey derives the cache key for a fully resolved request.
func cacheKey(model, systemMessage string, messages []llm.Message, params llm.Params, format *schema.ResponseFormat) string {
	payload := cacheKeyPayload{
		Model:          model,
		SystemMessage:  systemMessage,
		Messages:       messages,
		Params:         params,
		ResponseFormat: format,
	}

	// Struct field order makes json.Marshal deterministic here.
	raw, err := json.Marshal(payload)
	if err != nil {
		// Marshalling these plain structs cannot realistically fail; an
		// unkeyable request just bypasses the cache.
		return ""
	}

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
