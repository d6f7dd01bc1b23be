package service

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
)

// CacheEntry is one memoized answer with the metadata needed to replay it
// byte-identically.
type CacheEntry struct {
	Answer        string
	ContextCount  int
	HistoryLength int
}

// ResponseCache memoizes final answers under (normalized query, context
// signature) keys with bounded-capacity LRU eviction. The whole cache is
// invalidated whenever the embedding index is rebuilt, since retrieval
// results may change.
type ResponseCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
}

type cacheItem struct {
	key   string
	entry CacheEntry
}

// NewResponseCache creates a cache holding at most capacity entries.
func NewResponseCache(capacity int) *ResponseCache {
	if capacity <= 0 {
		capacity = 100
	}
	return &ResponseCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the entry for key and marks it most recently used.
func (c *ResponseCache) Get(key string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return CacheEntry{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheItem).entry, true
}

// Put stores the entry, evicting the least recently used one past capacity.
func (c *ResponseCache) Put(key string, entry CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheItem).entry = entry
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheItem).key)
		}
	}
	c.entries[key] = c.order.PushFront(&cacheItem{key: key, entry: entry})
}

// InvalidateAll drops every entry. Called after each index rebuild.
func (c *ResponseCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of cached entries.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// NormalizeQuery canonicalizes query text for cache keying.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// ContextSignature digests the conversation state an answer was produced
// under. Identical text asked in two different conversational contexts must
// key differently, so the signature covers both length and content.
func ContextSignature(turns []domain.ConversationTurn) string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(len(turns))))
	for _, t := range turns {
		h.Write([]byte{0})
		h.Write([]byte(t.Question))
		h.Write([]byte{0})
		h.Write([]byte(t.Answer))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CacheKey combines a normalized query with a context signature.
func CacheKey(normalizedQuery, contextSignature string) string {
	sum := sha256.Sum256([]byte(normalizedQuery + "\x00" + contextSignature))
	return hex.EncodeToString(sum[:])
}
