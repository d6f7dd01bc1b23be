package service

import (
	"fmt"
	"testing"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestResponseCache_PutGet(t *testing.T) {
	c := NewResponseCache(10)
	entry := CacheEntry{Answer: "MATLAB runs on SRV00002.", ContextCount: 4, HistoryLength: 1}

	c.Put("k1", entry)

	got, ok := c.Get("k1")
	require.True(t, ok)
	require.Equal(t, entry, got)

	_, ok = c.Get("k2")
	require.False(t, ok)
}

func TestResponseCache_LRUEviction(t *testing.T) {
	c := NewResponseCache(3)
	for i := 1; i <= 3; i++ {
		c.Put(fmt.Sprintf("k%d", i), CacheEntry{Answer: fmt.Sprintf("a%d", i)})
	}

	// touch k1, making k2 the least recently used
	_, ok := c.Get("k1")
	require.True(t, ok)

	c.Put("k4", CacheEntry{Answer: "a4"})

	_, ok = c.Get("k2")
	require.False(t, ok)
	_, ok = c.Get("k1")
	require.True(t, ok)
	_, ok = c.Get("k4")
	require.True(t, ok)
	require.Equal(t, 3, c.Len())
}

func TestResponseCache_InvalidateAll(t *testing.T) {
	c := NewResponseCache(10)
	c.Put("k1", CacheEntry{Answer: "a1"})
	c.Put("k2", CacheEntry{Answer: "a2"})

	c.InvalidateAll()

	require.Equal(t, 0, c.Len())
	_, ok := c.Get("k1")
	require.False(t, ok)
}

func TestNormalizeQuery(t *testing.T) {
	require.Equal(t, "list all software", NormalizeQuery("  List   ALL\tsoftware "))
}

func TestContextSignature_DependsOnContent(t *testing.T) {
	empty := ContextSignature(nil)
	one := ContextSignature([]domain.ConversationTurn{{Question: "q", Answer: "a"}})
	other := ContextSignature([]domain.ConversationTurn{{Question: "q", Answer: "b"}})

	require.NotEqual(t, empty, one)
	require.NotEqual(t, one, other)
	require.Equal(t, one, ContextSignature([]domain.ConversationTurn{{Question: "q", Answer: "a"}}))
}

func TestCacheKey_ContextSensitive(t *testing.T) {
	sig1 := ContextSignature(nil)
	sig2 := ContextSignature([]domain.ConversationTurn{{Question: "q", Answer: "a"}})

	require.NotEqual(t, CacheKey("list all software", sig1), CacheKey("list all software", sig2))
	require.Equal(t, CacheKey("list all software", sig1), CacheKey("list all software", sig1))
}
