package services

import (
	"bytes"
	"fmt"
	"testing"
)

func blobOfSize(n int) Blob {
	return Blob{Data: bytes.Repeat([]byte{0xAB}, n), ContentType: "image/png"}
}

func TestImageCachePutGet(t *testing.T) {
	cache := NewImageCacheService(10, 1<<20)

	want := Blob{Data: []byte("payload"), ContentType: "image/jpeg"}
	cache.Put("http://cdn/a.jpg", want)

	got, ok := cache.Get("http://cdn/a.jpg")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !bytes.Equal(got.Data, want.Data) || got.ContentType != want.ContentType {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if _, ok := cache.Get("http://cdn/missing.jpg"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestImageCacheCountEviction(t *testing.T) {
	cache := NewImageCacheService(3, 1<<20)

	for i := 0; i < 3; i++ {
		cache.Put(fmt.Sprintf("key-%d", i), blobOfSize(10))
	}

	// Touch key-0 so key-1 becomes the eviction candidate.
	if _, ok := cache.Get("key-0"); !ok {
		t.Fatal("key-0 should be cached")
	}

	cache.Put("key-3", blobOfSize(10))

	if _, ok := cache.Get("key-1"); ok {
		t.Error("key-1 should have been evicted as least recently used")
	}
	for _, key := range []string{"key-0", "key-2", "key-3"} {
		if _, ok := cache.Get(key); !ok {
			t.Errorf("%s should have survived eviction", key)
		}
	}
	if got := cache.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}

func TestImageCacheCostEviction(t *testing.T) {
	cache := NewImageCacheService(100, 100)

	cache.Put("a", blobOfSize(40))
	cache.Put("b", blobOfSize(40))
	cache.Put("c", blobOfSize(40)) // pushes total to 120, evicts "a"

	if _, ok := cache.Get("a"); ok {
		t.Error("oldest entry should have been evicted to satisfy the cost bound")
	}
	if got := cache.Cost(); got > 100 {
		t.Errorf("Cost() = %d, want <= 100", got)
	}
	if _, ok := cache.Get("c"); !ok {
		t.Error("newest entry must survive eviction")
	}
}

func TestImageCacheOversizedEntryStays(t *testing.T) {
	cache := NewImageCacheService(100, 50)

	// A single entry may exceed the cost bound; eviction never empties the
	// cache below one entry.
	cache.Put("huge", blobOfSize(200))

	if _, ok := cache.Get("huge"); !ok {
		t.Error("sole entry should not evict itself")
	}
	if got := cache.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestImageCacheReplaceAdjustsCost(t *testing.T) {
	cache := NewImageCacheService(10, 1<<20)

	cache.Put("key", blobOfSize(100))
	cache.Put("key", blobOfSize(30))

	if got := cache.Cost(); got != 30 {
		t.Errorf("Cost() = %d, want 30 after replacement", got)
	}
	if got := cache.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestImageCacheRemoveAndFlush(t *testing.T) {
	cache := NewImageCacheService(10, 1<<20)

	cache.Put("a", blobOfSize(10))
	cache.Put("b", blobOfSize(10))

	cache.Remove("a")
	if _, ok := cache.Get("a"); ok {
		t.Error("removed entry should miss")
	}

	cache.Flush()
	if got := cache.Len(); got != 0 {
		t.Errorf("Len() = %d after Flush, want 0", got)
	}
	if got := cache.Cost(); got != 0 {
		t.Errorf("Cost() = %d after Flush, want 0", got)
	}
}
