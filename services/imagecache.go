package services

import (
	"container/list"
	"os"
	"strconv"
	"sync"

	"github.com/alphabatem/common/context"
)

const (
	DefaultCacheCountLimit = 100
	DefaultCacheCostLimit  = 50 << 20 // 50MB
)

// Blob is a cached media payload.
type Blob struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

// Cost is the byte weight used for eviction accounting.
func (b Blob) Cost() int {
	return len(b.Data)
}

// ImageCacheService is the in-memory media tier: an LRU keyed by source URL
// bounded by both an item count and a total byte cost. Safe for concurrent
// use; prefetch tasks hit it in an unordered fan-out.
type ImageCacheService struct {
	context.DefaultService

	mu        sync.Mutex
	entries   map[string]*list.Element
	lru       *list.List // front = most recently used
	totalCost int

	countLimit int
	costLimit  int
}

type cacheEntry struct {
	key  string
	blob Blob
}

const IMAGE_CACHE_SVC = "image_cache_svc"

// NewImageCacheService builds a cache with the given bounds; zero or
// negative values fall back to the defaults.
func NewImageCacheService(countLimit, costLimit int) *ImageCacheService {
	svc := &ImageCacheService{countLimit: countLimit, costLimit: costLimit}
	svc.applyDefaults()
	return svc
}

func (svc ImageCacheService) Id() string {
	return IMAGE_CACHE_SVC
}

func (svc *ImageCacheService) Configure(ctx *context.Context) error {
	if svc.countLimit <= 0 {
		if s := os.Getenv("IMAGE_CACHE_MAX_ITEMS"); s != "" {
			svc.countLimit, _ = strconv.Atoi(s)
		}
	}
	if svc.costLimit <= 0 {
		if s := os.Getenv("IMAGE_CACHE_MAX_BYTES"); s != "" {
			svc.costLimit, _ = strconv.Atoi(s)
		}
	}
	svc.applyDefaults()

	return svc.DefaultService.Configure(ctx)
}

func (svc *ImageCacheService) applyDefaults() {
	if svc.countLimit <= 0 {
		svc.countLimit = DefaultCacheCountLimit
	}
	if svc.costLimit <= 0 {
		svc.costLimit = DefaultCacheCostLimit
	}
	if svc.entries == nil {
		svc.entries = make(map[string]*list.Element)
		svc.lru = list.New()
	}
}

// Get returns the cached blob for key and marks it recently used.
func (svc *ImageCacheService) Get(key string) (Blob, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	el, ok := svc.entries[key]
	if !ok {
		return Blob{}, false
	}
	svc.lru.MoveToFront(el)
	return el.Value.(*cacheEntry).blob, true
}

// Put inserts or replaces the blob for key, then evicts least-recently-used
// entries until both the count and cost bounds hold again.
func (svc *ImageCacheService) Put(key string, blob Blob) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if el, ok := svc.entries[key]; ok {
		entry := el.Value.(*cacheEntry)
		svc.totalCost += blob.Cost() - entry.blob.Cost()
		entry.blob = blob
		svc.lru.MoveToFront(el)
	} else {
		svc.entries[key] = svc.lru.PushFront(&cacheEntry{key: key, blob: blob})
		svc.totalCost += blob.Cost()
	}

	for (svc.lru.Len() > svc.countLimit || svc.totalCost > svc.costLimit) && svc.lru.Len() > 1 {
		svc.evictOldest()
	}
}

// Remove drops one entry.
func (svc *ImageCacheService) Remove(key string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if el, ok := svc.entries[key]; ok {
		svc.removeElement(el)
	}
}

// Flush empties the memory tier.
func (svc *ImageCacheService) Flush() {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.entries = make(map[string]*list.Element)
	svc.lru.Init()
	svc.totalCost = 0
}

// Len returns the current entry count.
func (svc *ImageCacheService) Len() int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.lru.Len()
}

// Cost returns the current total byte cost.
func (svc *ImageCacheService) Cost() int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.totalCost
}

func (svc *ImageCacheService) evictOldest() {
	el := svc.lru.Back()
	if el == nil {
		return
	}
	svc.removeElement(el)
	mediaEvictionsTotal.Inc()
}

func (svc *ImageCacheService) removeElement(el *list.Element) {
	entry := el.Value.(*cacheEntry)
	svc.lru.Remove(el)
	delete(svc.entries, entry.key)
	svc.totalCost -= entry.blob.Cost()
}
