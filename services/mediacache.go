package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/fazalrahmanedv/quizsync/shared"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// MediaStore is the durable response-cache tier, keyed by method+URL.
type MediaStore interface {
	Get(ctx context.Context, key string) (Blob, bool)
	Put(ctx context.Context, key string, blob Blob) error
}

// MediaService resolves media URLs through a two-tier cache: memory, then a
// durable store, then the network. Concurrent calls for the same URL are
// collapsed onto a single in-flight download.
type MediaService struct {
	appContext.DefaultService

	memory     *ImageCacheService
	durable    MediaStore
	httpClient *http.Client
	group      singleflight.Group
}

const MEDIA_SVC = "media_svc"

// NewMediaService wires the cache explicitly; durable may be nil for a
// memory-only cache.
func NewMediaService(memory *ImageCacheService, durable MediaStore) *MediaService {
	return &MediaService{
		memory:  memory,
		durable: durable,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (svc MediaService) Id() string {
	return MEDIA_SVC
}

func (svc *MediaService) Configure(ctx *appContext.Context) error {
	if svc.httpClient == nil {
		svc.httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *MediaService) Start() error {
	if svc.memory == nil {
		svc.memory = svc.Service(IMAGE_CACHE_SVC).(*ImageCacheService)
	}
	if svc.durable == nil {
		backend := os.Getenv("MEDIA_CACHE_BACKEND")
		switch backend {
		case "", "bolt":
			svc.durable = svc.Service(BOLT_CACHE_SVC).(*BoltCacheService)
		case "redis":
			svc.durable = svc.Service(REDIS_SVC).(*RedisService)
		case "minio":
			svc.durable = svc.Service(MINIO_SVC).(*MinIOService)
		default:
			return fmt.Errorf("unknown media cache backend: %s", backend)
		}
	}
	return nil
}

// Get checks the memory tier only; it never blocks on disk or network.
func (svc *MediaService) Get(url string) (Blob, bool) {
	blob, ok := svc.memory.Get(url)
	if ok {
		mediaCacheHitsTotal.WithLabelValues("memory").Inc()
	}
	return blob, ok
}

// FetchAndCache resolves url through memory, the durable tier, then the
// network, populating both tiers on the way back. Same-key concurrent
// callers share one download.
func (svc *MediaService) FetchAndCache(ctx context.Context, url string) (Blob, error) {
	if blob, ok := svc.memory.Get(url); ok {
		mediaCacheHitsTotal.WithLabelValues("memory").Inc()
		return blob, nil
	}

	v, err, _ := svc.group.Do(url, func() (interface{}, error) {
		return svc.fetch(ctx, url)
	})
	if err != nil {
		return Blob{}, err
	}
	return v.(Blob), nil
}

func (svc *MediaService) fetch(ctx context.Context, url string) (Blob, error) {
	key := cacheKey(url)

	if svc.durable != nil {
		if blob, ok := svc.durable.Get(ctx, key); ok {
			mediaCacheHitsTotal.WithLabelValues("durable").Inc()
			svc.memory.Put(url, blob)
			return blob, nil
		}
	}
	mediaCacheMissesTotal.Inc()

	log.WithField("url", url).Debug("Downloading media")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Blob{}, &shared.FetchError{URL: url, Err: err}
	}

	resp, err := svc.httpClient.Do(req)
	if err != nil {
		return Blob{}, &shared.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Blob{}, &shared.FetchError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Blob{}, &shared.FetchError{URL: url, Err: err}
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return Blob{}, &shared.FetchError{URL: url, Err: shared.ErrInvalidPayload}
	}

	blob := Blob{Data: data, ContentType: contentType}
	svc.memory.Put(url, blob)
	if svc.durable != nil {
		if err := svc.durable.Put(ctx, key, blob); err != nil {
			log.WithError(err).WithField("url", url).Warn("Failed to write durable cache tier")
		}
	}
	return blob, nil
}

func cacheKey(url string) string {
	return http.MethodGet + " " + url
}
