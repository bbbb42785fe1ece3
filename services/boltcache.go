package services

import (
	"context"
	"encoding/json"
	"os"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

var bucketResponses = []byte("responses")

// BoltCacheService is the default durable media tier: an on-disk response
// cache surviving restarts. Best-effort only; a lost or corrupt entry just
// means a re-download.
type BoltCacheService struct {
	appContext.DefaultService

	db   *bolt.DB
	path string
}

const BOLT_CACHE_SVC = "bolt_cache_svc"

func NewBoltCacheService(path string) *BoltCacheService {
	return &BoltCacheService{path: path}
}

func (svc BoltCacheService) Id() string {
	return BOLT_CACHE_SVC
}

func (svc *BoltCacheService) Configure(ctx *appContext.Context) error {
	if svc.path == "" {
		svc.path = os.Getenv("MEDIA_CACHE_PATH")
	}
	if svc.path == "" {
		svc.path = "media_cache.db"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *BoltCacheService) Start() (err error) {
	svc.db, err = bolt.Open(svc.path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return err
	}

	return svc.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketResponses)
		return err
	})
}

func (svc *BoltCacheService) Shutdown() {
	if svc.db != nil {
		svc.db.Close()
	}
}

// Get loads a cached response blob. Any failure reads as a miss.
func (svc *BoltCacheService) Get(_ context.Context, key string) (Blob, bool) {
	var data []byte
	svc.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketResponses).Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return Blob{}, false
	}

	var blob Blob
	if err := json.Unmarshal(data, &blob); err != nil {
		log.WithError(err).WithField("key", key).Warn("Dropping corrupt cache entry")
		svc.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketResponses).Delete([]byte(key))
		})
		return Blob{}, false
	}
	return blob, true
}

// Put stores a response blob.
func (svc *BoltCacheService) Put(_ context.Context, key string, blob Blob) error {
	data, err := json.Marshal(blob)
	if err != nil {
		return err
	}
	return svc.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResponses).Put([]byte(key), data)
	})
}
