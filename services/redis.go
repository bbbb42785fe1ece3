package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisService is an alternate durable media tier for server-side
// embeddings of the library, where a shared response cache beats a local
// file. Entries expire after a TTL instead of being evicted by size.
type RedisService struct {
	appContext.DefaultService

	redis *redis.Client
	ttl   time.Duration
}

const REDIS_SVC = "redis_svc"

const mediaKeyPrefix = "media:"

func NewRedisService(client *redis.Client, ttl time.Duration) *RedisService {
	return &RedisService{redis: client, ttl: ttl}
}

func (svc RedisService) Id() string {
	return REDIS_SVC
}

func (svc *RedisService) Configure(ctx *appContext.Context) error {
	if svc.redis == nil {
		svc.initRedisClient()
	}
	if svc.ttl == 0 {
		svc.ttl = 168 * time.Hour
		if s := os.Getenv("MEDIA_CACHE_TTL_HOURS"); s != "" {
			if hours, err := strconv.Atoi(s); err == nil && hours > 0 {
				svc.ttl = time.Duration(hours) * time.Hour
			}
		}
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *RedisService) Start() error {
	if svc.redis != nil {
		ctx := context.Background()
		_, err := svc.redis.Ping(ctx).Result()
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}
	return nil
}

func (svc *RedisService) initRedisClient() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisPassword := os.Getenv("REDIS_PASSWORD")

	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			redisDB = db
		}
	}

	svc.redis = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
}

func (svc *RedisService) GetClient() *redis.Client {
	return svc.redis
}

// Get loads a cached response blob. redis.Nil and decode failures both
// read as a miss.
func (svc *RedisService) Get(ctx context.Context, key string) (Blob, bool) {
	data, err := svc.redis.Get(ctx, mediaKeyPrefix+key).Bytes()
	if err != nil {
		return Blob{}, false
	}

	var blob Blob
	if err := json.Unmarshal(data, &blob); err != nil {
		log.WithError(err).WithField("key", key).Warn("Dropping corrupt cache entry")
		svc.redis.Del(ctx, mediaKeyPrefix+key)
		return Blob{}, false
	}
	return blob, true
}

// Put stores a response blob with the configured TTL.
func (svc *RedisService) Put(ctx context.Context, key string, blob Blob) error {
	data, err := json.Marshal(blob)
	if err != nil {
		return err
	}
	return svc.redis.Set(ctx, mediaKeyPrefix+key, data, svc.ttl).Err()
}
