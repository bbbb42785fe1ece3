package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	appContext "github.com/alphabatem/common/context"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// MinIOService is an alternate durable media tier backed by object storage,
// for deployments that already run MinIO. One object per cached URL, named
// by the hash of the cache key.
type MinIOService struct {
	appContext.DefaultService

	client     *minio.Client
	bucketName string
	endpoint   string
	accessKey  string
	secretKey  string
	useSSL     bool
}

const MINIO_SVC = "minio_svc"

func (svc MinIOService) Id() string {
	return MINIO_SVC
}

func (svc *MinIOService) Configure(ctx *appContext.Context) error {
	svc.endpoint = os.Getenv("MINIO_ENDPOINT")
	if svc.endpoint == "" {
		svc.endpoint = "localhost:9000"
	}

	svc.accessKey = os.Getenv("MINIO_ACCESS_KEY")
	if svc.accessKey == "" {
		svc.accessKey = "admin"
	}

	svc.secretKey = os.Getenv("MINIO_SECRET_KEY")
	if svc.secretKey == "" {
		svc.secretKey = "password123"
	}

	svc.useSSL = os.Getenv("MINIO_USE_SSL") == "true"

	svc.bucketName = os.Getenv("MINIO_BUCKET_NAME")
	if svc.bucketName == "" {
		svc.bucketName = "quizsync-media"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *MinIOService) Start() error {
	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}

	svc.client = client

	if err := svc.ensureBucket(); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %v", err)
	}

	log.Printf("MinIO media cache started with endpoint: %s", svc.endpoint)
	return nil
}

func (svc *MinIOService) ensureBucket() error {
	ctx := context.Background()

	exists, err := svc.client.BucketExists(ctx, svc.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = svc.client.MakeBucket(ctx, svc.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("Created MinIO bucket: %s", svc.bucketName)
	}

	return nil
}

// Get loads a cached response blob. Missing objects and read failures both
// read as a miss.
func (svc *MinIOService) Get(ctx context.Context, key string) (Blob, bool) {
	objectName := hashKey(key)

	obj, err := svc.client.GetObject(ctx, svc.bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return Blob{}, false
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return Blob{}, false
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("Failed to read cached object")
		return Blob{}, false
	}

	return Blob{Data: data, ContentType: info.ContentType}, true
}

// Put stores a response blob as one object.
func (svc *MinIOService) Put(ctx context.Context, key string, blob Blob) error {
	objectName := hashKey(key)

	_, err := svc.client.PutObject(ctx, svc.bucketName, objectName,
		bytes.NewReader(blob.Data), int64(len(blob.Data)), minio.PutObjectOptions{
			ContentType: blob.ContentType,
		})
	if err != nil {
		return fmt.Errorf("failed to upload cache object: %v", err)
	}
	return nil
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
