package sink

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig holds connection settings for an S3-compatible object store.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// MinIO uploads artifacts as objects in a single bucket.
type MinIO struct {
	client *minio.Client
	bucket string
}

// NewMinIO connects to the store and creates the bucket if it is missing.
func NewMinIO(ctx context.Context, cfg MinIOConfig) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinIO{client: client, bucket: cfg.Bucket}, nil
}

// Write implements Sink.
func (m *MinIO) Write(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	key := objectKey(name)
	dest := m.bucket + "/" + key
	if key == "" {
		return dest, &WriteError{Dest: dest, Err: fmt.Errorf("empty object name")}
	}
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType(key),
	})
	if err != nil {
		return dest, &WriteError{Dest: dest, Err: err}
	}
	return dest, nil
}

// objectKey maps a local-style path to an object key.
func objectKey(name string) string {
	key := filepath.ToSlash(filepath.Clean(name))
	key = strings.TrimLeft(key, "/")
	if key == "." {
		return ""
	}
	return key
}

func contentType(key string) string {
	if strings.EqualFold(filepath.Ext(key), ".json") {
		return "application/json; charset=utf-8"
	}
	return "application/octet-stream"
}
