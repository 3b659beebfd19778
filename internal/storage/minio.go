// Package storage provides object storage for answer attachments and
// compiled documents, backed by MinIO.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore is the blob-store surface the uploader and the compile path
// need. Put must fail when the key already exists; silent replacement of a
// stored attachment is never acceptable.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Bucket() string
}

var (
	// ErrObjectExists indicates a key collision on Put.
	ErrObjectExists = errors.New("storage: object already exists")
)

// MinioStore implements ObjectStore against a single MinIO bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to MinIO and ensures the bucket exists.
func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey string, useSSL bool, bucket string) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	return &MinioStore{client: client, bucket: bucket}, nil
}

func (s *MinioStore) Bucket() string { return s.bucket }

// Put writes one object. Upsert is disabled: an existing key is a collision
// error, not a replacement.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err == nil {
		return fmt.Errorf("%w: %s", ErrObjectExists, key)
	} else if resp := minio.ToErrorResponse(err); resp.Code != "NoSuchKey" {
		return fmt.Errorf("stat object %s: %w", key, err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// SignedURL returns a time-limited download URL for one stored object.
func (s *MinioStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	signed, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("sign url for %s: %w", key, err)
	}
	return signed.String(), nil
}
