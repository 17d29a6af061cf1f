package client

import (
	"context"
	"fmt"
	"io"
	"strings"

	"vntrips/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL overrides the generated object URL base, for CDN fronting.
	PublicURL string
}

// StorageClient wraps the S3-compatible object store holding catalog images.
type StorageClient struct {
	api    *minio.Client
	cfg    StorageConfig
	log    *logger.Logger
}

func NewStorageClient(log *logger.Logger, cfg StorageConfig) *StorageClient {
	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatal("Failed to initialize object storage client",
			"endpoint", cfg.Endpoint,
			"error", err,
		)
	}

	log.Info("Object storage client initialized",
		"endpoint", cfg.Endpoint,
		"bucket", cfg.Bucket,
	)
	return &StorageClient{api: api, cfg: cfg, log: log}
}

// Put stores an object and returns its public URL.
func (s *StorageClient) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.api.PutObject(ctx, s.cfg.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object %s: %w", key, err)
	}
	return s.ObjectURL(key), nil
}

// Remove deletes an object. Callers treat failures as non-fatal leaks: the
// owning document mutation has already committed.
func (s *StorageClient) Remove(ctx context.Context, key string) error {
	if err := s.api.RemoveObject(ctx, s.cfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}

func (s *StorageClient) ObjectURL(key string) string {
	if s.cfg.PublicURL != "" {
		return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/" + key
	}
	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket, key)
}
