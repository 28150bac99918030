package storage

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/baharkarakas/rentacar-backend/internal/models"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL overrides the endpoint in returned image URLs, e.g. a CDN
	// or reverse proxy in front of the bucket.
	PublicURL string
}

// MinIO stores images in an S3-compatible bucket. The object key is the
// deletion handle.
type MinIO struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       *slog.Logger
}

func NewMinIO(ctx context.Context, cfg MinIOConfig, log *slog.Logger) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client for %s: %w", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("storage bucket created", "bucket", cfg.Bucket)
	}

	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		base = client.EndpointURL().String() + "/" + cfg.Bucket
	}
	return &MinIO{client: client, bucket: cfg.Bucket, publicURL: base, log: log}, nil
}

func (m *MinIO) Upload(ctx context.Context, localPath, folder string) (models.Image, error) {
	ext := strings.ToLower(filepath.Ext(localPath))
	key := path.Join(folder, uuid.NewString()+ext)

	info, err := m.client.FPutObject(ctx, m.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: mime.TypeByExtension(ext),
	})
	if err != nil {
		return models.Image{}, fmt.Errorf("put %s: %w", key, err)
	}
	m.log.Debug("object stored", "bucket", info.Bucket, "key", info.Key, "size", info.Size)
	return models.Image{URL: m.publicURL + "/" + key, Handle: key}, nil
}

func (m *MinIO) Delete(ctx context.Context, handle string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, handle, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", handle, err)
	}
	return nil
}
