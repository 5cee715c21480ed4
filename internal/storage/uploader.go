package storage

import (
	"context"
	"fmt"
	"time"

	"fieldsafe-sync-server/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// UploadURLSigner produces the upload target handed back to clients for each
// attachment placeholder. The binary upload happens out-of-band against that
// URL; the server only tracks placeholder state.
type UploadURLSigner interface {
	SignUpload(ctx context.Context, attachmentID, objectKey string) (string, error)
}

type minioSigner struct {
	client     *minio.Client
	bucket     string
	expiration time.Duration
}

func NewMinioSigner(cfg config.StorageConfig) (UploadURLSigner, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.UseSSL,
		BucketLookup: minio.BucketLookupAuto,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage client: %w", err)
	}

	return &minioSigner{
		client:     client,
		bucket:     cfg.Bucket,
		expiration: cfg.URLExpiration,
	}, nil
}

func (s *minioSigner) SignUpload(ctx context.Context, _, objectKey string) (string, error) {
	presigned, err := s.client.PresignedPutObject(ctx, s.bucket, objectKey, s.expiration)
	if err != nil {
		return "", fmt.Errorf("failed to presign upload for %s: %w", objectKey, err)
	}

	return presigned.String(), nil
}

// localSigner is used when no object store is configured. Clients complete
// uploads through the attachment content endpoint instead.
type localSigner struct {
	basePath string
}

func NewLocalSigner(basePath string) UploadURLSigner {
	return &localSigner{basePath: basePath}
}

func (s *localSigner) SignUpload(_ context.Context, attachmentID, _ string) (string, error) {
	return fmt.Sprintf("%s/%s/content", s.basePath, attachmentID), nil
}
