package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tnqbao/gau-media-gateway/config"
	"github.com/tnqbao/gau-media-gateway/entity"
)

type MinioStorage struct {
	Client   *minio.Client
	Endpoint string
	Bucket   string
}

func NewMinioStorage(cfg *config.EnvConfig) (*MinioStorage, error) {
	endpoint := cfg.Storage.Endpoint
	accessKey := cfg.Storage.AccessKeyID
	secretKey := cfg.Storage.SecretAccessKey

	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("MinIO configuration is incomplete")
	}

	// Region is set explicitly so presigning never needs a bucket-location round trip.
	// One attempt per call: callers report failures per item and never retry.
	client, err := minio.New(endpoint, &minio.Options{
		Creds:      credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:     cfg.Storage.UseSSL,
		Region:     cfg.Storage.Region,
		MaxRetries: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	return &MinioStorage{
		Client:   client,
		Endpoint: endpoint,
		Bucket:   cfg.Storage.Bucket,
	}, nil
}

// DeleteObject removes an object. Removing a missing key succeeds.
func (m *MinioStorage) DeleteObject(ctx context.Context, bucket, key string) (err error) {
	if bucket == "" || key == "" {
		return fmt.Errorf("bucket and key cannot be empty")
	}

	ctx, span := startStorageSpan(ctx, "minio", "DeleteObject", bucket, key)
	defer func() { endStorageSpan(span, err) }()

	if err := m.Client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", classifyMinioError(err))
	}
	return nil
}

// PutTarget presigns a PUT with the Content-Type header bound into the signature.
func (m *MinioStorage) PutTarget(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (target *entity.WriteTarget, err error) {
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("bucket and key cannot be empty")
	}

	ctx, span := startStorageSpan(ctx, "minio", "PutTarget", bucket, key)
	defer func() { endStorageSpan(span, err) }()

	headers := http.Header{}
	headers.Set("Content-Type", contentType)

	u, err := m.Client.PresignHeader(ctx, http.MethodPut, bucket, key, ttl, nil, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", classifyMinioError(err))
	}

	expiresAt := time.Now().Add(ttl).UTC()
	return &entity.WriteTarget{
		Method:    http.MethodPut,
		URL:       u.String(),
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresAt: &expiresAt,
	}, nil
}

// PutObject streams body into the bucket. size may be -1 when unknown.
func (m *MinioStorage) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) (err error) {
	if bucket == "" || key == "" {
		return fmt.Errorf("bucket and key cannot be empty")
	}

	ctx, span := startStorageSpan(ctx, "minio", "PutObject", bucket, key)
	defer func() { endStorageSpan(span, err) }()

	_, err = m.Client.PutObject(ctx, bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", classifyMinioError(err))
	}
	return nil
}

// Ready checks that the configured bucket is reachable.
func (m *MinioStorage) Ready(ctx context.Context) error {
	exists, err := m.Client.BucketExists(ctx, m.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", classifyMinioError(err))
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", m.Bucket)
	}
	return nil
}

func classifyMinioError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey":
		return fmt.Errorf("%w: %v", ErrObjectNotFound, err)
	}
	return classifyNetworkError(err)
}
