package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/tnqbao/gau-media-gateway/config"
	"github.com/tnqbao/gau-media-gateway/entity"
)

// S3Storage talks to any S3-compatible endpoint through the AWS SDK, using path-style addressing.
type S3Storage struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
	Endpoint  string
	Bucket    string
}

func NewS3Storage(ctx context.Context, cfg *config.EnvConfig) (*S3Storage, error) {
	if cfg.Storage.Endpoint == "" || cfg.Storage.AccessKeyID == "" || cfg.Storage.SecretAccessKey == "" {
		return nil, fmt.Errorf("S3 configuration is incomplete")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Storage.Region),
		awsconfig.WithRetryMaxAttempts(1),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKeyID,
			cfg.Storage.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 configuration: %w", err)
	}

	endpoint := cfg.Storage.EndpointURL()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
		o.RetryMaxAttempts = 1
	})

	return &S3Storage{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Endpoint:  endpoint,
		Bucket:    cfg.Storage.Bucket,
	}, nil
}

func (s *S3Storage) DeleteObject(ctx context.Context, bucket, key string) (err error) {
	if bucket == "" || key == "" {
		return fmt.Errorf("bucket and key cannot be empty")
	}

	ctx, span := startStorageSpan(ctx, "s3", "DeleteObject", bucket, key)
	defer func() { endStorageSpan(span, err) }()

	_, err = s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", classifyS3Error(err))
	}
	return nil
}

func (s *S3Storage) PutTarget(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (target *entity.WriteTarget, err error) {
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("bucket and key cannot be empty")
	}

	ctx, span := startStorageSpan(ctx, "s3", "PutTarget", bucket, key)
	defer func() { endStorageSpan(span, err) }()

	req, err := s.Presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", classifyS3Error(err))
	}

	headers := make(map[string]string, len(req.SignedHeader))
	for name, values := range req.SignedHeader {
		if http.CanonicalHeaderKey(name) == "Host" || len(values) == 0 {
			continue
		}
		headers[http.CanonicalHeaderKey(name)] = values[0]
	}

	expiresAt := time.Now().Add(ttl).UTC()
	return &entity.WriteTarget{
		Method:    req.Method,
		URL:       req.URL,
		Headers:   headers,
		ExpiresAt: &expiresAt,
	}, nil
}

func (s *S3Storage) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) (err error) {
	if bucket == "" || key == "" {
		return fmt.Errorf("bucket and key cannot be empty")
	}

	ctx, span := startStorageSpan(ctx, "s3", "PutObject", bucket, key)
	defer func() { endStorageSpan(span, err) }()

	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err = s.Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put object: %w", classifyS3Error(err))
	}
	return nil
}

func (s *S3Storage) Ready(ctx context.Context) error {
	_, err := s.Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.Bucket)})
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", classifyS3Error(err))
	}
	return nil
}

func classifyS3Error(err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrObjectNotFound, err)
	}
	// operations without modeled errors, like DeleteObject, surface the code only
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrObjectNotFound, err)
		}
	}
	return classifyNetworkError(err)
}
