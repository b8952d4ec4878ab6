package infra

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/tnqbao/gau-media-gateway/config"
	"github.com/tnqbao/gau-media-gateway/entity"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ObjectStorage is the protocol adapter in front of an S3-compatible store.
// Implementations hold configuration only and are safe for concurrent use.
type ObjectStorage interface {
	DeleteObject(ctx context.Context, bucket, key string) error
	PutTarget(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (*entity.WriteTarget, error)
	PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	Ready(ctx context.Context) error
}

var storageTracer = otel.Tracer("github.com/tnqbao/gau-media-gateway/infra/storage")

func InitStorage(cfg *config.EnvConfig) (ObjectStorage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMinio:
		return NewMinioStorage(cfg)
	case config.StorageDriverS3:
		return NewS3Storage(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func startStorageSpan(ctx context.Context, driver, op, bucket, key string) (context.Context, trace.Span) {
	return storageTracer.Start(ctx, "storage."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("storage.driver", driver),
			attribute.String("storage.bucket", bucket),
			attribute.String("storage.key", key),
		),
	)
}

func endStorageSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
