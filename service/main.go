package service

import (
	"context"
	"io"
	"time"

	"github.com/tnqbao/gau-media-gateway/config"
	"github.com/tnqbao/gau-media-gateway/entity"
	"github.com/tnqbao/gau-media-gateway/infra"
	"github.com/tnqbao/gau-media-gateway/infra/produce"
	"github.com/tnqbao/gau-media-gateway/repository"
)

// StorageClient is the slice of the object store the handlers need.
type StorageClient interface {
	DeleteObject(ctx context.Context, bucket, key string) error
	PutTarget(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (*entity.WriteTarget, error)
	PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
}

type RouteLookup interface {
	Lookup(name string) (entity.RoutePolicy, error)
}

type EventPublisher interface {
	PublishUploadCompleted(ctx context.Context, msg produce.UploadCompletedMessage) error
	PublishAssetsDeleted(ctx context.Context, msg produce.AssetsDeletedMessage) error
}

// CompletionDeduper remembers completion notices already handled.
type CompletionDeduper interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
}

type Service struct {
	Upload   *UploadService
	Deletion *DeletionService
}

func InitService(cfg *config.Config, inf *infra.Infra, repo *repository.Repository) (*Service, error) {
	env := cfg.EnvConfig

	locator, err := NewAssetLocator(env)
	if err != nil {
		return nil, err
	}

	metrics := infra.NewNopMediaMetrics()
	if inf.Telemetry != nil && inf.Telemetry.Metrics != nil {
		metrics = inf.Telemetry.Metrics
	}

	upload := NewUploadService(UploadOptions{
		Bucket:        env.Storage.Bucket,
		Mode:          env.Upload.Mode,
		TargetTTL:     env.Upload.TargetTTL,
		SigningKey:    env.Upload.SigningKey,
		PublicBaseURL: env.Upload.PublicBaseURL,
	}, repo.RouteRepo, inf.Storage, locator, inf.Logger, metrics)

	deletion := NewDeletionService(DeletionOptions{
		Bucket:      env.Storage.Bucket,
		Concurrency: env.Delete.Concurrency,
		Timeout:     env.Delete.Timeout,
	}, inf.Storage, locator, inf.Logger, metrics)

	if inf.Produce != nil && inf.Produce.MediaService != nil {
		upload.SetEventPublisher(inf.Produce.MediaService)
		deletion.SetEventPublisher(inf.Produce.MediaService)
	}
	if inf.Redis != nil {
		upload.SetCompletionDeduper(inf.Redis)
	}

	return &Service{Upload: upload, Deletion: deletion}, nil
}
