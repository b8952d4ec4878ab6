package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/tnqbao/gau-media-gateway/entity"
	"github.com/tnqbao/gau-media-gateway/infra"
	"github.com/tnqbao/gau-media-gateway/infra/produce"
	"golang.org/x/sync/errgroup"
)

// Reasons attached to failed deletion items.
const (
	ReasonMalformedURL = "malformed url"
	ReasonCanceled     = "canceled"
	ReasonTimeout      = "timeout"
	ReasonUnavailable  = "backend unavailable"
	ReasonDeleteFailed = "delete failed"
)

type DeletionOptions struct {
	Bucket      string
	Concurrency int
	Timeout     time.Duration
}

type DeletionService struct {
	opts      DeletionOptions
	storage   StorageClient
	resolver  KeyResolver
	logger    *infra.LoggerClient
	metrics   *infra.MediaMetrics
	publisher EventPublisher
}

func NewDeletionService(opts DeletionOptions, storage StorageClient, resolver KeyResolver, logger *infra.LoggerClient, metrics *infra.MediaMetrics) *DeletionService {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if logger == nil {
		logger = infra.NewNopLogger()
	}
	return &DeletionService{
		opts:     opts,
		storage:  storage,
		resolver: resolver,
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *DeletionService) SetEventPublisher(p EventPublisher) {
	s.publisher = p
}

// HandleDelete deletes every referenced asset it can and reports one outcome per input URL,
// in input order. It never retries. Once ctx is done, or the backend is found unreachable,
// no further deletes are issued.
func (s *DeletionService) HandleDelete(ctx context.Context, urls []string) entity.DeletionBatchResult {
	result := entity.DeletionBatchResult{Items: make([]entity.DeletionItem, len(urls))}
	if len(urls) == 0 {
		result.Success = true
		return result
	}

	start := time.Now()
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	issueCtx, stopIssuing := context.WithCancel(ctx)
	defer stopIssuing()

	var unavailable atomic.Bool
	unissued := func(item *entity.DeletionItem) {
		item.Outcome = entity.DeletionFailed
		switch {
		case unavailable.Load():
			item.Reason = ReasonUnavailable
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			item.Reason = ReasonTimeout
		default:
			item.Reason = ReasonCanceled
		}
	}

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)

	for i, raw := range urls {
		item := &result.Items[i]
		item.URL = raw

		key, err := s.resolver.URLToKey(raw)
		if err != nil {
			item.Outcome = entity.DeletionFailed
			item.Reason = ReasonMalformedURL
			s.logger.DebugWithContextf(ctx, "[Delete] Skipping %q: %v", raw, err)
			continue
		}
		item.Key = key

		if issueCtx.Err() != nil {
			unissued(item)
			continue
		}

		g.Go(func() error {
			// the slot may have been granted after the batch was cut short
			if issueCtx.Err() != nil {
				unissued(item)
				return nil
			}
			s.deleteOne(ctx, item, func() {
				unavailable.Store(true)
				stopIssuing()
			})
			return nil
		})
	}
	_ = g.Wait()

	result.Unavailable = unavailable.Load()
	result.Success = result.Count(entity.DeletionDeleted) == len(result.Items)

	s.metrics.RecordDeletion(ctx, result, time.Since(start))
	s.logger.InfoWithContextf(ctx, "[Delete] Batch of %d: deleted=%d not_found=%d failed=%d",
		len(result.Items), result.Count(entity.DeletionDeleted), result.Count(entity.DeletionNotFound), result.Count(entity.DeletionFailed))

	s.publishAudit(context.WithoutCancel(ctx), result)
	return result
}

func (s *DeletionService) deleteOne(ctx context.Context, item *entity.DeletionItem, onUnavailable func()) {
	err := s.storage.DeleteObject(ctx, s.opts.Bucket, item.Key)
	switch {
	case err == nil:
		item.Outcome = entity.DeletionDeleted
	case errors.Is(err, infra.ErrObjectNotFound):
		item.Outcome = entity.DeletionNotFound
	case errors.Is(err, infra.ErrBackendUnavailable):
		item.Outcome = entity.DeletionFailed
		item.Reason = ReasonUnavailable
		onUnavailable()
		s.logger.ErrorWithContextf(ctx, err, "[Delete] Storage unreachable while deleting %s", item.Key)
	case errors.Is(err, context.Canceled):
		item.Outcome = entity.DeletionFailed
		item.Reason = ReasonCanceled
	case errors.Is(err, context.DeadlineExceeded):
		item.Outcome = entity.DeletionFailed
		item.Reason = ReasonTimeout
	default:
		item.Outcome = entity.DeletionFailed
		item.Reason = ReasonDeleteFailed
		s.logger.ErrorWithContextf(ctx, err, "[Delete] Failed to delete %s", item.Key)
	}
}

func (s *DeletionService) publishAudit(ctx context.Context, result entity.DeletionBatchResult) {
	if s.publisher == nil {
		return
	}

	assets := make([]produce.DeletedAsset, 0, len(result.Items))
	for _, item := range result.Items {
		assets = append(assets, produce.DeletedAsset{
			URL:     item.URL,
			Key:     item.Key,
			Outcome: string(item.Outcome),
			Reason:  item.Reason,
		})
	}

	msg := produce.AssetsDeletedMessage{
		UserID:    userIDFromContext(ctx),
		Success:   result.Success,
		Assets:    assets,
		Timestamp: time.Now().Unix(),
	}
	if err := s.publisher.PublishAssetsDeleted(ctx, msg); err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Delete] Failed to publish deletion audit event")
	}
}
