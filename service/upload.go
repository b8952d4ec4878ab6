package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-media-gateway/config"
	"github.com/tnqbao/gau-media-gateway/entity"
	"github.com/tnqbao/gau-media-gateway/infra"
	"github.com/tnqbao/gau-media-gateway/infra/produce"
	"github.com/tnqbao/gau-media-gateway/repository"
	"github.com/tnqbao/gau-media-gateway/utils"
)

const completionDedupeTTL = 24 * time.Hour

type UploadOptions struct {
	Bucket        string
	Mode          string
	TargetTTL     time.Duration
	SigningKey    string
	PublicBaseURL string
}

type UploadService struct {
	opts      UploadOptions
	routes    RouteLookup
	storage   StorageClient
	locator   AssetLocator
	logger    *infra.LoggerClient
	metrics   *infra.MediaMetrics
	publisher EventPublisher
	deduper   CompletionDeduper

	newID func() string
	now   func() time.Time
}

func NewUploadService(opts UploadOptions, routes RouteLookup, storage StorageClient, locator AssetLocator, logger *infra.LoggerClient, metrics *infra.MediaMetrics) *UploadService {
	if opts.Mode == "" {
		opts.Mode = config.UploadModePresigned
	}
	if opts.TargetTTL <= 0 {
		opts.TargetTTL = 10 * time.Minute
	}
	opts.PublicBaseURL = strings.TrimSuffix(opts.PublicBaseURL, "/")
	if logger == nil {
		logger = infra.NewNopLogger()
	}

	return &UploadService{
		opts:    opts,
		routes:  routes,
		storage: storage,
		locator: locator,
		logger:  logger,
		metrics: metrics,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

func (s *UploadService) SetEventPublisher(p EventPublisher) {
	s.publisher = p
}

func (s *UploadService) SetCompletionDeduper(d CompletionDeduper) {
	s.deduper = d
}

// HandleUpload validates the whole batch against the route policy and only then
// allocates one write target per file, in input order.
func (s *UploadService) HandleUpload(ctx context.Context, req entity.UploadRequest) ([]entity.UploadTarget, error) {
	policy, err := s.routes.Lookup(req.RouteName)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			s.metrics.RecordUpload(ctx, "unknown", "rejected", 0)
			return nil, validationErrorf(ErrRouteNotFound, "upload route %q does not exist", req.RouteName)
		}
		return nil, fmt.Errorf("failed to look up upload route: %w", err)
	}

	if err := validateFiles(policy, req.Files); err != nil {
		s.metrics.RecordUpload(ctx, policy.Name, "rejected", 0)
		s.logger.InfoWithContextf(ctx, "[Upload] Rejected upload for route %s: %s", policy.Name, err.Error())
		return nil, err
	}

	targets := make([]entity.UploadTarget, 0, len(req.Files))
	for _, file := range req.Files {
		target, err := s.issueTarget(ctx, policy, file)
		if err != nil {
			s.metrics.RecordUpload(ctx, policy.Name, "backend_error", 0)
			s.logger.ErrorWithContextf(ctx, err, "[Upload] Failed to issue upload target for route %s", policy.Name)
			return nil, fmt.Errorf("failed to issue upload target: %w", err)
		}
		targets = append(targets, target)
	}

	s.metrics.RecordUpload(ctx, policy.Name, "accepted", len(targets))
	s.logger.InfoWithContextf(ctx, "[Upload] Issued %d upload target(s): route=%s user=%s", len(targets), policy.Name, req.UserID)
	return targets, nil
}

// validateFiles applies the route rules in order: presence, count, then per file type and size.
func validateFiles(policy entity.RoutePolicy, files []entity.FileDescriptor) error {
	if len(files) == 0 {
		return validationErrorf(ErrNoFiles, "no files in upload request")
	}
	if len(files) > policy.MaxFileCount {
		return validationErrorf(ErrTooManyFiles, "route %s accepts at most %d file(s), got %d",
			policy.Name, policy.MaxFileCount, len(files))
	}

	for i, file := range files {
		name := file.FileName
		if name == "" {
			name = "#" + strconv.Itoa(i+1)
		}
		if !policy.Allows(file.MimeType) {
			return validationErrorf(ErrTypeNotAllowed, "file %s: type %q is not allowed for route %s",
				name, file.MimeType, policy.Name)
		}
		if file.SizeBytes <= 0 {
			return validationErrorf(ErrInvalidFileSize, "file %s: size must be positive", name)
		}
		if file.SizeBytes > policy.MaxFileSizeBytes {
			return validationErrorf(ErrFileTooLarge, "file %s: %s exceeds the %s limit of route %s",
				name, humanize.Bytes(uint64(file.SizeBytes)), humanize.Bytes(uint64(policy.MaxFileSizeBytes)), policy.Name)
		}
	}
	return nil
}

func (s *UploadService) issueTarget(ctx context.Context, policy entity.RoutePolicy, file entity.FileDescriptor) (entity.UploadTarget, error) {
	contentType := entity.NormalizeMimeType(file.MimeType)
	key := s.objectKey(policy.Name, file.FileName)

	var write *entity.WriteTarget
	if s.opts.Mode == config.UploadModeProxy {
		write = s.proxyTarget(key, contentType, policy.MaxFileSizeBytes)
	} else {
		var err error
		write, err = s.storage.PutTarget(ctx, s.opts.Bucket, key, contentType, s.opts.TargetTTL)
		if err != nil {
			return entity.UploadTarget{}, err
		}
	}

	return entity.UploadTarget{
		FileID:    key,
		FileName:  file.FileName,
		Method:    write.Method,
		URL:       write.URL,
		Headers:   write.Headers,
		FileURL:   s.locator.KeyToURL(key),
		ExpiresAt: write.ExpiresAt,
	}, nil
}

// objectKey returns <route>/<uuid><.ext>. Client file names never reach the key beyond a sanitized extension.
func (s *UploadService) objectKey(route, fileName string) string {
	return route + "/" + s.newID() + fileExtension(fileName)
}

func fileExtension(fileName string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(fileName, "\\", "/")))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func (s *UploadService) proxyTarget(key, contentType string, maxSize int64) *entity.WriteTarget {
	expiresAt := s.now().Add(s.opts.TargetTTL).UTC().Truncate(time.Second)
	expires := expiresAt.Unix()

	signature := utils.ComputeHMACSHA256(s.opts.SigningKey,
		utils.BuildUploadStringToSign(http.MethodPut, key, contentType, maxSize, expires))

	query := url.Values{}
	query.Set("content_type", contentType)
	query.Set("max_size", strconv.FormatInt(maxSize, 10))
	query.Set("expires", strconv.FormatInt(expires, 10))
	query.Set("signature", signature)

	return &entity.WriteTarget{
		Method:    http.MethodPut,
		URL:       s.opts.PublicBaseURL + "/upload/objects/" + escapeKey(key) + "?" + query.Encode(),
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresAt: &expiresAt,
	}
}

// NotifyComplete records an advisory completion notice. It never fails the caller.
func (s *UploadService) NotifyComplete(ctx context.Context, c entity.UploadCompletion) {
	if s.deduper != nil {
		first, err := s.deduper.SetNX(ctx, "media:upload:completed:"+c.FileID, c.FileURL, completionDedupeTTL)
		if err != nil {
			s.logger.WarningWithContextf(ctx, "[Upload] Completion dedupe unavailable for %s: %v", c.FileID, err)
		} else if !first {
			s.logger.DebugWithContextf(ctx, "[Upload] Duplicate completion notice for %s ignored", c.FileID)
			return
		}
	}

	s.logger.InfoWithContextf(ctx, "[Upload] Upload completed: route=%s file=%s user=%s", c.RouteName, c.FileID, c.UserID)

	if s.publisher == nil {
		return
	}
	msg := produce.UploadCompletedMessage{
		FileID:    c.FileID,
		FileURL:   c.FileURL,
		Route:     c.RouteName,
		UserID:    c.UserID,
		Timestamp: s.now().Unix(),
	}
	if err := s.publisher.PublishUploadCompleted(ctx, msg); err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Upload] Failed to publish completion event for %s", c.FileID)
	}
}
