package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tnqbao/gau-media-gateway/config"
	"github.com/tnqbao/gau-media-gateway/entity"
	"github.com/tnqbao/gau-media-gateway/utils"
)

const sniffLength = 3072

// ProxyWrite is one signed PUT /upload/objects/<key> request.
type ProxyWrite struct {
	Key         string
	ContentType string
	MaxSize     int64
	Expires     int64
	Signature   string
	Size        int64 // declared Content-Length, -1 when unknown
	Body        io.Reader
}

// WriteObject streams a proxied upload to storage once its signature, expiry, size
// and sniffed content type all check out. It returns the asset URL.
func (s *UploadService) WriteObject(ctx context.Context, w ProxyWrite) (string, error) {
	if s.opts.Mode != config.UploadModeProxy {
		return "", ErrProxyDisabled
	}

	if _, err := checkKey(w.Key); err != nil {
		return "", ErrInvalidSignature
	}
	contentType := entity.NormalizeMimeType(w.ContentType)
	expected := utils.ComputeHMACSHA256(s.opts.SigningKey,
		utils.BuildUploadStringToSign(http.MethodPut, w.Key, contentType, w.MaxSize, w.Expires))
	if w.Signature == "" || !utils.SecureCompare(expected, w.Signature) {
		return "", ErrInvalidSignature
	}
	if s.now().Unix() > w.Expires {
		return "", ErrTargetExpired
	}

	if w.Size < 0 {
		return "", ErrLengthRequired
	}
	if w.Size == 0 {
		return "", validationErrorf(ErrInvalidFileSize, "empty upload body")
	}
	if w.Size > w.MaxSize {
		return "", validationErrorf(ErrFileTooLarge, "body of %d bytes exceeds the signed limit of %d", w.Size, w.MaxSize)
	}

	head := make([]byte, min(int64(sniffLength), w.Size))
	n, err := io.ReadFull(w.Body, head)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "", errShortBody(w.Size, int64(n))
	}
	if err != nil {
		return "", fmt.Errorf("failed to read upload body: %w", err)
	}

	detected := mimetype.Detect(head)
	if !detected.Is(contentType) {
		s.logger.WarningWithContextf(ctx, "[Upload] Content mismatch for %s: declared %s, detected %s", w.Key, contentType, detected.String())
		return "", validationErrorf(ErrContentMismatch, "content is %s, not %s", detected.String(), contentType)
	}

	tail := &tailReader{r: io.LimitReader(w.Body, w.Size-int64(n))}
	body := io.MultiReader(bytes.NewReader(head), tail)
	err = s.storage.PutObject(ctx, s.opts.Bucket, w.Key, body, w.Size, contentType)
	// a client that hangs up early is not a storage failure
	if tail.ended && int64(n)+tail.read < w.Size {
		s.logger.WarningWithContextf(ctx, "[Upload] Short body for %s: %d of %d bytes", w.Key, int64(n)+tail.read, w.Size)
		return "", errShortBody(w.Size, int64(n)+tail.read)
	}
	if err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Upload] Failed to write object %s", w.Key)
		return "", fmt.Errorf("failed to write object: %w", err)
	}

	s.logger.InfoWithContextf(ctx, "[Upload] Stored proxied upload %s (%d bytes)", w.Key, w.Size)
	return s.locator.KeyToURL(w.Key), nil
}

func errShortBody(declared, got int64) *ValidationError {
	return validationErrorf(ErrInvalidFileSize, "body shorter than declared length: got %d of %d bytes", got, declared)
}

// tailReader counts what the client sent after the sniffed head and notes
// whether the body ran dry.
type tailReader struct {
	r     io.Reader
	read  int64
	ended bool
}

func (t *tailReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.read += int64(n)
	if err != nil {
		t.ended = true
	}
	return n, err
}
