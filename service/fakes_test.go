package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/tnqbao/gau-media-gateway/entity"
	"github.com/tnqbao/gau-media-gateway/infra/produce"
)

type fakeStorage struct {
	mu         sync.Mutex
	deleted    []string
	putTargets []string
	written    map[string][]byte
	// deleteErr returns the error for a key; nil means success
	deleteErr func(key string) error
	targetErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{written: map[string][]byte{}}
}

func (f *fakeStorage) DeleteObject(ctx context.Context, bucket, key string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, key)
	f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr(key)
	}
	return nil
}

func (f *fakeStorage) PutTarget(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (*entity.WriteTarget, error) {
	f.mu.Lock()
	f.putTargets = append(f.putTargets, key)
	f.mu.Unlock()
	if f.targetErr != nil {
		return nil, f.targetErr
	}
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	return &entity.WriteTarget{
		Method:    "PUT",
		URL:       "https://store.example/" + bucket + "/" + key + "?X-Amz-Signature=sig",
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresAt: &expires,
	}, nil
}

func (f *fakeStorage) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.written[key] = data
	f.mu.Unlock()
	return nil
}

func (f *fakeStorage) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deleted) + len(f.putTargets) + len(f.written)
}

type fakePublisher struct {
	mu        sync.Mutex
	completed []produce.UploadCompletedMessage
	deleted   []produce.AssetsDeletedMessage
}

func (p *fakePublisher) PublishUploadCompleted(ctx context.Context, msg produce.UploadCompletedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed = append(p.completed, msg)
	return nil
}

func (p *fakePublisher) PublishAssetsDeleted(ctx context.Context, msg produce.AssetsDeletedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, msg)
	return nil
}

type fakeDeduper struct {
	seen map[string]bool
}

func (d *fakeDeduper) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}
