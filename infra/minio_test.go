package infra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-media-gateway/config"
)

func newTestMinioStorage(t *testing.T, endpoint string) *MinioStorage {
	t.Helper()
	cfg := &config.EnvConfig{}
	cfg.Storage.Endpoint = endpoint
	cfg.Storage.AccessKeyID = "minioadmin"
	cfg.Storage.SecretAccessKey = "minioadmin"
	cfg.Storage.Bucket = "mybucket"
	cfg.Storage.Region = "us-east-1"

	storage, err := NewMinioStorage(cfg)
	require.NoError(t, err)
	return storage
}

func TestMinioStorage_PutTarget(t *testing.T) {
	storage := newTestMinioStorage(t, "store.example:9000")

	target, err := storage.PutTarget(context.Background(), "mybucket", "imageUploader/abc.png", "image/png", 5*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, target.Method)
	assert.True(t, strings.HasPrefix(target.URL, "http://store.example:9000/mybucket/imageUploader/abc.png?"), target.URL)
	assert.Contains(t, target.URL, "X-Amz-Signature=")
	assert.Contains(t, strings.ToLower(target.URL), "content-type")
	assert.Equal(t, "image/png", target.Headers["Content-Type"])
	require.NotNil(t, target.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), *target.ExpiresAt, 5*time.Second)
}

func TestMinioStorage_DeleteObject(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	storage := newTestMinioStorage(t, strings.TrimPrefix(srv.URL, "http://"))

	require.NoError(t, storage.DeleteObject(context.Background(), "mybucket", "workoutImage/abc.png"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/mybucket/workoutImage/abc.png", gotPath)
}

func TestMinioStorage_RejectsEmptyKey(t *testing.T) {
	storage := newTestMinioStorage(t, "store.example:9000")
	assert.Error(t, storage.DeleteObject(context.Background(), "mybucket", ""))

	_, err := storage.PutTarget(context.Background(), "", "k", "image/png", time.Minute)
	assert.Error(t, err)
}

func TestMinioStorage_DeleteObjectSingleAttempt(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>SlowDown</Code><Message>Please reduce your request rate.</Message></Error>`))
	}))
	defer srv.Close()

	storage := newTestMinioStorage(t, strings.TrimPrefix(srv.URL, "http://"))

	err := storage.DeleteObject(context.Background(), "mybucket", "workoutImage/abc.png")
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}
