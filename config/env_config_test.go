package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORAGE_ENDPOINT", "https://store.example")
	t.Setenv("STORAGE_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("STORAGE_SECRET_ACCESS_KEY", "secret")
	t.Setenv("STORAGE_BUCKET", "mybucket")
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")
}

func TestLoadEnvConfig_Defaults(t *testing.T) {
	setValidEnv(t)

	cfg := LoadEnvConfig()

	assert.Equal(t, StorageDriverMinio, cfg.Storage.Driver)
	assert.Equal(t, "store.example", cfg.Storage.Endpoint)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, "https://store.example", cfg.Storage.PublicURL)
	assert.Equal(t, URLStylePath, cfg.Storage.URLStyle)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.Equal(t, UploadModePresigned, cfg.Upload.Mode)
	assert.Equal(t, 10*time.Minute, cfg.Upload.TargetTTL)
	assert.Equal(t, 8, cfg.Delete.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Delete.Timeout)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadEnvConfig_Overrides(t *testing.T) {
	setValidEnv(t)
	t.Setenv("STORAGE_ENDPOINT", "minio:9000")
	t.Setenv("STORAGE_USE_SSL", "false")
	t.Setenv("STORAGE_PUBLIC_URL", "https://cdn.example/")
	t.Setenv("DELETE_CONCURRENCY", "3")
	t.Setenv("UPLOAD_TARGET_TTL", "120")
	t.Setenv("GRAFANA_OTLP_ENDPOINT", "https://otlp.example")

	cfg := LoadEnvConfig()

	assert.Equal(t, "minio:9000", cfg.Storage.Endpoint)
	assert.False(t, cfg.Storage.UseSSL)
	assert.Equal(t, "http://minio:9000", cfg.Storage.EndpointURL())
	assert.Equal(t, "https://cdn.example", cfg.Storage.PublicURL)
	assert.Equal(t, 3, cfg.Delete.Concurrency)
	assert.Equal(t, 2*time.Minute, cfg.Upload.TargetTTL)
	assert.Equal(t, "otlp.example", cfg.Grafana.OTLPEndpoint)
}

func TestConfigValidate(t *testing.T) {
	setValidEnv(t)
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	cfg.EnvConfig.Upload.Mode = UploadModeProxy
	assert.Error(t, cfg.Validate(), "proxy mode needs a signing key")

	cfg.EnvConfig.Upload.SigningKey = "k"
	assert.NoError(t, cfg.Validate())

	cfg.EnvConfig.Storage.Bucket = ""
	assert.Error(t, cfg.Validate())

	cfg.EnvConfig.Storage.Bucket = "mybucket"
	cfg.EnvConfig.Storage.Driver = "gcs"
	assert.Error(t, cfg.Validate())
}
