package routes

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-media-gateway/config"
	"github.com/tnqbao/gau-media-gateway/entity"
	"github.com/tnqbao/gau-media-gateway/http/controller"
	"github.com/tnqbao/gau-media-gateway/infra"
	"github.com/tnqbao/gau-media-gateway/repository"
	"github.com/tnqbao/gau-media-gateway/service"
)

type nopStorage struct{}

func (nopStorage) DeleteObject(ctx context.Context, bucket, key string) error { return nil }

func (nopStorage) PutTarget(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (*entity.WriteTarget, error) {
	return &entity.WriteTarget{Method: http.MethodPut, URL: "https://store.example/" + bucket + "/" + key}, nil
}

func (nopStorage) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	return nil
}

func (nopStorage) Ready(ctx context.Context) error { return nil }

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &config.EnvConfig{}
	env.JWT.SecretKey = "jwt-secret"
	env.CORS.AllowDomains = "https://app.example"

	routeRepo, err := repository.NewRouteRepository(repository.DefaultRoutePolicies())
	require.NoError(t, err)

	logger := infra.NewNopLogger()
	locator := &service.PathStyleResolver{Base: &url.URL{Scheme: "https", Host: "store.example"}, Bucket: "mybucket"}
	svc := &service.Service{
		Upload:   service.NewUploadService(service.UploadOptions{Bucket: "mybucket"}, routeRepo, nopStorage{}, locator, logger, nil),
		Deletion: service.NewDeletionService(service.DeletionOptions{Bucket: "mybucket"}, nopStorage{}, locator, logger, nil),
	}
	inf := &infra.Infra{
		Logger:    logger,
		Storage:   nopStorage{},
		Telemetry: &infra.Telemetry{Registry: prometheus.NewRegistry()},
	}

	ctrl := controller.NewController(&config.Config{EnvConfig: env}, inf, &repository.Repository{RouteRepo: routeRepo}, svc)
	return SetupRouter(ctrl)
}

func signedToken(t *testing.T, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestSetupRouter_AuthBoundary(t *testing.T) {
	r := newTestEngine(t)
	body := []byte(`{"route":"profileImage","files":[{"mimeType":"image/png","sizeBytes":10}]}`)

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "wrong-secret"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "jwt-secret"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/delete-images", bytes.NewReader([]byte(`{"urls":[]}`)))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetupRouter_PublicEndpoints(t *testing.T) {
	r := newTestEngine(t)

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestSetupRouter_CORS(t *testing.T) {
	r := newTestEngine(t)

	req := httptest.NewRequest(http.MethodOptions, "/upload", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/upload", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
