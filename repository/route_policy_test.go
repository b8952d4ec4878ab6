package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-media-gateway/config"
	"github.com/tnqbao/gau-media-gateway/entity"
)

func TestRouteRepository_Lookup(t *testing.T) {
	repo, err := NewRouteRepository(DefaultRoutePolicies())
	require.NoError(t, err)

	p, err := repo.Lookup("imageUploader")
	require.NoError(t, err)
	assert.Equal(t, 4, p.MaxFileCount)
	assert.Equal(t, int64(4_000_000), p.MaxFileSizeBytes)

	_, err = repo.Lookup("nope")
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestRouteRepository_LookupReturnsCopy(t *testing.T) {
	repo, err := NewRouteRepository(DefaultRoutePolicies())
	require.NoError(t, err)

	p, _ := repo.Lookup("imageUploader")
	p.AllowedTypes[0] = "video/*"

	again, _ := repo.Lookup("imageUploader")
	assert.Equal(t, []string{"image/*"}, again.AllowedTypes)
}

func TestRouteRepository_RejectsDuplicatesAndInvalid(t *testing.T) {
	p := entity.RoutePolicy{Name: "a", AllowedTypes: []string{"image/*"}, MaxFileSizeBytes: 1, MaxFileCount: 1}

	_, err := NewRouteRepository([]entity.RoutePolicy{p, p})
	assert.Error(t, err)

	bad := p
	bad.MaxFileCount = 0
	_, err = NewRouteRepository([]entity.RoutePolicy{bad})
	assert.Error(t, err)
}

func TestRouteRepository_Names(t *testing.T) {
	repo, err := NewRouteRepository(DefaultRoutePolicies())
	require.NoError(t, err)
	assert.Equal(t, []string{"imageUploader", "profileImage", "workoutImage"}, repo.Names())
	assert.Len(t, repo.List(), 3)
}

func TestParseRoutePolicies(t *testing.T) {
	raw := []byte(`
routes:
  - name: progressPhoto
    allowed_types: ["image/jpeg", "image/png"]
    max_file_size: 4MB
    max_file_count: 2
  - name: avatar
    allowed_types: ["image/*"]
    max_file_size: 512KiB
    max_file_count: 1
`)
	policies, err := ParseRoutePolicies(raw)
	require.NoError(t, err)
	require.Len(t, policies, 2)
	assert.Equal(t, int64(4_000_000), policies[0].MaxFileSizeBytes)
	assert.Equal(t, int64(512*1024), policies[1].MaxFileSizeBytes)
	assert.Equal(t, []string{"image/jpeg", "image/png"}, policies[0].AllowedTypes)
}

func TestParseRoutePolicies_Errors(t *testing.T) {
	_, err := ParseRoutePolicies([]byte(`routes: []`))
	assert.Error(t, err)

	_, err = ParseRoutePolicies([]byte(`routes: [{name: a, allowed_types: ["image/*"], max_file_size: huge, max_file_count: 1}]`))
	assert.Error(t, err)

	_, err = ParseRoutePolicies([]byte(`routes: {`))
	assert.Error(t, err)
}

func TestInitRepository_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
routes:
  - name: mealPhoto
    allowed_types: ["image/*"]
    max_file_size: 2MB
    max_file_count: 3
`), 0o600))

	cfg := &config.Config{EnvConfig: &config.EnvConfig{}}
	cfg.EnvConfig.Upload.RoutesFile = path

	repo, err := InitRepository(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"mealPhoto"}, repo.RouteRepo.Names())

	_, err = repo.RouteRepo.Lookup("imageUploader")
	assert.ErrorIs(t, err, ErrRouteNotFound)
}
