package repository

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/tnqbao/gau-media-gateway/entity"
	"gopkg.in/yaml.v3"
)

var ErrRouteNotFound = errors.New("upload route not found")

// RouteRepository is the read-only registry of upload policies.
// It is filled once at construction and never mutated afterwards.
type RouteRepository struct {
	routes map[string]entity.RoutePolicy
}

func NewRouteRepository(policies []entity.RoutePolicy) (*RouteRepository, error) {
	routes := make(map[string]entity.RoutePolicy, len(policies))
	for _, p := range policies {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid upload route: %w", err)
		}
		if _, exists := routes[p.Name]; exists {
			return nil, fmt.Errorf("duplicate upload route %q", p.Name)
		}
		p.AllowedTypes = append([]string(nil), p.AllowedTypes...)
		routes[p.Name] = p
	}
	return &RouteRepository{routes: routes}, nil
}

func (r *RouteRepository) Lookup(name string) (entity.RoutePolicy, error) {
	p, ok := r.routes[name]
	if !ok {
		return entity.RoutePolicy{}, fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}
	p.AllowedTypes = append([]string(nil), p.AllowedTypes...)
	return p, nil
}

// List returns every policy sorted by name.
func (r *RouteRepository) List() []entity.RoutePolicy {
	out := make([]entity.RoutePolicy, 0, len(r.routes))
	for _, name := range r.Names() {
		p, _ := r.Lookup(name)
		out = append(out, p)
	}
	return out
}

func (r *RouteRepository) Names() []string {
	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func DefaultRoutePolicies() []entity.RoutePolicy {
	return []entity.RoutePolicy{
		{Name: "imageUploader", AllowedTypes: []string{"image/*"}, MaxFileSizeBytes: 4_000_000, MaxFileCount: 4},
		{Name: "profileImage", AllowedTypes: []string{"image/*"}, MaxFileSizeBytes: 4_000_000, MaxFileCount: 1},
		{Name: "workoutImage", AllowedTypes: []string{"image/*"}, MaxFileSizeBytes: 8_000_000, MaxFileCount: 6},
	}
}

type routesFile struct {
	Routes []struct {
		Name         string   `yaml:"name"`
		AllowedTypes []string `yaml:"allowed_types"`
		MaxFileSize  string   `yaml:"max_file_size"`
		MaxFileCount int      `yaml:"max_file_count"`
	} `yaml:"routes"`
}

// LoadRoutePoliciesFile reads route policies from a YAML file.
// Sizes are human readable ("4MB", "512KiB").
func LoadRoutePoliciesFile(path string) ([]entity.RoutePolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routes file: %w", err)
	}
	return ParseRoutePolicies(raw)
}

func ParseRoutePolicies(raw []byte) ([]entity.RoutePolicy, error) {
	var file routesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse routes file: %w", err)
	}
	if len(file.Routes) == 0 {
		return nil, fmt.Errorf("routes file defines no routes")
	}

	policies := make([]entity.RoutePolicy, 0, len(file.Routes))
	for _, r := range file.Routes {
		size, err := humanize.ParseBytes(r.MaxFileSize)
		if err != nil {
			return nil, fmt.Errorf("route %s: invalid max_file_size %q: %w", r.Name, r.MaxFileSize, err)
		}
		policies = append(policies, entity.RoutePolicy{
			Name:             r.Name,
			AllowedTypes:     r.AllowedTypes,
			MaxFileSizeBytes: int64(size),
			MaxFileCount:     r.MaxFileCount,
		})
	}
	return policies, nil
}
