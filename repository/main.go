package repository

import (
	"fmt"

	"github.com/tnqbao/gau-media-gateway/config"
)

type Repository struct {
	RouteRepo *RouteRepository
}

func InitRepository(cfg *config.Config) (*Repository, error) {
	policies := DefaultRoutePolicies()
	if file := cfg.EnvConfig.Upload.RoutesFile; file != "" {
		loaded, err := LoadRoutePoliciesFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load upload routes: %w", err)
		}
		policies = loaded
	}

	routeRepo, err := NewRouteRepository(policies)
	if err != nil {
		return nil, err
	}

	return &Repository{
		RouteRepo: routeRepo,
	}, nil
}
