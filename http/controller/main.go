package controller

import (
	"github.com/tnqbao/gau-media-gateway/config"
	"github.com/tnqbao/gau-media-gateway/infra"
	"github.com/tnqbao/gau-media-gateway/repository"
	"github.com/tnqbao/gau-media-gateway/service"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Service    *service.Service
}

func NewController(config *config.Config, infra *infra.Infra, repo *repository.Repository, svc *service.Service) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}
	if svc == nil {
		panic("Failed to initialize Service")
	}
	return &Controller{
		Config:     config,
		Infra:      infra,
		Repository: repo,
		Service:    svc,
	}
}
