package controller

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-media-gateway/http/controller/dto"
	"github.com/tnqbao/gau-media-gateway/utils"
)

func (ctrl *Controller) ListRoutes(c *gin.Context) {
	policies := ctrl.Repository.RouteRepo.List()

	routes := make([]dto.RoutePolicyDTO, len(policies))
	for i, p := range policies {
		routes[i] = dto.RoutePolicyDTO{
			Name:             p.Name,
			AllowedTypes:     p.AllowedTypes,
			MaxFileSizeBytes: p.MaxFileSizeBytes,
			MaxFileSize:      humanize.Bytes(uint64(p.MaxFileSizeBytes)),
			MaxFileCount:     p.MaxFileCount,
		}
	}
	utils.JSON200(c, gin.H{"routes": routes})
}

func (ctrl *Controller) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := ctrl.Infra.Storage.Ready(ctx); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Health] Storage not ready: %v", err)
		utils.JSON503(c, "storage unavailable")
		return
	}
	utils.JSON200(c, gin.H{"status": "ok"})
}
