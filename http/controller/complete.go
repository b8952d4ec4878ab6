package controller

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-media-gateway/entity"
	"github.com/tnqbao/gau-media-gateway/http/controller/dto"
	"github.com/tnqbao/gau-media-gateway/utils"
)

// UploadComplete acknowledges an advisory completion notice. Nothing depends on it arriving.
func (ctrl *Controller) UploadComplete(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UploadCompleteRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	route := req.Route
	if route == "" {
		route, _, _ = strings.Cut(req.FileID, "/")
	}

	ctrl.Service.Upload.NotifyComplete(ctx, entity.UploadCompletion{
		FileID:    req.FileID,
		FileURL:   req.FileURL,
		RouteName: route,
		UserID:    c.GetString("user_id"),
	})

	utils.JSON202(c, gin.H{"acknowledged": true})
}
