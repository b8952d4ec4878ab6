package controller

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-media-gateway/entity"
	"github.com/tnqbao/gau-media-gateway/http/controller/dto"
	"github.com/tnqbao/gau-media-gateway/infra"
	"github.com/tnqbao/gau-media-gateway/service"
	"github.com/tnqbao/gau-media-gateway/utils"
)

func (ctrl *Controller) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UploadRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Upload] Invalid request body: %v", err)
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	files := make([]entity.FileDescriptor, len(req.Files))
	for i, f := range req.Files {
		files[i] = entity.FileDescriptor{MimeType: f.MimeType, SizeBytes: f.SizeBytes, FileName: f.FileName}
	}

	targets, err := ctrl.Service.Upload.HandleUpload(ctx, entity.UploadRequest{
		RouteName: req.Route,
		Files:     files,
		UserID:    c.GetString("user_id"),
	})
	if err != nil {
		ctrl.respondUploadError(c, err)
		return
	}

	resp := dto.UploadResponseDTO{Targets: make([]dto.UploadTargetDTO, len(targets))}
	for i, t := range targets {
		resp.Targets[i] = dto.UploadTargetDTO{
			FileID:    t.FileID,
			FileName:  t.FileName,
			Method:    t.Method,
			URL:       t.URL,
			Headers:   t.Headers,
			FileURL:   t.FileURL,
			ExpiresAt: t.ExpiresAt,
		}
	}
	utils.JSON200(c, resp)
}

// respondUploadError maps upload failures onto HTTP statuses.
func (ctrl *Controller) respondUploadError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		utils.JSON400Code(c, vErr.Error(), vErr.Code())
	case errors.Is(err, infra.ErrBackendUnavailable):
		utils.JSON503(c, "Storage backend is unavailable")
	default:
		ctrl.Infra.Logger.ErrorWithContextf(c.Request.Context(), err, "[Upload] Storage backend error")
		utils.JSON502(c, "Storage backend error")
	}
}
