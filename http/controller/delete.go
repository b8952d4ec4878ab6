package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-media-gateway/entity"
	"github.com/tnqbao/gau-media-gateway/http/controller/dto"
	"github.com/tnqbao/gau-media-gateway/service"
	"github.com/tnqbao/gau-media-gateway/utils"
)

func (ctrl *Controller) DeleteImages(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.DeleteImagesRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Delete] Invalid request body: %v", err)
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	ctx = service.ContextWithUserID(ctx, c.GetString("user_id"))
	result := ctrl.Service.Deletion.HandleDelete(ctx, req.URLs)

	results := make(map[string]string, len(result.Items))
	for url, outcome := range result.Results() {
		results[url] = string(outcome)
	}
	resp := dto.DeleteImagesResponseDTO{
		Success: result.Success,
		Results: results,
		Errors:  result.Errors(),
	}

	c.JSON(deletionStatus(result), resp)
}

// deletionStatus: 200 all deleted, 503 cut short by an unreachable backend,
// 400 nothing but malformed references, 207 partial, 502 nothing removed.
func deletionStatus(result entity.DeletionBatchResult) int {
	if result.Success {
		return http.StatusOK
	}
	if result.Unavailable {
		return http.StatusServiceUnavailable
	}

	malformed := 0
	for _, item := range result.Items {
		if item.Outcome == entity.DeletionFailed && item.Reason == service.ReasonMalformedURL {
			malformed++
		}
	}
	if malformed == len(result.Items) {
		return http.StatusBadRequest
	}

	if result.Count(entity.DeletionDeleted)+result.Count(entity.DeletionNotFound) > 0 {
		return http.StatusMultiStatus
	}
	return http.StatusBadGateway
}
