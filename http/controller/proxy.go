package controller

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-media-gateway/service"
	"github.com/tnqbao/gau-media-gateway/utils"
)

// WriteObject receives the body of a signed proxy upload target.
func (ctrl *Controller) WriteObject(c *gin.Context) {
	ctx := c.Request.Context()

	maxSize, err := strconv.ParseInt(c.Query("max_size"), 10, 64)
	if err != nil {
		utils.JSON403(c, "Invalid upload signature")
		return
	}
	expires, err := strconv.ParseInt(c.Query("expires"), 10, 64)
	if err != nil {
		utils.JSON403(c, "Invalid upload signature")
		return
	}

	fileURL, err := ctrl.Service.Upload.WriteObject(ctx, service.ProxyWrite{
		Key:         strings.TrimPrefix(c.Param("key"), "/"),
		ContentType: c.Query("content_type"),
		MaxSize:     maxSize,
		Expires:     expires,
		Signature:   c.Query("signature"),
		Size:        c.Request.ContentLength,
		Body:        c.Request.Body,
	})
	if err != nil {
		ctrl.respondProxyError(c, err)
		return
	}

	utils.JSON201(c, gin.H{"fileUrl": fileURL})
}

func (ctrl *Controller) respondProxyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProxyDisabled):
		utils.JSON404(c, "Not found")
	case errors.Is(err, service.ErrInvalidSignature), errors.Is(err, service.ErrTargetExpired):
		utils.JSON403(c, err.Error())
	case errors.Is(err, service.ErrLengthRequired):
		utils.JSON411(c, err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		utils.JSON413(c, err.Error())
	case errors.Is(err, service.ErrContentMismatch):
		utils.JSON415(c, err.Error())
	default:
		ctrl.respondUploadError(c, err)
	}
}
