package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func JSON200(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func JSON201(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func JSON202(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, data)
}

func JSON400(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// JSON400Code is a 400 carrying a machine readable reason next to the message.
func JSON400Code(c *gin.Context, message, code string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "code": code})
}

func JSON401(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
}

func JSON403(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, gin.H{"error": message})
}

func JSON404(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"error": message})
}

func JSON411(c *gin.Context, message string) {
	c.JSON(http.StatusLengthRequired, gin.H{"error": message})
}

func JSON413(c *gin.Context, message string) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": message})
}

func JSON415(c *gin.Context, message string) {
	c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": message})
}

func JSON502(c *gin.Context, message string) {
	c.JSON(http.StatusBadGateway, gin.H{"error": message})
}

func JSON503(c *gin.Context, message string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": message})
}
