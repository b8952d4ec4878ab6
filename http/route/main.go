package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tnqbao/gau-media-gateway/http/controller"
	middlewares "github.com/tnqbao/gau-media-gateway/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}
	r.Use(middles.CORSMiddleware)

	r.GET("/health", ctrl.Health)
	if ctrl.Infra.Telemetry != nil && ctrl.Infra.Telemetry.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(ctrl.Infra.Telemetry.Registry, promhttp.HandlerOpts{})))
	}

	// authorized by the URL signature, not by a session
	r.PUT("/upload/objects/*key", ctrl.WriteObject)

	apiRoutes := r.Group("/")
	{
		apiRoutes.Use(middles.AuthMiddleware)

		apiRoutes.POST("/upload", ctrl.Upload)
		apiRoutes.POST("/upload/complete", ctrl.UploadComplete)
		apiRoutes.GET("/upload/routes", ctrl.ListRoutes)
		apiRoutes.POST("/delete-images", ctrl.DeleteImages)
	}
	return r
}
