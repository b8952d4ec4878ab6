package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-media-gateway/config"
	"github.com/tnqbao/gau-media-gateway/http/controller"
	routes "github.com/tnqbao/gau-media-gateway/http/route"
	infraPkg "github.com/tnqbao/gau-media-gateway/infra"
	"github.com/tnqbao/gau-media-gateway/repository"
	"github.com/tnqbao/gau-media-gateway/service"
)

func main() {
	config.LoadEnvFile()

	cfg := config.NewConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.EnvConfig.Environment.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	infra := infraPkg.InitInfra(cfg)

	repo, err := repository.InitRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}

	svc, err := service.InitService(cfg, infra, repo)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	ctrl := controller.NewController(cfg, infra, repo, svc)
	router := routes.SetupRouter(ctrl)

	server := &http.Server{
		Addr:              ":" + cfg.EnvConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP Server started on :%s", cfg.EnvConfig.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := infra.Close(ctx); err != nil {
		log.Printf("Failed to close infrastructure cleanly: %v", err)
	}
}
