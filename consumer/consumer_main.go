package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tnqbao/gau-media-gateway/config"
	"github.com/tnqbao/gau-media-gateway/consumer/worker"
	infraPkg "github.com/tnqbao/gau-media-gateway/infra"
)

func main() {
	config.LoadEnvFile()

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	if infra.RabbitMQ == nil {
		log.Fatalf("RabbitMQ is required for the media consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mediaConsumer := worker.NewMediaConsumer(infra.RabbitMQ.Channel, infra.Logger)
	if err := mediaConsumer.Start(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to start media consumer")
		log.Fatalf("Failed to start media consumer: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.InfoWithContextf(ctx, "Shutting down consumer...")
	cancel()

	if err := infra.Close(context.Background()); err != nil {
		log.Printf("Failed to close infrastructure cleanly: %v", err)
	}
	infra.Logger.InfoWithContextf(ctx, "Consumer exited properly")
}
