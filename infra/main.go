package infra

import (
	"context"
	"errors"
	"fmt"

	"github.com/tnqbao/gau-media-gateway/config"
	"github.com/tnqbao/gau-media-gateway/infra/produce"
)

// Infra bundles the process-wide clients. It is built once in main and passed
// explicitly to whatever needs it.
type Infra struct {
	Logger               *LoggerClient
	Telemetry            *Telemetry
	Storage              ObjectStorage
	Redis                *RedisClient
	RabbitMQ             *RabbitMQClient
	Produce              *produce.Produce
	AuthorizationService *AuthorizationService
}

func InitInfra(cfg *config.Config) *Infra {
	ctx := context.Background()

	logger := InitLoggerClient(cfg.EnvConfig)
	if logger == nil {
		panic("Failed to initialize Logger service")
	}

	telemetry, err := InitTelemetry(cfg.EnvConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}

	storage, err := InitStorage(cfg.EnvConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize storage client: %v", err))
	}

	// Redis and RabbitMQ only serve advisory features; the gateway runs without them
	redis, err := InitRedisClient(cfg.EnvConfig)
	if err != nil {
		logger.WarningWithContextf(ctx, "[Infra] Redis disabled: %v (completion callbacks will not be deduplicated)", err)
		redis = nil
	}

	var produceService *produce.Produce
	rabbitMQ, err := InitRabbitMQClient(cfg.EnvConfig)
	if err != nil {
		logger.WarningWithContextf(ctx, "[Infra] RabbitMQ disabled: %v (media events will not be published)", err)
		rabbitMQ = nil
	} else {
		produceService, err = produce.InitProduce(rabbitMQ.Channel)
		if err != nil {
			panic(fmt.Sprintf("Failed to initialize Produce service: %v", err))
		}
	}

	authorizationService := InitAuthorizationService(cfg.EnvConfig)
	if authorizationService == nil {
		logger.InfoWithContextf(ctx, "[Infra] No authorization service configured, verifying tokens locally")
	}

	return &Infra{
		Logger:               logger,
		Telemetry:            telemetry,
		Storage:              storage,
		Redis:                redis,
		RabbitMQ:             rabbitMQ,
		Produce:              produceService,
		AuthorizationService: authorizationService,
	}
}

func (i *Infra) Close(ctx context.Context) error {
	var errs []error
	if i.RabbitMQ != nil {
		errs = append(errs, i.RabbitMQ.Close())
	}
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	if i.Telemetry != nil {
		errs = append(errs, i.Telemetry.Shutdown(ctx))
	}
	errs = append(errs, i.Logger.Shutdown(ctx))
	return errors.Join(errs...)
}
