package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/tnqbao/gau-media-gateway/config"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

type LoggerClient struct {
	logger   *slog.Logger
	provider *sdklog.LoggerProvider
}

// InitLoggerClient logs JSON to stdout and, when an OTLP endpoint is configured,
// ships the same records to Grafana through the otelslog bridge.
func InitLoggerClient(cfg *config.EnvConfig) *LoggerClient {
	stdout := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg)})
	client := &LoggerClient{}

	if cfg.Grafana.OTLPEndpoint == "" {
		client.logger = slog.New(stdout).With("service", cfg.Grafana.ServiceName)
		return client
	}

	exporter, err := otlploghttp.New(context.Background(), otlploghttp.WithEndpoint(cfg.Grafana.OTLPEndpoint))
	if err != nil {
		log.Printf("Warning: failed to create OTLP log exporter: %v (logging to stdout only)", err)
		client.logger = slog.New(stdout).With("service", cfg.Grafana.ServiceName)
		return client
	}

	client.provider = sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(serviceResource(cfg)),
	)
	global.SetLoggerProvider(client.provider)

	otelHandler := otelslog.NewHandler(cfg.Grafana.ServiceName, otelslog.WithLoggerProvider(client.provider))
	client.logger = slog.New(teeHandler{stdout, otelHandler}).With("service", cfg.Grafana.ServiceName)
	return client
}

func NewNopLogger() *LoggerClient {
	return &LoggerClient{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// NewLoggerClient wraps an existing slog logger.
func NewLoggerClient(logger *slog.Logger) *LoggerClient {
	return &LoggerClient{logger: logger}
}

func (l *LoggerClient) DebugWithContextf(ctx context.Context, format string, args ...any) {
	l.logger.DebugContext(ctx, fmt.Sprintf(format, args...))
}

func (l *LoggerClient) InfoWithContextf(ctx context.Context, format string, args ...any) {
	l.logger.InfoContext(ctx, fmt.Sprintf(format, args...))
}

func (l *LoggerClient) WarningWithContextf(ctx context.Context, format string, args ...any) {
	l.logger.WarnContext(ctx, fmt.Sprintf(format, args...))
}

func (l *LoggerClient) ErrorWithContextf(ctx context.Context, err error, format string, args ...any) {
	if err != nil {
		l.logger.ErrorContext(ctx, fmt.Sprintf(format, args...), "error", err.Error())
		return
	}
	l.logger.ErrorContext(ctx, fmt.Sprintf(format, args...))
}

func (l *LoggerClient) Shutdown(ctx context.Context) error {
	if l.provider == nil {
		return nil
	}
	return l.provider.Shutdown(ctx)
}

func logLevel(cfg *config.EnvConfig) slog.Level {
	if cfg.Environment.Mode == "development" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// teeHandler fans every record out to all handlers that accept its level.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
