package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tnqbao/gau-media-gateway/config"
	"github.com/tnqbao/gau-media-gateway/entity"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const meterName = "github.com/tnqbao/gau-media-gateway"

type Telemetry struct {
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider
	// Registry backs the /metrics scrape endpoint.
	Registry *prometheus.Registry
	Metrics  *MediaMetrics
}

func InitTelemetry(cfg *config.EnvConfig) (*Telemetry, error) {
	ctx := context.Background()
	res := serviceResource(cfg)

	registry := prometheus.NewRegistry()
	promExporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterOpts := []sdkmetric.Option{
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExporter),
	}

	var traceExporter *otlptrace.Exporter
	if endpoint := cfg.Grafana.OTLPEndpoint; endpoint != "" {
		metricExporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(endpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		meterOpts = append(meterOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)))

		traceExporter, err = otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
	}

	meterProvider := sdkmetric.NewMeterProvider(meterOpts...)
	otel.SetMeterProvider(meterProvider)

	tracerOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if traceExporter != nil {
		tracerOpts = append(tracerOpts, sdktrace.WithBatcher(traceExporter))
	}
	tracerProvider := sdktrace.NewTracerProvider(tracerOpts...)
	otel.SetTracerProvider(tracerProvider)

	if err := runtime.Start(runtime.WithMeterProvider(meterProvider)); err != nil {
		return nil, fmt.Errorf("failed to start runtime instrumentation: %w", err)
	}

	metrics, err := NewMediaMetrics(meterProvider.Meter(meterName))
	if err != nil {
		return nil, err
	}

	return &Telemetry{
		MeterProvider:  meterProvider,
		TracerProvider: tracerProvider,
		Registry:       registry,
		Metrics:        metrics,
	}, nil
}

func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(
		t.MeterProvider.Shutdown(ctx),
		t.TracerProvider.Shutdown(ctx),
	)
}

func serviceResource(cfg *config.EnvConfig) *resource.Resource {
	return resource.NewSchemaless(
		attribute.String("service.name", cfg.Grafana.ServiceName),
		attribute.String("deployment.environment", cfg.Environment.Mode),
		attribute.String("service.namespace", cfg.Environment.Group),
	)
}

type MediaMetrics struct {
	uploadRequests metric.Int64Counter
	uploadFiles    metric.Int64Counter
	deleteItems    metric.Int64Counter
	deleteDuration metric.Float64Histogram
}

func NewMediaMetrics(meter metric.Meter) (*MediaMetrics, error) {
	uploadRequests, err := meter.Int64Counter("media_upload_requests_total",
		metric.WithDescription("Upload requests by route and outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request counter: %w", err)
	}

	uploadFiles, err := meter.Int64Counter("media_upload_files_total",
		metric.WithDescription("Upload targets issued by route"))
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file counter: %w", err)
	}

	deleteItems, err := meter.Int64Counter("media_delete_items_total",
		metric.WithDescription("Deleted asset references by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create delete item counter: %w", err)
	}

	deleteDuration, err := meter.Float64Histogram("media_delete_batch_duration_seconds",
		metric.WithDescription("Wall time of one deletion batch"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create delete duration histogram: %w", err)
	}

	return &MediaMetrics{
		uploadRequests: uploadRequests,
		uploadFiles:    uploadFiles,
		deleteItems:    deleteItems,
		deleteDuration: deleteDuration,
	}, nil
}

func NewNopMediaMetrics() *MediaMetrics {
	m, _ := NewMediaMetrics(noop.NewMeterProvider().Meter(meterName))
	return m
}

func (m *MediaMetrics) RecordUpload(ctx context.Context, route, outcome string, files int) {
	if m == nil {
		return
	}
	m.uploadRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("outcome", outcome),
	))
	if files > 0 {
		m.uploadFiles.Add(ctx, int64(files), metric.WithAttributes(attribute.String("route", route)))
	}
}

func (m *MediaMetrics) RecordDeletion(ctx context.Context, result entity.DeletionBatchResult, elapsed time.Duration) {
	if m == nil {
		return
	}
	for _, outcome := range []entity.DeletionOutcome{entity.DeletionDeleted, entity.DeletionNotFound, entity.DeletionFailed} {
		if n := result.Count(outcome); n > 0 {
			m.deleteItems.Add(ctx, int64(n), metric.WithAttributes(attribute.String("outcome", string(outcome))))
		}
	}
	m.deleteDuration.Record(ctx, elapsed.Seconds())
}
