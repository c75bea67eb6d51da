package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/architeacher/svc-order-outbox/internal/config"
)

const (
	metricsNamespace = "order_outbox"
)

type (
	Metrics interface {
		RecordEnqueue(ctx context.Context, eventType string, count int)
		RecordPublish(ctx context.Context, eventType string, success bool, duration time.Duration)
		RecordQuarantine(ctx context.Context, eventType, reason string)
		RecordCycle(ctx context.Context, fetched int, duration time.Duration, failed bool)
		Handler() http.Handler
		Shutdown(ctx context.Context) error
	}

	OTELMetrics struct {
		meterProvider *sdkmetric.MeterProvider
		meter         metric.Meter
		logger        Logger

		enqueuedTotal    metric.Int64Counter
		publishedTotal   metric.Int64Counter
		publishErrTotal  metric.Int64Counter
		quarantinedTotal metric.Int64Counter
		publishDuration  metric.Float64Histogram
		cycleTotal       metric.Int64Counter
		cycleErrTotal    metric.Int64Counter
		cycleDuration    metric.Float64Histogram
		cycleBatchSize   metric.Int64Histogram
	}
)

func NewMetrics(ctx context.Context, cfg config.ServiceConfig, logger Logger) (Metrics, error) {
	if !cfg.Telemetry.Metrics.Enabled {
		logger.Info().Msg("metrics disabled, using NoOp implementation")

		return &NoOpMetrics{}, nil
	}

	return NewOTELMetrics(ctx, cfg, logger)
}

func NewOTELMetrics(ctx context.Context, cfg config.ServiceConfig, logger Logger) (*OTELMetrics, error) {
	endpoint := fmt.Sprintf("%s:%s", cfg.Telemetry.OtelGRPCHost, cfg.Telemetry.OtelGRPCPort)

	conn, err := grpc.NewClient(
		endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to OTEL collector: %w", err)
	}

	exporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.AppConfig.ServiceName),
		semconv.ServiceVersion(cfg.AppConfig.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTEL resource: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)

	m := &OTELMetrics{
		meterProvider: meterProvider,
		meter:         meterProvider.Meter(metricsNamespace),
		logger:        logger,
	}

	if err := m.initInstruments(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *OTELMetrics) initInstruments() error {
	var err error

	if m.enqueuedTotal, err = m.meter.Int64Counter(
		metricsNamespace+"_records_enqueued_total",
		metric.WithDescription("Outbox records written by the enqueue path"),
	); err != nil {
		return fmt.Errorf("failed to create enqueued counter: %w", err)
	}

	if m.publishedTotal, err = m.meter.Int64Counter(
		metricsNamespace+"_records_published_total",
		metric.WithDescription("Outbox records confirmed at the broker"),
	); err != nil {
		return fmt.Errorf("failed to create published counter: %w", err)
	}

	if m.publishErrTotal, err = m.meter.Int64Counter(
		metricsNamespace+"_publish_failures_total",
		metric.WithDescription("Failed publish attempts"),
	); err != nil {
		return fmt.Errorf("failed to create publish failure counter: %w", err)
	}

	if m.quarantinedTotal, err = m.meter.Int64Counter(
		metricsNamespace+"_records_quarantined_total",
		metric.WithDescription("Records moved to the terminal quarantine state"),
	); err != nil {
		return fmt.Errorf("failed to create quarantine counter: %w", err)
	}

	if m.publishDuration, err = m.meter.Float64Histogram(
		metricsNamespace+"_publish_duration_seconds",
		metric.WithDescription("Broker publish latency"),
	); err != nil {
		return fmt.Errorf("failed to create publish duration histogram: %w", err)
	}

	if m.cycleTotal, err = m.meter.Int64Counter(
		metricsNamespace+"_relay_cycles_total",
		metric.WithDescription("Completed relay cycles"),
	); err != nil {
		return fmt.Errorf("failed to create cycle counter: %w", err)
	}

	if m.cycleErrTotal, err = m.meter.Int64Counter(
		metricsNamespace+"_relay_cycle_failures_total",
		metric.WithDescription("Relay cycles that failed at the top level"),
	); err != nil {
		return fmt.Errorf("failed to create cycle failure counter: %w", err)
	}

	if m.cycleDuration, err = m.meter.Float64Histogram(
		metricsNamespace+"_relay_cycle_duration_seconds",
		metric.WithDescription("Relay cycle duration"),
	); err != nil {
		return fmt.Errorf("failed to create cycle duration histogram: %w", err)
	}

	if m.cycleBatchSize, err = m.meter.Int64Histogram(
		metricsNamespace+"_relay_batch_size",
		metric.WithDescription("Records fetched per relay cycle"),
	); err != nil {
		return fmt.Errorf("failed to create batch size histogram: %w", err)
	}

	return nil
}

func (m *OTELMetrics) RecordEnqueue(ctx context.Context, eventType string, count int) {
	m.enqueuedTotal.Add(ctx, int64(count), metric.WithAttributes(attrEventType(eventType)))
}

func (m *OTELMetrics) RecordPublish(ctx context.Context, eventType string, success bool, duration time.Duration) {
	attrs := metric.WithAttributes(attrEventType(eventType))

	m.publishDuration.Record(ctx, duration.Seconds(), attrs)

	if success {
		m.publishedTotal.Add(ctx, 1, attrs)

		return
	}

	m.publishErrTotal.Add(ctx, 1, attrs)
}

func (m *OTELMetrics) RecordQuarantine(ctx context.Context, eventType, reason string) {
	m.quarantinedTotal.Add(ctx, 1, metric.WithAttributes(
		attrEventType(eventType),
		attrReason(reason),
	))
}

func (m *OTELMetrics) RecordCycle(ctx context.Context, fetched int, duration time.Duration, failed bool) {
	m.cycleTotal.Add(ctx, 1)
	m.cycleDuration.Record(ctx, duration.Seconds())
	m.cycleBatchSize.Record(ctx, int64(fetched))

	if failed {
		m.cycleErrTotal.Add(ctx, 1)
	}
}

func (m *OTELMetrics) Handler() http.Handler {
	return promhttp.Handler()
}

func (m *OTELMetrics) Shutdown(ctx context.Context) error {
	if m.meterProvider == nil {
		return nil
	}

	return m.meterProvider.Shutdown(ctx)
}
