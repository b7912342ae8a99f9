package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/campuspulse/moodmeter-service/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

type AppMetrics struct {
	sessionCreateCounter  metric.Int64Counter
	followupRedeemCounter metric.Int64Counter
	dispatchSendCounter   metric.Int64Counter
	repositoryOpCounter   metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		if err := initAppMetrics(mp); err != nil {
			return nil, err
		}
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)

	if err := initAppMetrics(mp); err != nil {
		return nil, err
	}
	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func initAppMetrics(mp *sdkmetric.MeterProvider) error {
	meter := mp.Meter("moodmeter-service")
	sessionCounter, err := meter.Int64Counter("session.create.attempts")
	if err != nil {
		return err
	}
	redeemCounter, err := meter.Int64Counter("followup.redeem.attempts")
	if err != nil {
		return err
	}
	dispatchCounter, err := meter.Int64Counter("dispatch.send.attempts")
	if err != nil {
		return err
	}
	repoCounter, err := meter.Int64Counter("repository.operations")
	if err != nil {
		return err
	}

	metricsMu.Lock()
	appMetrics = &AppMetrics{
		sessionCreateCounter:  sessionCounter,
		followupRedeemCounter: redeemCounter,
		dispatchSendCounter:   dispatchCounter,
		repositoryOpCounter:   repoCounter,
	}
	metricsMu.Unlock()
	return nil
}

func RecordSessionCreate(status string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.sessionCreateCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordFollowupRedeem(status string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.followupRedeemCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordDispatchSend(window, status string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.dispatchSendCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("window", window),
			attribute.String("status", status),
		),
	)
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, status string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.repositoryOpCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("entity", entity),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}
