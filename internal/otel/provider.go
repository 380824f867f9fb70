package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config holds OTel configuration
type Config struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	LogWriter    io.Writer // receives exported log records and metrics when set
	Endpoint     string    // OTLP endpoint (optional, only used if set)
	Insecure     bool      // Use insecure connection for OTLP

	// MetricReader is registered in addition to the exporters above.
	MetricReader sdkmetric.Reader
}

// Provider manages the OpenTelemetry log and meter providers.
type Provider struct {
	logProvider   *sdklog.LoggerProvider
	meterProvider *sdkmetric.MeterProvider
	config        Config
}

// New creates a new OTel provider with the given configuration.
// If OTel is disabled, returns a no-op provider.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	p := &Provider{
		config: cfg,
	}

	if !cfg.Enabled {
		return p, nil
	}

	if cfg.LogWriter == nil && cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTel enabled but no log writer or endpoint configured")
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	logOpts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	meterOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if cfg.LogWriter != nil {
		logExporter, err := stdoutlog.New(stdoutlog.WithWriter(cfg.LogWriter))
		if err != nil {
			return nil, fmt.Errorf("failed to create file log exporter: %w", err)
		}
		logOpts = append(logOpts, sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter,
			sdklog.WithExportTimeout(cfg.BatchTimeout),
		)))

		metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.LogWriter))
		if err != nil {
			return nil, fmt.Errorf("failed to create file metric exporter: %w", err)
		}
		meterOpts = append(meterOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithTimeout(cfg.BatchTimeout),
		)))
	}

	if cfg.Endpoint != "" {
		logHTTPOpts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint)}
		metricHTTPOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			logHTTPOpts = append(logHTTPOpts, otlploghttp.WithInsecure())
			metricHTTPOpts = append(metricHTTPOpts, otlpmetrichttp.WithInsecure())
		}

		logExporter, err := otlploghttp.New(ctx, logHTTPOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
		}
		logOpts = append(logOpts, sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter,
			sdklog.WithExportTimeout(cfg.BatchTimeout),
		)))

		metricExporter, err := otlpmetrichttp.New(ctx, metricHTTPOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		meterOpts = append(meterOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithTimeout(cfg.BatchTimeout),
		)))
	}

	if cfg.MetricReader != nil {
		meterOpts = append(meterOpts, sdkmetric.WithReader(cfg.MetricReader))
	}

	p.logProvider = sdklog.NewLoggerProvider(logOpts...)
	p.meterProvider = sdkmetric.NewMeterProvider(meterOpts...)

	return p, nil
}

// LoggerProvider returns the log provider for use with otelslog bridge.
// Returns nil if OTel is not enabled.
func (p *Provider) LoggerProvider() *sdklog.LoggerProvider {
	return p.logProvider
}

// Meter returns a named meter backed by the configured exporters, or a
// no-op meter when OTel is disabled.
func (p *Provider) Meter(name string) metric.Meter {
	if p.meterProvider == nil {
		return noop.Meter{}
	}
	return p.meterProvider.Meter(name)
}

// Shutdown flushes pending logs, then metrics, and stops the providers.
// Logs go first since both exporters may share LogWriter.
// Should be called before the process exits.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error

	if p.logProvider != nil {
		if err := p.logProvider.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("log flush failed: %w", err))
		}
		if err := p.logProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("log shutdown failed: %w", err))
		}
	}

	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metric shutdown failed: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Enabled returns whether OTel is enabled
func (p *Provider) Enabled() bool {
	return p.config.Enabled
}
