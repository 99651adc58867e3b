package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"time"
	"wikispider/lib/configutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const ConfigFile = "telemetry.json5"

const defaultMetricInterval = 5 * time.Second

// Telemetry holds the installed providers, a provider is nil when its
// exporter is not configured.
type Telemetry struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
}

func (t Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.TracerProvider != nil {
		errs = append(errs, t.TracerProvider.Shutdown(ctx))
	}
	if t.MeterProvider != nil {
		errs = append(errs, t.MeterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

type Exporter struct {
	// Endpoint is the url of an OTLP collector. grpc:// and grpcs:// select
	// the gRPC exporter, http:// and https:// the HTTP one. Empty disables
	// the signal.
	Endpoint string            `json:"endpoint"`
	Headers  map[string]string `json:"headers"`
}

// transport splits an endpoint into whether it is gRPC and the url the
// exporter options expect.
func (e Exporter) transport() (grpc bool, url string, err error) {
	scheme, rest, ok := strings.Cut(e.Endpoint, "://")
	if !ok {
		return false, "", fmt.Errorf("otlp endpoint %q has no scheme", e.Endpoint)
	}
	switch scheme {
	case "grpc":
		return true, "http://" + rest, nil
	case "grpcs":
		return true, "https://" + rest, nil
	case "http", "https":
		return false, e.Endpoint, nil
	}
	return false, "", fmt.Errorf("otlp endpoint %q has unsupported scheme %s", e.Endpoint, scheme)
}

type Config struct {
	Traces  Exporter `json:"traces"`
	Metrics Exporter `json:"metrics"`
	// MetricIntervalSeconds is how often metrics are pushed, 5 when unset.
	MetricIntervalSeconds int `json:"metric_interval_seconds"`
}

// SetupFromEnv searches for telemetry.json5 from the working directory
// upwards and installs the exporters it configures. Without the file the
// global no-op providers stay in place.
func SetupFromEnv(ctx context.Context, serviceName string) (Telemetry, error) {
	var config Config
	path, err := configutil.ReadRecursively(ConfigFile, &config)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no telemetry config found, telemetry will not be exported")
		return Telemetry{}, nil
	}
	if err != nil {
		return Telemetry{}, err
	}
	slog.Debug("using telemetry config", "path", path)
	return Setup(ctx, serviceName, config)
}

func Setup(ctx context.Context, serviceName string, config Config) (Telemetry, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(buildVersion()),
		),
	)
	if err != nil {
		return Telemetry{}, err
	}

	var tel Telemetry
	if config.Traces.Endpoint != "" {
		exporter, err := newSpanExporter(ctx, config.Traces)
		if err != nil {
			return Telemetry{}, fmt.Errorf("trace exporter: %w", err)
		}
		tel.TracerProvider = trace.NewTracerProvider(
			trace.WithBatcher(exporter),
			trace.WithResource(r),
		)
		otel.SetTracerProvider(tel.TracerProvider)
	}

	if config.Metrics.Endpoint != "" {
		exporter, err := newMetricExporter(ctx, config.Metrics)
		if err != nil {
			return Telemetry{}, errors.Join(fmt.Errorf("metric exporter: %w", err), tel.Shutdown(ctx))
		}
		interval := defaultMetricInterval
		if config.MetricIntervalSeconds > 0 {
			interval = time.Duration(config.MetricIntervalSeconds) * time.Second
		}
		tel.MeterProvider = metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(interval))),
			metric.WithResource(r),
		)
		otel.SetMeterProvider(tel.MeterProvider)
	}
	return tel, nil
}

func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "devel"
	}
	return info.Main.Version
}

func newSpanExporter(ctx context.Context, e Exporter) (trace.SpanExporter, error) {
	grpc, url, err := e.transport()
	if err != nil {
		return nil, err
	}
	slog.Info("tracer export initialized", "grpc", grpc, "endpoint", url, "headers", len(e.Headers) > 0)
	if grpc {
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(url), otlptracegrpc.WithHeaders(e.Headers))
	}
	return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(url), otlptracehttp.WithHeaders(e.Headers))
}

func newMetricExporter(ctx context.Context, e Exporter) (metric.Exporter, error) {
	grpc, url, err := e.transport()
	if err != nil {
		return nil, err
	}
	slog.Info("metric exporter initialized", "grpc", grpc, "endpoint", url, "headers", len(e.Headers) > 0)
	if grpc {
		return otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpointURL(url), otlpmetricgrpc.WithHeaders(e.Headers))
	}
	return otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(url), otlpmetrichttp.WithHeaders(e.Headers))
}
