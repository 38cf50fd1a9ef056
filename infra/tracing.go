package infra

import (
	"context"
	"encoding/binary"
	"math"

	texporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	gcppropagator "github.com/GoogleCloudPlatform/opentelemetry-operations-go/propagator"
	"github.com/cockroachdb/errors"
	"google.golang.org/api/option"

	"go.opentelemetry.io/contrib/detectors/gcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/checkmarble/marble-screening/models"
	"github.com/checkmarble/marble-screening/utils"
)

const (
	TelemetryExporterGCP  = "gcp"
	TelemetryExporterOTLP = "otlp"

	DefaultSamplingRate = 0.3
)

type TelemetryConfiguration struct {
	Enabled         bool
	ApplicationName string
	ProjectID       string
	Exporter        string
	// Sampling ratio per span name, overriding the default rates
	SpanNameSampling map[string]float64
}

// TelemetryConfigurationFromEnv reads the tracing setup from SCREENING_TRACING_* variables.
func TelemetryConfigurationFromEnv() (TelemetryConfiguration, error) {
	exporter := utils.GetStringEnv("SCREENING_TRACING_EXPORTER", TelemetryExporterOTLP)
	if exporter != TelemetryExporterGCP && exporter != TelemetryExporterOTLP {
		return TelemetryConfiguration{}, errors.Wrapf(models.ConfigurationError,
			"unknown tracing exporter %q", exporter)
	}
	return TelemetryConfiguration{
		Enabled:         utils.GetStringEnv("SCREENING_TRACING_ENABLED", "false") == "true",
		ApplicationName: utils.GetStringEnv("SCREENING_APP_NAME", "marble-screening"),
		ProjectID:       utils.GetStringEnv("GOOGLE_CLOUD_PROJECT", ""),
		Exporter:        exporter,
	}, nil
}

type TelemetryRessources struct {
	TracerProvider    trace.TracerProvider
	Tracer            trace.Tracer
	TextMapPropagator propagation.TextMapPropagator
}

func NoopTelemetry() TelemetryRessources {
	return TelemetryRessources{
		TracerProvider:    noop.NewTracerProvider(),
		Tracer:            noop.NewTracerProvider().Tracer(""),
		TextMapPropagator: nil,
	}
}

// InitTelemetry builds the tracer handed to screenings through
// utils.StoreOpenTelemetryTracerInContext.
func InitTelemetry(configuration TelemetryConfiguration, version string) (TelemetryRessources, error) {
	if !configuration.Enabled {
		return NoopTelemetry(), nil
	}

	var exporter sdktrace.SpanExporter

	switch configuration.Exporter {
	case TelemetryExporterGCP:
		gcpExporter, err := texporter.New(
			texporter.WithProjectID(configuration.ProjectID),
			texporter.WithTraceClientOptions([]option.ClientOption{option.WithTelemetryDisabled()}),
		)
		if err != nil {
			return TelemetryRessources{}, errors.Wrap(err, "could not create the gcp trace exporter")
		}
		exporter = gcpExporter

	default:
		otlpExporter, err := otlptracegrpc.New(context.Background())
		if err != nil {
			return TelemetryRessources{}, errors.Wrap(err, "could not create the otlp trace exporter")
		}
		exporter = otlpExporter
	}

	res, err := resource.New(context.Background(),
		resource.WithDetectors(gcp.NewDetector()),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(configuration.ApplicationName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return TelemetryRessources{}, errors.Wrap(err, "could not build the telemetry resource")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(ScreeningSampler{SpanNameSampling: configuration.SpanNameSampling}),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	propagators := propagation.NewCompositeTextMapPropagator(
		gcppropagator.CloudTraceFormatPropagator{},
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(propagators)

	return TelemetryRessources{
		TracerProvider:    tp,
		Tracer:            tp.Tracer(configuration.ApplicationName),
		TextMapPropagator: propagators,
	}, nil
}

var defaultSpanNamesSampling = map[string]float64{
	"ScreeningUsecase.Screen": 1.0,
}

// ScreeningSampler keeps a deterministic share of traces, chosen per root span name.
// Children follow their parent's decision.
type ScreeningSampler struct {
	SpanNameSampling map[string]float64
}

func (ScreeningSampler) Description() string {
	return "screening-sampler"
}

func (s ScreeningSampler) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	psc := trace.SpanContextFromContext(p.ParentContext)
	if psc.HasTraceID() {
		if psc.IsSampled() {
			return sdktrace.AlwaysSample().ShouldSample(p)
		}
		return sdktrace.NeverSample().ShouldSample(p)
	}

	prob := DefaultSamplingRate
	if ratio, ok := s.SpanNameSampling[p.Name]; ok {
		prob = ratio
	} else if ratio, ok := defaultSpanNamesSampling[p.Name]; ok {
		prob = ratio
	}

	decision := sdktrace.Drop
	traceId := binary.BigEndian.Uint64(p.TraceID[:8])
	if prob >= 1 || traceId < uint64(prob*float64(math.MaxUint64)) {
		decision = sdktrace.RecordAndSample
	}

	return sdktrace.SamplingResult{
		Decision:   decision,
		Attributes: p.Attributes,
		Tracestate: psc.TraceState(),
	}
}
