package tracing

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the application tracer. It is usable before InitTracerProvider
// runs and then records into the global no-op provider.
var Tracer trace.Tracer = otel.Tracer(tracerName)

const (
	defaultServiceName = "clinicctl"
	tracerName         = "go.pilab.hu/clinic"
)

// Options configures the tracer provider.
type Options struct {
	ServiceName string
	// Export writes finished spans to Out (stderr when nil). Without it spans
	// are sampled but not exported, which keeps trace IDs in the logs.
	Export bool
	Out    io.Writer
}

// InitTracerProvider builds and registers a TracerProvider.
func InitTracerProvider(opts Options) (*sdktrace.TracerProvider, error) {
	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = os.Getenv("OTEL_SERVICE_NAME")
	}
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	if opts.Export {
		out := opts.Out
		if out == nil {
			out = os.Stderr
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
		// Syncer rather than batcher: a CLI process is short-lived.
		tpOpts = append(tpOpts, sdktrace.WithSyncer(exporter))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	Tracer = otel.Tracer(tracerName)

	return tp, nil
}
