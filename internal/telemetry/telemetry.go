// Package telemetry wires an OpenTelemetry tracer provider for the
// façade: one span per RPC call, optionally exported via OTLP/gRPC
// when an endpoint is configured, otherwise recorded but not exported.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/lauterbach-mcd/mcd-client"

// Provider wraps the tracer provider and its shutdown hook.
type Provider struct {
	tp     *sdktrace.TracerProvider
	Tracer trace.Tracer
}

// NewProvider builds a tracer provider. If otlpEndpoint is empty, spans
// are generated but never exported (useful for local development
// without a collector); pass a real endpoint (e.g. "localhost:4317")
// to ship spans via OTLP/gRPC.
func NewProvider(ctx context.Context, otlpEndpoint string) (*Provider, error) {
	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", "mcd-client"),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry: resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if otlpEndpoint != "" {
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(otlpEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("telemetry: otlp exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp, Tracer: tp.Tracer(tracerName)}, nil
}

// Shutdown flushes any pending spans and releases exporter resources.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// StartRPCSpan starts a span named after the opcode; callers end the
// returned span once the call completes.
func (p *Provider) StartRPCSpan(ctx context.Context, opcode string) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, "mcd.rpc."+opcode)
}
