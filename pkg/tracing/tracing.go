// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tracing wires the OTel SDK tracer provider the Orchestrator and
// lineage remote-backend spans (built with otel.Tracer(...) against the
// global provider) actually emit to, following
// pkg/observability/tracer.go: a noop provider when tracing is disabled,
// a stdout exporter for local inspection, or an OTLP/gRPC exporter for a
// real collector.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config mirrors TracerConfig, narrowed to the two
// exporters this module wires (stdout, otlp-grpc).
type Config struct {
	Enabled      bool
	Exporter     string // "stdout" or "otlp"
	Endpoint     string
	SamplingRate float64
	ServiceName  string
}

// ConfigFromMap reads tracing.* out of a resolved config map, defaulting to
// disabled (a plain noop provider, so every otel.Tracer(...) call in the
// Orchestrator and the lineage remote backend is a safe zero-cost no-op).
func ConfigFromMap(cfg map[string]any) Config {
	get := func(m map[string]any, key string) (any, bool) { v, ok := m[key]; return v, ok }

	tracingRaw, _ := get(cfg, "tracing")
	tracingMap, _ := tracingRaw.(map[string]any)

	c := Config{ServiceName: "refactorctl", SamplingRate: 1.0, Exporter: "stdout"}
	if tracingMap == nil {
		return c
	}
	if v, ok := tracingMap["enabled"].(bool); ok {
		c.Enabled = v
	}
	if v, ok := tracingMap["exporter"].(string); ok && v != "" {
		c.Exporter = v
	}
	if v, ok := tracingMap["endpoint"].(string); ok {
		c.Endpoint = v
	}
	if v, ok := tracingMap["sampling_rate"].(float64); ok {
		c.SamplingRate = v
	}
	if v, ok := tracingMap["service_name"].(string); ok && v != "" {
		c.ServiceName = v
	}
	return c
}

// Init sets the global TracerProvider from cfg and returns a shutdown
// func. When cfg.Enabled is false it installs a noop provider so callers
// never need a nil check.
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SamplingRate)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "otlp":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithInsecure()}
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(cfg.Endpoint))
		}
		return otlptracegrpc.New(ctx, opts...)
	case "stdout", "":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unsupported tracing exporter %q", cfg.Exporter)
	}
}

var _ trace.TracerProvider = (*sdktrace.TracerProvider)(nil)
