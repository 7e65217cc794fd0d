// Package telemetry はOpenTelemetryのTracerProviderを構成する。
//
// エクスポーターはOTEL_TRACES_EXPORTERで選択する。noneの場合はプロバイダーを設定せず、
// スパンはグローバルのno-op実装に渡る。
package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// エクスポーター名
const (
	ExporterNone    = "none"
	ExporterStdout  = "stdout"
	ExporterConsole = "console" // OTEL_TRACES_EXPORTERの標準名。stdoutと同じ扱い
)

// Config はトレーシングの設定。
type Config struct {
	Exporter    string
	ServiceName string
}

// ShutdownFunc は未送信のスパンをフラッシュしてプロバイダーを停止する。
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup は設定に応じたTracerProviderを生成し、グローバルに登録する。
// stdoutエクスポーターはwにJSONでスパンを書き出す。
func Setup(cfg Config, w io.Writer) (ShutdownFunc, error) {
	var exporter sdktrace.SpanExporter
	switch cfg.Exporter {
	case "", ExporterNone:
		return noopShutdown, nil
	case ExporterStdout, ExporterConsole:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		exporter = exp
	default:
		return nil, fmt.Errorf("unsupported traces exporter %q (available: none, stdout)", cfg.Exporter)
	}

	tp := NewTracerProvider(cfg.ServiceName, sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// NewTracerProvider はservice.nameリソースを付与したTracerProviderを返す。
func NewTracerProvider(serviceName string, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	if serviceName == "" {
		serviceName = "taskman"
	}
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	return sdktrace.NewTracerProvider(append([]sdktrace.TracerProviderOption{sdktrace.WithResource(res)}, opts...)...)
}
