// Package telemetry provides OpenTelemetry tracing, metrics and log export
// for knowledged.
//
// Telemetry is off by default. When enabled, spans, metrics and log records
// are exported over OTLP (gRPC or HTTP) to the configured collector. Log
// records reach the exporter through LoggerProvider, which internal/logging
// feeds via the otelzap bridge. The tracer and meter providers
// are installed as the otel globals so that instrumented packages such as
// internal/knowledge pick them up through otel.Tracer.
//
//	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg.Observability, version))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
// Provider setup failures degrade rather than fail: Health reports the
// problem and Tracer/Meter fall back to the global providers.
//
// Tests use NewTestTelemetry, which records spans and log records in memory
// and reads metrics through a manual reader.
package telemetry
