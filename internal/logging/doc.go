// Package logging provides structured logging with OpenTelemetry integration.
//
// The package wraps Zap with:
//   - a custom Trace level (-2, below Debug)
//   - console (stderr by default) and OpenTelemetry outputs
//   - context field injection (trace_id, span_id, request.id, command)
//   - encoder-level redaction of sensitive fields such as record contents
//   - level-aware sampling (errors are never sampled)
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, otelProvider)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRequestID(ctx, uuid.NewString())
//	logger.Info(ctx, "knowledge imported", zap.Int("records", n))
//
// Components that accept a *zap.Logger get logger.Underlying().
//
// # Sampling
//
// Defaults per second:
//   - Trace: first 1, drop rest
//   - Debug: first 10, drop rest
//   - Info: first 100, then 1 every 10
//   - Warn: first 100, then 1 every 100
//   - Error+: never sampled
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "msg", zap.String("key", "value"))
//	tl.AssertLogged(t, zapcore.InfoLevel, "msg")
//	tl.AssertField(t, "msg", "key", "value")
package logging
