package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a SugaredLogger that writes to stdout (or to outputPaths,
// when given) and provides human readable timestamps. level is parsed with zapcore.ParseLevel ("debug",
// "info", "warn", "error", ...); an empty or unparseable level defaults to
// info, so callers that don't care about verbosity can just pass "".
func New(service string, level string, outputPaths ...string) (*zap.SugaredLogger, error) {
	// Start from zap's production config.
	config := zap.NewProductionConfig()

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	config.InitialFields = map[string]interface{}{"service": service}

	lvl := zapcore.InfoLevel
	if level != "" {
		if parsed, err := zapcore.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}
	config.Level = zap.NewAtomicLevelAt(lvl)

	config.OutputPaths = []string{"stdout"}
	if outputPaths != nil {
		config.OutputPaths = outputPaths
	}

	// Create a logger for the service.
	logger, err := config.Build(zap.WithCaller(true))
	if err != nil {
		return nil, err
	}

	// Return a SugaredLogger.
	return logger.Sugar(), nil
}
