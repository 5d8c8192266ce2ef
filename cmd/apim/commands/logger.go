package commands

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// zapLogger adapts a zap sugared logger to apim.Logger.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// newLogger logs warnings and errors to stderr, or everything with verbose.
func newLogger(verbose bool) (*zapLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = !verbose
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)

	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &zapLogger{sugar: logger.Sugar()}, nil
}

func (l *zapLogger) Debug(msg string, fields map[string]interface{}) {
	l.sugar.Debugw(msg, keysAndValues(fields)...)
}

func (l *zapLogger) Info(msg string, fields map[string]interface{}) {
	l.sugar.Infow(msg, keysAndValues(fields)...)
}

func (l *zapLogger) Warn(msg string, fields map[string]interface{}) {
	l.sugar.Warnw(msg, keysAndValues(fields)...)
}

func (l *zapLogger) Error(msg string, fields map[string]interface{}) {
	l.sugar.Errorw(msg, keysAndValues(fields)...)
}

// Sync flushes buffered entries. Syncing stderr fails on some terminals, so
// the error is dropped.
func (l *zapLogger) Sync() {
	_ = l.sugar.Sync()
}

// keysAndValues flattens fields in key order.
func keysAndValues(fields map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	pairs := make([]interface{}, 0, len(fields)*2)
	for _, key := range keys {
		pairs = append(pairs, key, fields[key])
	}

	return pairs
}
