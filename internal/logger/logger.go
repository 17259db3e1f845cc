package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package-level logger to be used across packages after Init.
var S *zap.SugaredLogger

// Init initializes a zap SugaredLogger at the given level.
func Init(level string) (*zap.SugaredLogger, error) {
	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "info":
		lvl = zapcore.InfoLevel
	case "warn", "warning":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		lvl = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(os.Stdout)),
		lvl,
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	sugar := logger.Sugar()
	S = sugar
	return sugar, nil
}

// Close flushes any buffered loggers.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

// Minimal object logging helpers -------------------------------------------------
// These are tiny wrappers that log the given object as a structured field named
// `key` and do not attempt to parse arbitrary kv arrays.
func InfoObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Info(msg, zap.Any(key, obj))
}

func DebugObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Debug(msg, zap.Any(key, obj))
}

func WarnObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Warn(msg, zap.Any(key, obj))
}

func ErrorObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Error(msg, zap.Any(key, obj))
}
