package logger

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stickerstreet/pkg/config"
)

type Capture func(attrs ...zap.Field)

type Logger interface {
	Context(ctx context.Context) context.Context
	WithSession(ctx context.Context, sessionID string) context.Context
	ContextWithCapture(ctx context.Context, operationName string) (context.Context, Capture)

	Debug(ctx context.Context, log string, fields ...zapcore.Field)
	Info(ctx context.Context, log string, fields ...zapcore.Field)
	Warn(ctx context.Context, log string, fields ...zapcore.Field)
	Error(ctx context.Context, log string, fields ...zapcore.Field)
}

var Module = fx.Provide(func(cfg config.IConfig) Logger {
	return New(cfg.GetString("log.level"))
})

// New constructs a JSON logger writing to stdout.
func New(level string) Logger {
	stdoutSyncer := zapcore.Lock(os.Stdout)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.FunctionKey = "func"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		stdoutSyncer,
		getLevel(level),
	)

	// AddCallerSkip hides the wrapper frame.
	log := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	return &logger{
		lg:          log,
		idGenerator: defaultIDGenerator(),
	}
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() Logger {
	return &logger{
		lg:          zap.NewNop(),
		idGenerator: defaultIDGenerator(),
	}
}

type logger struct {
	lg          *zap.Logger
	idGenerator IDGenerator
}

func getLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warning", "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *logger) Debug(ctx context.Context, log string, fields ...zapcore.Field) {
	l.lg.Debug(log, withContext(ctx, fields)...)
}

func (l *logger) Info(ctx context.Context, log string, fields ...zapcore.Field) {
	l.lg.Info(log, withContext(ctx, fields)...)
}

func (l *logger) Warn(ctx context.Context, log string, fields ...zapcore.Field) {
	l.lg.Warn(log, withContext(ctx, fields)...)
}

func (l *logger) Error(ctx context.Context, log string, fields ...zapcore.Field) {
	l.lg.Error(log, withContext(ctx, fields)...)
}

func withContext(ctx context.Context, fields []zapcore.Field) []zapcore.Field {
	if ctx == nil {
		return fields
	}
	return append(fields, getAttrs(ctx)...)
}
