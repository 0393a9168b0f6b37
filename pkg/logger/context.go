package logger

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	logIDKey    = "logID"
	sessionKey  = "session"
	durationKey = "duration"
)

type logCtxKey struct{}

var logCtx logCtxKey

type LogID [8]byte

func (lid LogID) String() string {
	return hex.EncodeToString(lid[:])
}

var nilLogID = LogID{}

func (lid LogID) IsValid() bool {
	return !bytes.Equal(lid[:], nilLogID[:])
}

type logContext struct {
	StartTime     time.Time
	SessionID     string
	OperationName string
	LogID         LogID
}

func (lgCtx *logContext) ToFields() []zap.Field {
	if lgCtx == nil {
		return nil
	}

	//nolint:mnd // guide go slice cap
	attrs := make([]zap.Field, 0, 2)
	attrs = append(attrs, zap.String(logIDKey, lgCtx.LogID.String()))

	if lgCtx.SessionID != "" {
		attrs = append(attrs, zap.String(sessionKey, lgCtx.SessionID))
	}
	return attrs
}

func getAttrs(ctx context.Context) []zap.Field {
	lgCtx, _ := ctx.Value(&logCtx).(*logContext)
	return lgCtx.ToFields()
}

func (l *logger) Context(ctx context.Context) context.Context {
	if _, ok := ctx.Value(&logCtx).(*logContext); ok {
		return ctx
	}
	return context.WithValue(ctx, &logCtx, &logContext{
		LogID:     l.idGenerator.NewLogID(ctx),
		StartTime: time.Now(),
	})
}

// WithSession tags every subsequent log line of ctx with the session id.
func (l *logger) WithSession(ctx context.Context, sessionID string) context.Context {
	lgCtx, ok := ctx.Value(&logCtx).(*logContext)
	if !ok {
		lgCtx = &logContext{LogID: l.idGenerator.NewLogID(ctx), StartTime: time.Now()}
	}
	next := *lgCtx
	next.SessionID = sessionID
	return context.WithValue(ctx, &logCtx, &next)
}

func (l *logger) ContextWithCapture(ctx context.Context, operationName string) (context.Context, Capture) {
	logID := l.idGenerator.NewLogID(ctx)
	sessionID := ""
	if parent, ok := ctx.Value(&logCtx).(*logContext); ok {
		logID = parent.LogID
		sessionID = parent.SessionID
	}

	lgCtx := &logContext{
		LogID:         logID,
		SessionID:     sessionID,
		OperationName: operationName,
		StartTime:     time.Now(),
	}
	ctx = context.WithValue(ctx, &logCtx, lgCtx)

	return ctx, func(attrs ...zap.Field) {
		l.lg.With(attrs...).Info(lgCtx.OperationName,
			zap.String(logIDKey, lgCtx.LogID.String()),
			zap.String(durationKey, time.Since(lgCtx.StartTime).String()),
		)
	}
}

type IDGenerator interface {
	NewLogID(ctx context.Context) LogID
}

type randomIDGenerator struct {
	mu         sync.Mutex
	randSource *rand.ChaCha8
}

// NewLogID returns a non-zero log ID from a randomly-chosen sequence.
func (gen *randomIDGenerator) NewLogID(context.Context) LogID {
	gen.mu.Lock()
	defer gen.mu.Unlock()

	sid := LogID{}
	for {
		_, _ = gen.randSource.Read(sid[:])
		if sid.IsValid() {
			break
		}
	}
	return sid
}

func defaultIDGenerator() IDGenerator {
	var seed [32]byte
	_ = binary.Read(crand.Reader, binary.LittleEndian, &seed)
	return &randomIDGenerator{randSource: rand.NewChaCha8(seed)}
}
