package internallogger

import (
	"os"
	"sync"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"github.com/joeydtaylor/sparsewave/pkg/logschema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerOption mutates the zap config, the initial level and the caller skip.
type LoggerOption func(*zap.Config, *zapcore.Level, *int)

// ZapLoggerAdapter implements types.Logger on top of zap with hot-swappable sinks.
type ZapLoggerAdapter struct {
	mu          sync.Mutex
	logger      *zap.Logger
	atomicLevel zap.AtomicLevel
	encConfig   zapcore.EncoderConfig
	baseCore    zapcore.Core
	baseFields  []zap.Field
	callerDepth int
	callerOn    bool
	development bool
	sinks       map[string]sinkEntry
}

var _ types.Logger = (*ZapLoggerAdapter)(nil)

// NewLogger builds a JSON logger writing to stdout plus any sinks added later.
func NewLogger(options ...LoggerOption) *ZapLoggerAdapter {
	cfg := zap.NewProductionConfig()
	level := zapcore.InfoLevel
	callerDepth := 3

	for _, option := range options {
		option(&cfg, &level, &callerDepth)
	}

	fields := map[string]interface{}{logschema.FieldSchema: logschema.SchemaID}
	for key, value := range cfg.InitialFields {
		fields[key] = value
	}

	z := &ZapLoggerAdapter{
		atomicLevel: zap.NewAtomicLevelAt(level),
		encConfig:   encoderConfig(),
		baseFields:  fieldsFromMap(fields),
		callerDepth: callerDepth,
		callerOn:    !cfg.DisableCaller,
		development: cfg.Development,
		sinks:       make(map[string]sinkEntry),
	}
	z.baseCore = zapcore.NewCore(zapcore.NewJSONEncoder(z.encConfig), zapcore.Lock(os.Stdout), z.atomicLevel)

	z.mu.Lock()
	z.rebuildLoggerLocked()
	z.mu.Unlock()
	return z
}
