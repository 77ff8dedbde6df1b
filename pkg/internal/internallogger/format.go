package internallogger

import (
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/logschema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// encoderConfig is zap's production layout renamed to the logschema keys,
// with UTC RFC 3339 timestamps and human readable durations.
func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = logschema.FieldTimestamp
	ec.LevelKey = logschema.FieldLevel
	ec.NameKey = logschema.FieldLogger
	ec.CallerKey = logschema.FieldCaller
	ec.MessageKey = logschema.FieldMessage
	ec.StacktraceKey = logschema.FieldStack
	ec.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		zapcore.RFC3339NanoTimeEncoder(t.UTC(), enc)
	}
	ec.EncodeDuration = zapcore.StringDurationEncoder
	return ec
}
