package builder

import (
	internalLogger "github.com/joeydtaylor/sparsewave/pkg/internal/internallogger"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"github.com/joeydtaylor/sparsewave/pkg/logschema"
)

type (
	Logger       = types.Logger
	LoggerOption = internalLogger.LoggerOption
	LogLevel     = types.LogLevel
	SinkConfig   = types.SinkConfig
	SinkType     = types.SinkType
)

const (
	FileSink   = types.FileSink
	StdoutSink = types.StdoutSink
)

const (
	DebugLevel  = types.DebugLevel
	InfoLevel   = types.InfoLevel
	WarnLevel   = types.WarnLevel
	ErrorLevel  = types.ErrorLevel
	DPanicLevel = types.DPanicLevel
	PanicLevel  = types.PanicLevel
	FatalLevel  = types.FatalLevel
)

// LogSchemaID tags every line a sparsewave logger writes under LogSchemaField.
const (
	LogSchemaID    = logschema.SchemaID
	LogSchemaField = logschema.FieldSchema
)

// NewLogger returns a JSON logger on stdout. Further destinations are
// attached with AddSink.
func NewLogger(options ...LoggerOption) Logger {
	return internalLogger.NewLogger(options...)
}

// FileSinkConfig describes a file sink. format is "json" or "console";
// empty means json.
func FileSinkConfig(path, format string) SinkConfig {
	cfg := map[string]interface{}{"path": path}
	if format != "" {
		cfg["format"] = format
	}
	return SinkConfig{Type: string(FileSink), Config: cfg}
}

func LoggerWithLevel(levelStr string) LoggerOption {
	return internalLogger.LoggerWithLevel(levelStr)
}

// LoggerWithDevelopment makes DPanic panic.
func LoggerWithDevelopment(dev bool) LoggerOption {
	return internalLogger.LoggerWithDevelopment(dev)
}

func LoggerWithFields(fields map[string]interface{}) LoggerOption {
	return internalLogger.LoggerWithFields(fields)
}

func LoggerWithSchema(schema string) LoggerOption {
	return internalLogger.LoggerWithSchema(schema)
}

func LoggerWithoutCaller() LoggerOption {
	return internalLogger.LoggerWithoutCaller()
}
