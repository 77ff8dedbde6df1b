package internallogger

import (
	"strings"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"go.uber.org/zap/zapcore"
)

var zapLevels = map[types.LogLevel]zapcore.Level{
	types.DebugLevel:  zapcore.DebugLevel,
	types.InfoLevel:   zapcore.InfoLevel,
	types.WarnLevel:   zapcore.WarnLevel,
	types.ErrorLevel:  zapcore.ErrorLevel,
	types.DPanicLevel: zapcore.DPanicLevel,
	types.PanicLevel:  zapcore.PanicLevel,
	types.FatalLevel:  zapcore.FatalLevel,
}

// parseLogLevel accepts zap's level names plus "warning". Anything else is info.
func parseLogLevel(levelStr string) types.LogLevel {
	name := strings.ToLower(strings.TrimSpace(levelStr))
	if name == "warning" {
		name = "warn"
	}
	var zl zapcore.Level
	if name == "" || zl.UnmarshalText([]byte(name)) != nil {
		return types.InfoLevel
	}
	return convertZapLevel(zl)
}

// ConvertLevel maps a types.LogLevel onto zap. Unknown levels map to info.
func ConvertLevel(level types.LogLevel) zapcore.Level {
	if zl, ok := zapLevels[level]; ok {
		return zl
	}
	return zapcore.InfoLevel
}

func convertZapLevel(level zapcore.Level) types.LogLevel {
	for l, zl := range zapLevels {
		if zl == level {
			return l
		}
	}
	return types.InfoLevel
}
