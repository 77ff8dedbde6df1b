package internallogger

import (
	"sync"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

// Notify fans one structured entry out to every logger whose level admits it.
func Notify(loggers []types.Logger, level types.LogLevel, msg string, keysAndValues ...interface{}) {
	for _, logger := range loggers {
		if logger == nil || logger.GetLevel() > level {
			continue
		}
		switch level {
		case types.DebugLevel:
			logger.Debug(msg, keysAndValues...)
		case types.InfoLevel:
			logger.Info(msg, keysAndValues...)
		case types.WarnLevel:
			logger.Warn(msg, keysAndValues...)
		case types.ErrorLevel:
			logger.Error(msg, keysAndValues...)
		case types.DPanicLevel:
			logger.DPanic(msg, keysAndValues...)
		case types.PanicLevel:
			logger.Panic(msg, keysAndValues...)
		case types.FatalLevel:
			logger.Fatal(msg, keysAndValues...)
		}
	}
}

// Registry is an embeddable, concurrency-safe set of loggers with the
// ConnectLogger/NotifyLoggers pair every component exposes.
type Registry struct {
	loggers []types.Logger
	mu      sync.RWMutex
}

// ConnectLogger attaches loggers.
func (r *Registry) ConnectLogger(loggers ...types.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range loggers {
		if l != nil {
			r.loggers = append(r.loggers, l)
		}
	}
}

// Loggers returns a snapshot of the attached loggers.
func (r *Registry) Loggers() []types.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]types.Logger(nil), r.loggers...)
}

// NotifyLoggers logs through every attached logger.
func (r *Registry) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	loggers := r.Loggers()
	if len(loggers) == 0 {
		return
	}
	Notify(loggers, level, msg, keysAndValues...)
}
