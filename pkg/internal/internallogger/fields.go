package internallogger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

func fieldsFromMap(fields map[string]interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for key, value := range fields {
		if key != "" {
			out = append(out, zap.Any(key, value))
		}
	}
	return out
}

type componentField types.ComponentMetadata

func (c componentField) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", c.ID)
	enc.AddString("type", c.Type)
	if c.Name != "" {
		enc.AddString("name", c.Name)
	}
	return nil
}

type coefficientField complex128

func (c coefficientField) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddFloat64("re", real(complex128(c)))
	enc.AddFloat64("im", imag(complex128(c)))
	return nil
}

type binField types.SpectralBin

func (b binField) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint32("index", b.Index)
	return enc.AddObject("coefficient", coefficientField(b.Coefficient))
}
