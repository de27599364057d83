package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field is a structured log field backed by zap.
type Field struct {
	zapField zap.Field
}

// Key returns the field's key.
func (f Field) Key() string {
	return f.zapField.Key
}

// Field constructors.
var (
	String = func(key, val string) Field {
		return Field{zap.String(key, val)}
	}

	Int = func(key string, val int) Field {
		return Field{zap.Int(key, val)}
	}

	Int64 = func(key string, val int64) Field {
		return Field{zap.Int64(key, val)}
	}

	Bool = func(key string, val bool) Field {
		return Field{zap.Bool(key, val)}
	}

	Duration = func(key string, val time.Duration) Field {
		return Field{zap.Duration(key, val)}
	}

	Error = func(err error) Field {
		return Field{zap.Error(err)}
	}

	Any = func(key string, val interface{}) Field {
		return Field{zap.Any(key, val)}
	}

	Strings = func(key string, val []string) Field {
		return Field{zap.Strings(key, val)}
	}
)

// fieldsToZap converts Fields to zap.Fields.
func fieldsToZap(fields []Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, field := range fields {
		zapFields[i] = field.zapField
	}
	return zapFields
}
