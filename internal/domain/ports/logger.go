package ports

import (
	"time"

	"github.com/shopspring/decimal"
)

// Logger is the structured logging facade used by services
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
}

// Field represents a structured logging field
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Amount logs money as its exact decimal string
func Amount(key string, value decimal.Decimal) Field {
	return Field{Key: key, Value: value.String()}
}

// Date logs the calendar date part only
func Date(key string, value time.Time) Field {
	return Field{Key: key, Value: value.Format("2006-01-02")}
}

// Err creates an error field
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}
