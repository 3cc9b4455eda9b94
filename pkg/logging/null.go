package logging

import "context"

var (
	_ Logger = (*NullLogger)(nil)
	_ Logger = (*FileLogger)(nil)
)

// NullLogger discards every record. It is the engine's logger when no run
// log is configured.
type NullLogger struct{}

// NewNullLogger creates a new null logger
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Debug(context.Context, string, Fields) {}
func (l *NullLogger) Info(context.Context, string, Fields) {}
func (l *NullLogger) Warn(context.Context, string, Fields) {}
func (l *NullLogger) Error(context.Context, string, error, Fields) {}

// WithFields returns l, fields are dropped along with the records
func (l *NullLogger) WithFields(Fields) Logger {
	return l
}

// Close does nothing
func (l *NullLogger) Close() error {
	return nil
}
