package core

// Logger is any service that can record application events.
// Error args may include a user.User to attribute the event to.
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, err error, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Error(string, error, ...interface{}) {}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger { return nopLogger{} }
