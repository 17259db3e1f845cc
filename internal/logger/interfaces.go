package logger

// Logger defines the logging surface components rely on, so tests can
// inject a nop implementation instead of the package-level zap logger.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

// Default returns the package-level logger behind the Logger interface.
func Default() Logger { return pkgLogger{} }

type pkgLogger struct{}

func (pkgLogger) InfoObj(msg, key string, obj interface{})  { InfoObj(msg, key, obj) }
func (pkgLogger) DebugObj(msg, key string, obj interface{}) { DebugObj(msg, key, obj) }
func (pkgLogger) WarnObj(msg, key string, obj interface{})  { WarnObj(msg, key, obj) }
func (pkgLogger) ErrorObj(msg, key string, obj interface{}) { ErrorObj(msg, key, obj) }
