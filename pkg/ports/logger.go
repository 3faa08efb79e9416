// Package ports defines the Logger interface used by every stage.
package ports

// LogLevel is the severity of a log message.
type LogLevel int

const (
	// LevelDebug is for per-frame and per-call detail inside a component.
	LevelDebug LogLevel = iota
	// LevelInfo is for session-level progress (capture started, export written).
	LevelInfo
	// LevelWarn is for recoverable problems such as a skipped import frame.
	LevelWarn
	// LevelError is for failures that abort the current operation.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a string into a LogLevel. Unknown values map to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger abstracts logging with translatable message keys.
type Logger interface {
	// Debug logs component-internal detail. msg is a translatable format key.
	Debug(msg string, args ...interface{})

	// Info logs session-level progress.
	Info(msg string, args ...interface{})

	// Warn logs a recoverable problem.
	Warn(msg string, args ...interface{})

	// Error logs a failure of the current operation.
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the component name.
	WithComponent(component string) Logger
}
