package taskgen

// Logger defines the interface for logging used throughout the task
// generator. It takes structured key-value pairs after the message:
//
//	logger.Info("Registered task", "task", "css", "dependencies", deps)
//
// Any structured logger with this method set works; the taskgen CLI backs it
// with log/slog:
//
//	type SlogLogger struct {
//	    logger *slog.Logger
//	}
//
//	func (l *SlogLogger) Info(msg string, args ...any) {
//	    l.logger.Info(msg, args...)
//	}
type Logger interface {
	// Info logs progress: registered tasks, resolved plugins, watched paths.
	Info(msg string, args ...any)

	// Error logs a failure that was handled by skipping the affected unit,
	// such as a sub-task without a destination or an unknown plugin.
	Error(msg string, args ...any)

	// Warn logs degraded but valid input, for example a sub-task without plugins.
	Warn(msg string, args ...any)

	// Debug logs detailed diagnostics such as every expanded source pattern.
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Debug(string, ...any) {}

func loggerOrNoop(l Logger) Logger {
	if l == nil {
		return noopLogger{}
	}
	return l
}
