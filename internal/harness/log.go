package harness

import "log/slog"

var defaultLogger = slog.Default()

// SetLogger sets the logger used by harnesses created without WithLogger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	defaultLogger = l
}
