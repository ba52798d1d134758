package tabledb

import "go.uber.org/zap"

// Logger interface matches the implementation of slog.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
}

// DiscardLogger is the default logger that compiles to a no-op
type DiscardLogger struct{}

func (d DiscardLogger) Error(string, ...any) {}

func (d DiscardLogger) Warn(string, ...any) {}

func (d DiscardLogger) Info(string, ...any) {}

// ZapLogger wraps a zap.Logger to implement Logger.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger creates a Logger from a zap.Logger.
func NewZapLogger(logger *zap.Logger) Logger {
	return &ZapLogger{logger: logger}
}

// Error logs an error message with key-value pairs.
func (z *ZapLogger) Error(msg string, args ...any) {
	z.logger.Sugar().Errorw(msg, args...)
}

// Warn logs a warning message with key-value pairs.
func (z *ZapLogger) Warn(msg string, args ...any) {
	z.logger.Sugar().Warnw(msg, args...)
}

// Info logs an info message with key-value pairs.
func (z *ZapLogger) Info(msg string, args ...any) {
	z.logger.Sugar().Infow(msg, args...)
}
