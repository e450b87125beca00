package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output). This matters for
// the interactive client: stray log lines would corrupt the terminal UI.
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "BACKOFFICE_LOG_LEVEL"

// LogFileEnvVar optionally redirects log output to a file instead of stdout.
// Useful when running the interactive client with logging enabled.
const LogFileEnvVar = "BACKOFFICE_LOG_FILE"

// Initialize creates a new logger with the specified level.
// If level is empty, it checks BACKOFFICE_LOG_LEVEL.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		// Unknown level - use info as default when explicitly set to something
		zapLevel = zapcore.InfoLevel
	}

	output := "stdout"
	encodeLevel := zapcore.CapitalColorLevelEncoder
	if path := os.Getenv(LogFileEnvVar); path != "" {
		output = path
		encodeLevel = zapcore.CapitalLevelEncoder
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}
	config.EncoderConfig.EncodeLevel = encodeLevel
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// InitializeFromEnv initializes the logger from the BACKOFFICE_LOG_LEVEL
// environment variable. This is the recommended way to initialize logging
// for commands that want silent mode by default.
func InitializeFromEnv() error {
	return Initialize("")
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Fallback to silent logger if not initialized
		logger = zap.NewNop()
	}
	return logger
}

// Sync flushes any buffered log entries. Safe to call on a nop logger.
func Sync() {
	_ = GetLogger().Sync()
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// LogAPIRequest logs an outgoing customers API request.
func LogAPIRequest(method, url string) {
	Debug("API request",
		zap.String("method", method),
		zap.String("url", url),
	)
}

// LogAPIResponse logs the outcome of a customers API request.
func LogAPIResponse(method, url string, statusCode int, err error) {
	if err != nil {
		Error("API request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return
	}
	Debug("API response",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status_code", statusCode),
	)
}

// LogHTTPRequest logs an incoming HTTP request (used by the dev server).
func LogHTTPRequest(remoteAddr, method, path string) {
	Info("HTTP request received",
		zap.String("remote_addr", remoteAddr),
		zap.String("method", method),
		zap.String("path", path),
	)
}
