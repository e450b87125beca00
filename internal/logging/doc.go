// Package logging provides structured logging for the backoffice project.
//
// This package wraps go.uber.org/zap with a global logger that is silent by
// default. The interactive terminal client owns stdout, so logging only
// activates when BACKOFFICE_LOG_LEVEL is set, and can be redirected to a file
// via BACKOFFICE_LOG_FILE so diagnostics never interleave with the UI.
//
// # Usage
//
//	logging.InitializeFromEnv()
//	defer logging.Sync()
//
//	logging.Info("Starting server", zap.String("addr", addr))
//
// Convenience helpers (LogAPIRequest, LogAPIResponse, LogHTTPRequest) keep
// field names consistent between the client and the dev server.
package logging
