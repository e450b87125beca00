// Package config provides user configuration management for the backoffice
// project.
//
// Settings live in a YAML file at a platform-appropriate location:
//   - Linux: $XDG_CONFIG_HOME/backoffice/config.yaml or $HOME/.config/backoffice/config.yaml
//   - macOS: $HOME/.config/backoffice/config.yaml
//   - Windows: %LOCALAPPDATA%\backoffice\config.yaml
//
// The file holds the server URL, request timeout, list preferences, local
// discovery preferences, and an optional OTLP trace endpoint. Two settings
// are environment-only: BACKOFFICE_SERVER_URL overrides the configured
// server, and BACKOFFICE_API_TOKEN supplies the bearer token.
//
// IMPORTANT: API tokens are NEVER written to the config file.
//
// # Usage Example
//
//	settings, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := api.NewClient(settings.ServerURL())
//
// # Thread Safety
//
// The global settings use sync.Once for safe initialization across
// goroutines. File writes are serialized by a mutex and performed atomically.
package config
