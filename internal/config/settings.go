package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "backoffice"
	configFile = "config.yaml"

	// ServerURLEnvVar overrides the configured server URL.
	ServerURLEnvVar = "BACKOFFICE_SERVER_URL"

	// APITokenEnvVar supplies the bearer token for the customers API.
	// Tokens are only ever read from the environment; they are never
	// written to the config file.
	APITokenEnvVar = "BACKOFFICE_API_TOKEN"
)

// Defaults applied when the config file is absent or fields are unset.
const (
	DefaultServerURL       = "http://localhost:8432/api"
	DefaultTimeoutSeconds  = 10
	DefaultPageSize        = 20
	DefaultDiscoverTimeout = 5
)

// Settings represents the entire user configuration file.
type Settings struct {
	Version   int                `yaml:"version"`
	Server    *ServerSettings    `yaml:"server,omitempty"`
	List      *ListSettings      `yaml:"list,omitempty"`
	Discovery *DiscoverySettings `yaml:"discovery,omitempty"`
	Telemetry *TelemetrySettings `yaml:"telemetry,omitempty"`
}

// ServerSettings describes how to reach the customers API.
type ServerSettings struct {
	URL            string `yaml:"url"`                       // API root, e.g. "http://localhost:8432/api"
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"` // Per-request timeout
}

// ListSettings holds preferences for the customer list view.
type ListSettings struct {
	PageSize    int  `yaml:"page_size,omitempty"` // Requested page size for list queries
	LiveRefresh bool `yaml:"live_refresh"`        // Auto-refresh from the change feed when available
}

// DiscoverySettings controls mDNS lookup of a locally running server.
type DiscoverySettings struct {
	Auto           bool `yaml:"auto"`                      // Try discovery when no server URL is configured
	TimeoutSeconds int  `yaml:"timeout_seconds,omitempty"` // Browse timeout
}

// TelemetrySettings configures optional trace export.
type TelemetrySettings struct {
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"` // host:port of an OTLP/HTTP collector
}

// NewSettings creates Settings populated with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Server: &ServerSettings{
			URL:            DefaultServerURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		List: &ListSettings{
			PageSize: DefaultPageSize,
		},
		Discovery: &DiscoverySettings{
			Auto:           true,
			TimeoutSeconds: DefaultDiscoverTimeout,
		},
	}
}

// ServerURL returns the effective server URL: the BACKOFFICE_SERVER_URL
// environment variable when set, otherwise the configured value, otherwise
// the default.
func (s *Settings) ServerURL() string {
	if env := os.Getenv(ServerURLEnvVar); env != "" {
		return env
	}
	if s.Server != nil && s.Server.URL != "" {
		return s.Server.URL
	}
	return DefaultServerURL
}

// TimeoutSeconds returns the effective per-request timeout.
func (s *Settings) TimeoutSeconds() int {
	if s.Server != nil && s.Server.TimeoutSeconds > 0 {
		return s.Server.TimeoutSeconds
	}
	return DefaultTimeoutSeconds
}

// PageSize returns the effective list page size.
func (s *Settings) PageSize() int {
	if s.List != nil && s.List.PageSize > 0 {
		return s.List.PageSize
	}
	return DefaultPageSize
}

// APIToken returns the bearer token from the environment, or "" when unset.
func APIToken() string {
	return os.Getenv(APITokenEnvVar)
}

var (
	// Global settings instance (loaded lazily)
	globalSettings     *Settings
	globalSettingsOnce sync.Once
	globalSettingsErr  error

	// Mutex for file writes
	fileMutex sync.Mutex
)

// GetConfigDir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/backoffice or $HOME/.config/backoffice
//   - macOS: $HOME/.config/backoffice
//   - Windows: %LOCALAPPDATA%\backoffice
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	default:
		// macOS follows the XDG convention here too.
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load loads settings from disk. If the file doesn't exist, returns default
// settings. Thread-safe - repeated calls return the same instance.
func Load() (*Settings, error) {
	globalSettingsOnce.Do(func() {
		path, err := GetConfigPath()
		if err != nil {
			globalSettingsErr = err
			return
		}
		globalSettings, globalSettingsErr = LoadFrom(path)
	})
	return globalSettings, globalSettingsErr
}

// LoadFrom loads settings from an explicit path. A missing file yields
// default settings, not an error.
func LoadFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	settings := NewSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return settings, nil
}

// Save writes the settings to the default config path, creating the config
// directory if needed. The write is atomic (temp file + rename).
func (s *Settings) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return s.SaveTo(path)
}

// SaveTo writes the settings to an explicit path.
func (s *Settings) SaveTo(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}
