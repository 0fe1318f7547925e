// Package config provides configuration management for the keyemu daemon.
package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// Config represents the application configuration
type Config struct {
	// Server contains the remote typing API settings
	Server ServerConfig `json:"server"`

	// Typing contains default typing behavior
	Typing TypingConfig `json:"typing"`

	// General contains general application settings
	General GeneralConfig `json:"general"`
}

// ServerConfig controls the HTTP/WebSocket API and the UDP key stream
type ServerConfig struct {
	// Enabled turns the API server on when running as a daemon
	Enabled bool `json:"enabled"`

	// Port is the API listen port (TCP; the UDP stream shares it)
	Port int `json:"port"`

	// Token is an optional bearer token for API and WebSocket requests
	Token string `json:"token,omitempty"`

	// UDPEnabled accepts raw binary key events over UDP for low latency
	UDPEnabled bool `json:"udp_enabled"`
}

// TypingConfig holds defaults applied when a request doesn't specify timing
type TypingConfig struct {
	// DefaultDelayMS is the fixed inter-character delay in milliseconds
	DefaultDelayMS int `json:"default_delay_ms"`

	// DefaultWPM, when > 0, humanizes delays from this typing speed
	// instead of using the fixed delay
	DefaultWPM int `json:"default_wpm,omitempty"`

	// SkipUnsupported types around unmappable characters instead of
	// aborting on the first one
	SkipUnsupported bool `json:"skip_unsupported"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	// StartOnBoot determines if the daemon starts on login
	StartOnBoot bool `json:"start_on_boot"`

	// ShowTray shows the system tray icon when running as a daemon
	ShowTray bool `json:"show_tray"`
}

// DefaultConfig returns a new Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Enabled:    true,
			Port:       18181,
			UDPEnabled: true,
		},
		Typing: TypingConfig{
			DefaultDelayMS:  50,
			SkipUnsupported: false,
		},
		General: GeneralConfig{
			StartOnBoot: false,
			ShowTray:    true,
		},
	}
}

// Manager handles loading and saving configuration
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
	onChanged  func()
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	return &Manager{
		configPath: configPath,
		config:     DefaultConfig(),
	}, nil
}

// getConfigPath returns the path to the configuration file
func getConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "keyemu")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "keyemu")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", "keyemu")
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load reads the configuration from disk
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if os.IsNotExist(err) {
		// No config file, use defaults
		return nil
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, m.config); err != nil {
		return err
	}
	if m.onChanged != nil {
		m.onChanged()
	}
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}

	log.Printf("Config: Saving configuration to %s (%d bytes)", m.configPath, len(data))
	return os.WriteFile(m.configPath, data, 0644)
}

// Get returns a copy of the current configuration. Mutating the copy has no
// effect; apply changes with Set.
func (m *Manager) Get() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.config
	return &cp
}

// Set updates the configuration
func (m *Manager) Set(config *Config) {
	m.mu.Lock()
	m.config = config
	m.mu.Unlock()
	if m.onChanged != nil {
		m.onChanged()
	}
}

// RegisterChangeCallback registers a function to be called when config changes
func (m *Manager) RegisterChangeCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChanged = fn
}
