package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultConfigName = ".rangefan"
	defaultConfigDir  = ".rangefan"
)

// Manager handles rangefan configuration
type Manager struct {
	configPath string
	config     *Config
	viper      *viper.Viper
}

// NewManager creates a new configuration manager
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
		viper:      viper.New(),
		config:     &Config{},
	}
}

// Load loads the rangefan configuration from file
func (m *Manager) Load() (*Config, error) {
	// Set up config file path
	if m.configPath != "" {
		m.viper.SetConfigFile(m.configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		// Check ~/.rangefan/config.yaml
		m.viper.AddConfigPath(filepath.Join(home, defaultConfigDir))
		// Check ~/.rangefan.yaml
		m.viper.AddConfigPath(home)
		m.viper.SetConfigName(defaultConfigName)
		m.viper.SetConfigType("yaml")
	}

	// Set environment variable support
	m.viper.SetEnvPrefix("RANGEFAN")
	m.viper.AutomaticEnv()

	m.config = &Config{}

	// Read config file
	if err := m.viper.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		m.applyDefaults()
		return m.config, nil
	}

	// Unmarshal into config struct
	if err := m.viper.Unmarshal(m.config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	m.applyDefaults()

	return m.config, nil
}

// Save saves the current configuration to file
func (m *Manager) Save() error {
	if m.configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		configDir := filepath.Join(home, defaultConfigDir)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		m.configPath = filepath.Join(configDir, "config.yaml")
	}

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := m.viper.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// applyDefaults sets default values for configuration
func (m *Manager) applyDefaults() {
	if m.config == nil {
		return
	}

	if m.config.Coordinator.ListenAddr == "" {
		m.config.Coordinator.ListenAddr = ":9080"
	}

	// The coordinator starts with one local worker so a bare deployment
	// can process requests before any remote worker registers.
	if m.config.Coordinator.LocalWorkers == 0 {
		m.config.Coordinator.LocalWorkers = 1
	}

	if m.config.Coordinator.HealthInterval == 0 {
		m.config.Coordinator.HealthInterval = 10 * time.Second
	}

	if m.config.Worker.ListenAddr == "" {
		m.config.Worker.ListenAddr = ":9081"
	}

	if m.config.Worker.CoordinatorURL == "" {
		m.config.Worker.CoordinatorURL = "http://localhost:9080"
	}

	if m.config.Defaults.CoordinatorURL == "" {
		m.config.Defaults.CoordinatorURL = "http://localhost:9080"
	}

	if m.config.Defaults.Timeout == 0 {
		m.config.Defaults.Timeout = 30 * time.Second
	}

	if m.config.Defaults.OutputFormat == "" {
		m.config.Defaults.OutputFormat = "table"
	}
}
