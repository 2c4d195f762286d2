package config

import "time"

// Config represents the rangefan configuration file structure
type Config struct {
	// Coordinator holds settings for the coordinator process
	Coordinator CoordinatorConfig `yaml:"coordinator,omitempty" json:"coordinator,omitempty"`

	// Worker holds settings for worker processes
	Worker WorkerConfig `yaml:"worker,omitempty" json:"worker,omitempty"`

	// Defaults contains default settings for CLI operations
	Defaults DefaultsConfig `yaml:"defaults,omitempty" json:"defaults,omitempty"`
}

// CoordinatorConfig represents configuration for the coordinator process
type CoordinatorConfig struct {
	// ListenAddr is the address the coordinator's HTTP server binds to
	ListenAddr string `yaml:"listenAddr,omitempty" json:"listenAddr,omitempty"`

	// LocalWorkers is the number of in-process workers started at boot
	LocalWorkers int `yaml:"localWorkers,omitempty" json:"localWorkers,omitempty"`

	// HealthInterval is how often the death-watch probes workers
	HealthInterval time.Duration `yaml:"healthInterval,omitempty" json:"healthInterval,omitempty"`
}

// WorkerConfig represents configuration for a worker process
type WorkerConfig struct {
	// ListenAddr is the address the worker's HTTP server binds to
	ListenAddr string `yaml:"listenAddr,omitempty" json:"listenAddr,omitempty"`

	// CoordinatorURL is the coordinator the worker registers with
	CoordinatorURL string `yaml:"coordinatorUrl,omitempty" json:"coordinatorUrl,omitempty"`
}

// DefaultsConfig contains default configuration values for the CLI
type DefaultsConfig struct {
	// CoordinatorURL is the coordinator the CLI talks to
	CoordinatorURL string `yaml:"coordinatorUrl,omitempty" json:"coordinatorUrl,omitempty"`

	// Timeout for HTTP operations
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// OutputFormat is the default output format (table, json, yaml)
	OutputFormat string `yaml:"outputFormat,omitempty" json:"outputFormat,omitempty"`

	// NoColor disables colored output
	NoColor bool `yaml:"noColor,omitempty" json:"noColor,omitempty"`
}
