// Package config loads HCL configuration for the engine: which
// providers to connect, server settings, logging, and pricing
// overrides.
package config

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/shopspring/decimal"

	"gpu-spend/connect"
	"gpu-spend/core/pricing"
	"gpu-spend/core/types"
	"gpu-spend/internal/errors"
	"gpu-spend/internal/logging"
)

// DefaultProviders are connected when no provider blocks are configured
var DefaultProviders = []string{"aws", "gcp", "azure", "vastai", "runpod", "lambda"}

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `hcl:"version,optional"`

	// Server contains API server settings. Pointer so the block is
	// optional in the file.
	Server *ServerConfig `hcl:"server,block" json:"server"`

	// Logging contains logging configuration
	Logging *logging.Config `hcl:"logging,block" json:"logging"`

	// Providers lists the connectors to activate, with credentials
	Providers []ProviderConfig `hcl:"provider,block" json:"providers"`

	// Rates override entries in the built-in pricing catalog
	Rates []RateOverride `hcl:"rate,block" json:"rates"`
}

// ServerConfig contains API server settings
type ServerConfig struct {
	// ListenAddr is the HTTP listen address
	ListenAddr string `hcl:"listen_addr,optional" json:"listen_addr"`

	// ReadTimeoutSeconds bounds request reads
	ReadTimeoutSeconds int `hcl:"read_timeout_seconds,optional" json:"read_timeout_seconds"`

	// WriteTimeoutSeconds bounds response writes
	WriteTimeoutSeconds int `hcl:"write_timeout_seconds,optional" json:"write_timeout_seconds"`
}

// ProviderConfig activates one provider connector
type ProviderConfig struct {
	// Name is the connector name (aws, gcp, vastai, ...)
	Name string `hcl:"name,label" json:"name"`

	// Region is the provider region to query
	Region string `hcl:"region,optional" json:"region,omitempty"`

	// Profile is the credentials profile, where the provider has one
	Profile string `hcl:"profile,optional" json:"profile,omitempty"`

	// APIKey is the provider API key
	APIKey string `hcl:"api_key,optional" json:"api_key,omitempty"`

	// Disabled skips the connector without removing the block
	Disabled bool `hcl:"disabled,optional" json:"disabled,omitempty"`
}

// Options converts the block into connector options
func (p ProviderConfig) Options() connect.Options {
	return connect.Options{
		Region:  p.Region,
		Profile: p.Profile,
		APIKey:  p.APIKey,
	}
}

// RateOverride replaces one catalog entry
type RateOverride struct {
	Provider     string  `hcl:"provider" json:"provider"`
	InstanceType string  `hcl:"instance_type" json:"instance_type"`
	GPUType      string  `hcl:"gpu_type" json:"gpu_type"`
	GPUs         int     `hcl:"gpus,optional" json:"gpus"`
	Hourly       float64 `hcl:"hourly" json:"hourly"`
}

// Default returns a default configuration
func Default() *Config {
	logCfg := logging.DefaultConfig()
	return &Config{
		Version: "1.0",
		Server: &ServerConfig{
			ListenAddr:          ":8080",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 60,
		},
		Logging: &logCfg,
	}
}

// Load loads configuration from an HCL file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	var config Config
	if err := hclsimple.DecodeFile(path, nil, &config); err != nil {
		return nil, errors.Config("failed to parse configuration file: "+filepath.Base(path), err)
	}

	// Fill in anything the file left out
	defaults := Default()
	if config.Version == "" {
		config.Version = defaults.Version
	}
	if config.Server == nil {
		config.Server = defaults.Server
	} else {
		if config.Server.ListenAddr == "" {
			config.Server.ListenAddr = defaults.Server.ListenAddr
		}
		if config.Server.ReadTimeoutSeconds <= 0 {
			config.Server.ReadTimeoutSeconds = defaults.Server.ReadTimeoutSeconds
		}
		if config.Server.WriteTimeoutSeconds <= 0 {
			config.Server.WriteTimeoutSeconds = defaults.Server.WriteTimeoutSeconds
		}
	}
	if config.Logging == nil {
		config.Logging = defaults.Logging
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects configurations the engine cannot act on
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return errors.Config("provider block requires a name label", nil)
		}
		if _, dup := seen[p.Name]; dup {
			return errors.Config("duplicate provider block: "+p.Name, nil)
		}
		seen[p.Name] = struct{}{}
	}

	for _, r := range c.Rates {
		if r.Provider == "" || r.InstanceType == "" {
			return errors.Config("rate block requires provider and instance_type", nil)
		}
		if r.Hourly <= 0 {
			return errors.Config("rate block requires a positive hourly rate", nil)
		}
	}
	return nil
}

// ActiveProviders returns the enabled provider blocks, falling back to
// the default set with empty options when none are configured
func (c *Config) ActiveProviders() []ProviderConfig {
	var active []ProviderConfig
	for _, p := range c.Providers {
		if !p.Disabled {
			active = append(active, p)
		}
	}
	if len(active) > 0 {
		return active
	}

	active = make([]ProviderConfig, 0, len(DefaultProviders))
	for _, name := range DefaultProviders {
		active = append(active, ProviderConfig{Name: name})
	}
	return active
}

// BuildConnectors instantiates a connector per active provider block.
// Unknown provider names are skipped with a warning inside the
// registry.
func (c *Config) BuildConnectors() []connect.Connector {
	var connectors []connect.Connector
	for _, p := range c.ActiveProviders() {
		if conn, ok := connect.NewConnector(p.Name, p.Options()); ok {
			connectors = append(connectors, conn)
		}
	}
	return connectors
}

// ApplyRateOverrides writes configured rate overrides into the table
func (c *Config) ApplyRateOverrides(table *pricing.RateTable) {
	for _, r := range c.Rates {
		gpus := r.GPUs
		if gpus <= 0 {
			gpus = 1
		}
		table.SetEntry(r.Provider, r.InstanceType, pricing.InstancePricing{
			GPUType: types.ParseGPUType(r.GPUType),
			GPUs:    gpus,
			Hourly:  decimal.NewFromFloat(r.Hourly),
		})
	}
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
