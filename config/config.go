package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the market node
type Config struct {
	Node    NodeConfig    `toml:"node"`
	Catalog CatalogConfig `toml:"catalog"`
	Apps    AppsConfig    `toml:"apps"`
	Market  MarketConfig  `toml:"market"`
	Trust   TrustConfig   `toml:"trust"`
}

// NodeConfig identifies this node
type NodeConfig struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// CatalogConfig holds the app catalog endpoint
type CatalogConfig struct {
	Addr  string `toml:"addr"` // multiaddr
	Token string `toml:"token"`
}

// AppsConfig holds app registry settings
type AppsConfig struct {
	Dir                string `toml:"dir"`
	RefreshIntervalSec int    `toml:"refresh_interval_sec"`
}

// MarketConfig selects and tunes the market strategies
type MarketConfig struct {
	RequestorStrategy string  `toml:"requestor_strategy"` // brass | usage
	ProviderStrategy  string  `toml:"provider_strategy"`  // brass | usage
	TrustCriterion    bool    `toml:"trust_criterion"`
	MinTrust          float64 `toml:"min_trust"`
}

// TrustConfig tunes the trust digest loop
type TrustConfig struct {
	DigestIntervalSec int `toml:"digest_interval_sec"`
}

// Load loads configuration from TOML file. Parsing starts from the
// defaults, so keys the file sets explicitly always win, zero values
// included.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.SetDefaults()

	return config, nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	// zero is a valid trust threshold, the default is seeded here instead
	// of zero-patched in SetDefaults
	cfg.Market.MinTrust = -0.8
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills fields whose zero value is never meaningful
func (c *Config) SetDefaults() {
	if c.Node.Name == "" {
		c.Node.Name = "compute-market-node"
	}
	if c.Apps.Dir == "" {
		c.Apps.Dir = "apps"
	}
	if c.Apps.RefreshIntervalSec == 0 {
		c.Apps.RefreshIntervalSec = 3600
	}
	if c.Market.RequestorStrategy == "" {
		c.Market.RequestorStrategy = "brass"
	}
	if c.Market.ProviderStrategy == "" {
		c.Market.ProviderStrategy = "brass"
	}
	if c.Trust.DigestIntervalSec == 0 {
		c.Trust.DigestIntervalSec = 3
	}
}
