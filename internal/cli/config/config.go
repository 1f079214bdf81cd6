package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the facet CLI configuration
type Config struct {
	Output  OutputConfig  `mapstructure:"output"`
	Explore ExploreConfig `mapstructure:"explore"`
}

// OutputConfig represents output formatting configuration
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	Indent  bool   `mapstructure:"indent"`
	NoColor bool   `mapstructure:"no_color"`
}

// ExploreConfig represents explorer server configuration
type ExploreConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load loads the configuration from facet.yml or facet.yaml. Missing files
// are fine; defaults and FACET_* environment variables fill the gaps.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("output.format", "table")
	v.SetDefault("output.indent", true)
	v.SetDefault("output.no_color", false)
	v.SetDefault("explore.addr", "127.0.0.1:8787")

	// Set config name and paths
	v.SetConfigName("facet")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support (FACET_OUTPUT_FORMAT, FACET_EXPLORE_ADDR, ...)
	v.SetEnvPrefix("FACET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Output.Format {
	case "table", "json":
	default:
		return fmt.Errorf("output.format must be 'table' or 'json', got: %s", cfg.Output.Format)
	}
	if !strings.Contains(cfg.Explore.Addr, ":") {
		return fmt.Errorf("explore.addr must be a host:port pair, got: %s", cfg.Explore.Addr)
	}
	return nil
}
