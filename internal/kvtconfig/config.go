// Package kvtconfig loads process configuration for an engine instance:
// the concurrency-control strategy to enforce plus default scan and
// retry limits. Only Mode is consumed inside this module (by
// cmd/kvtctl); no package reads the two limits.
package kvtconfig

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/pingcap-incubator/kvtgraph/internal/kvt"
)

// Config is the top-level process config, decoded from a TOML file.
type Config struct {
	// Mode selects the concurrency-control strategy: one of
	// "nocc", "simple", "2pl", "occ".
	Mode string

	// DefaultScanLimit is a default scan row limit. Engine.Scan and
	// kvtctl's --limit flag do not fall back to it.
	DefaultScanLimit int
	// MaxRetries is a default retry budget. ExecuteWithRetry takes its
	// budget as an argument and does not fall back to it.
	MaxRetries int
}

// Default returns the baseline config new engines start from.
func Default() *Config {
	return &Config{
		Mode:             "occ",
		DefaultScanLimit: 1000,
		MaxRetries:       3,
	}
}

// Load reads path as TOML over Default(), returning the merged config.
// An empty path returns Default() unchanged.
func Load(path string) (*Config, error) {
	conf := Default()
	if path == "" {
		return conf, nil
	}
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("kvtconfig: decode %s: %w", path, err)
	}
	return conf, nil
}

// ParseMode resolves the config's Mode string to a kvt.Mode.
func (c *Config) ParseMode() (kvt.Mode, error) {
	switch c.Mode {
	case "nocc":
		return kvt.NoCC, nil
	case "simple":
		return kvt.Simple, nil
	case "2pl":
		return kvt.TwoPL, nil
	case "occ", "":
		return kvt.OCC, nil
	default:
		return 0, fmt.Errorf("kvtconfig: unknown mode %q", c.Mode)
	}
}
