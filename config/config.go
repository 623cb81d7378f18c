// Package config loads and validates the complete backtest
// configuration. A Config is built once, validated, and passed down
// by value; nothing in the engine reads mutable package-level state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quantmill/bookback/exec"
	"github.com/quantmill/bookback/market"
	"github.com/quantmill/bookback/strategy"
)

// Config is the full run configuration.
type Config struct {
	Strategy  StrategyConfig `json:"strategy" yaml:"strategy"`
	Execution exec.Config    `json:"execution" yaml:"execution"`
	Journal   JournalConfig  `json:"journal" yaml:"journal"`
	Data      DataConfig     `json:"data" yaml:"data"`
}

// StrategyConfig names the strategy and carries its parameters.
type StrategyConfig struct {
	Name  string               `json:"name" yaml:"name"`
	Maker strategy.MakerConfig `json:"market_maker" yaml:"market_maker"`
}

// JournalConfig selects the journaling backend.
type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile  string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	CapitalFile string `json:"capital_file,omitempty" yaml:"capital_file,omitempty"`
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// DataConfig tunes the replay's data handling.
type DataConfig struct {
	ShowProgress bool `json:"show_progress" yaml:"show_progress"`
}

// LoadFromFile reads a YAML or JSON config and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the config as YAML (.yaml/.yml) or indented JSON.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate fails fast, before any run starts.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Strategy.Name)) {
	case "noop", "none":
	case "market-maker", "maker", "mm":
		if err := c.Strategy.Maker.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown strategy %q", market.ErrInvalidTradeParameters, c.Strategy.Name)
	}

	if err := c.Execution.Validate(); err != nil {
		return err
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.CapitalFile == "" {
			return fmt.Errorf("%w: journal trades_file and capital_file required for csv", market.ErrInvalidTradeParameters)
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("%w: journal db_path required for sqlite", market.ErrInvalidTradeParameters)
		}
	default:
		return fmt.Errorf("%w: journal.type must be none, csv or sqlite", market.ErrInvalidTradeParameters)
	}

	return nil
}

// Default returns the tuned baseline configuration.
func Default() *Config {
	return &Config{
		Strategy: StrategyConfig{
			Name:  "market-maker",
			Maker: strategy.DefaultMakerConfig(),
		},
		Execution: exec.DefaultConfig(),
		Journal: JournalConfig{
			Type:        "csv",
			TradesFile:  "./trades.csv",
			CapitalFile: "./capital.csv",
		},
		Data: DataConfig{ShowProgress: true},
	}
}
