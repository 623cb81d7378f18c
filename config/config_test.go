package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantmill/bookback/market"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Default().Validate())
}

func TestSaveLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "backtest.yaml")

	cfg := Default()
	cfg.Execution.Seed = 42
	cfg.Strategy.Maker.MaxInventory = 5
	assert.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestSaveLoadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "backtest.json")

	cfg := Default()
	cfg.Journal.Type = "sqlite"
	cfg.Journal.DBPath = "./run.db"
	assert.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadInlineYAML(t *testing.T) {
	t.Parallel()

	content := `
strategy:
  name: noop
execution:
  fill_rate: 0.9
  slippage_bps: 1.5
  rejection_rate: 0.05
  margin_rate: 0.1
  seed: 7
journal:
  type: none
`
	path := filepath.Join(t.TempDir(), "min.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))

	got, err := LoadFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "noop", got.Strategy.Name)
	assert.InDelta(t, 0.9, got.Execution.FillRate, 1e-9)
	assert.Equal(t, int64(7), got.Execution.Seed)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("{[ not a config"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"unknown_strategy", func(c *Config) { c.Strategy.Name = "hodl" }},
		{"bad_maker_config", func(c *Config) { c.Strategy.Maker.FixOrderVolume = -1 }},
		{"bad_execution", func(c *Config) { c.Execution.FillRate = 2 }},
		{"csv_without_paths", func(c *Config) { c.Journal = JournalConfig{Type: "csv"} }},
		{"sqlite_without_db", func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} }},
		{"unknown_journal", func(c *Config) { c.Journal.Type = "parquet" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mut(cfg)
			assert.ErrorIs(t, cfg.Validate(), market.ErrInvalidTradeParameters)
		})
	}
}

func TestValidateNoopSkipsMakerConfig(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Strategy.Name = "noop"
	cfg.Strategy.Maker.FixOrderVolume = -1
	assert.NoError(t, cfg.Validate())
}
